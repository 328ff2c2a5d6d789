package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/adminauth"
)

const ContextAdminRole = "admin_role"

type AdminTokenVerifier interface {
	Verify(token string) (adminauth.Claims, error)
}

// RequireAdminToken accepts admin and cashier tokens; per-action role checks happen in the dispatcher.
func RequireAdminToken(v AdminTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			if raw == "" || raw == authz {
				return c.JSON(http.StatusUnauthorized, errorBody("invalid_token", adminauth.ErrInvalidToken.Error()))
			}
			claims, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody("invalid_token", adminauth.ErrInvalidToken.Error()))
			}
			c.Set(ContextAdminRole, claims.Role)
			return next(c)
		}
	}
}
