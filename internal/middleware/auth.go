package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	ContextUID   = "uid"
	ContextName  = "user_name"
	ContextEmail = "user_email"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(ctx context.Context, projectID, credentialsFile string) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{verifier: client}, nil
}

func NewAuthMiddlewareWithVerifier(v TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: v}
}

func bearer(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

func (m *AuthMiddleware) verify(c echo.Context, raw string) error {
	token, err := m.verifier.VerifyIDToken(c.Request().Context(), raw)
	if err != nil {
		return err
	}
	c.Set(ContextUID, token.UID)
	if name, ok := token.Claims["name"].(string); ok {
		c.Set(ContextName, name)
	}
	if email, ok := token.Claims["email"].(string); ok {
		c.Set(ContextEmail, email)
	}
	return nil
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "missing bearer token"))
		}
		if err := m.verify(c, raw); err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid_token", "invalid or expired token"))
		}
		return next(c)
	}
}

// OptionalAuth lets guests through; a bad token is treated as no token.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := bearer(c); raw != "" {
			if err := m.verify(c, raw); err != nil {
				logger.FromEcho(c).Debug("ignoring invalid customer token", zap.Error(err))
			}
		}
		return next(c)
	}
}

func errorBody(code, message string) map[string]map[string]string {
	return map[string]map[string]string{"error": {"code": code, "message": message}}
}
