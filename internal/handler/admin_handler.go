package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/middleware"
	"github.com/shinyyama/uniforme-store/internal/service"
	"github.com/shinyyama/uniforme-store/internal/storage"
	"go.uber.org/zap"
)

// Room for a base64 product photo plus the action envelope.
const maxAdminBody = storage.MaxImageBytes*4/3 + 1<<16

type AdminLogin interface {
	Login(role adminauth.Role, password string) (string, adminauth.Claims, error)
}

type AdminHandler struct {
	auth AdminLogin
	svc  service.AdminService
}

func NewAdminHandler(auth AdminLogin, svc service.AdminService) *AdminHandler {
	return &AdminHandler{auth: auth, svc: svc}
}

type AdminAuthRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

type AdminAuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Actions   []string  `json:"actions"`
}

func (h *AdminHandler) Auth(c echo.Context) error {
	var req AdminAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	role := adminauth.Role(req.Role)
	if role == "" {
		role = adminauth.RoleAdmin
	}
	token, claims, err := h.auth.Login(role, req.Password)
	if err != nil {
		logger.FromEcho(c).Warn("admin login failed", zap.String("role", string(role)))
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid_credentials", "invalid credentials"))
	}
	return c.JSON(http.StatusOK, AdminAuthResponse{
		Token:     token,
		Role:      string(claims.Role),
		ExpiresAt: claims.ExpiresAt,
		Actions:   h.svc.Actions(claims.Role),
	})
}

type adminDataRequest struct {
	Action string `json:"action"`
}

// Data dispatches {action, ...params}; the whole body is handed to the action.
func (h *AdminHandler) Data(c echo.Context) error {
	role, _ := c.Get(middleware.ContextAdminRole).(adminauth.Role)
	body, err := readBody(c, maxAdminBody)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read body"))
	}
	var req adminDataRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Action == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("unknown_action", "action is required"))
	}
	data, err := h.svc.Dispatch(c.Request().Context(), role, req.Action, body)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid_token", adminauth.ErrInvalidToken.Error()))
		}
		return respondError(c, err, "admin action failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}
