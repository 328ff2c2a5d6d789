package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/checkout"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/middleware"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/service"
	"go.uber.org/zap"
)

type errorPayload struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Fields  []checkout.FieldError `json:"fields,omitempty"`
	Step    checkout.Step         `json:"step,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// respondError maps service sentinels to status codes; anything else is logged and reported as fallback.
func respondError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		resp := NewErrorResponse("invalid_input", err.Error())
		var ve *checkout.ValidationError
		if errors.As(err, &ve) {
			resp.Error.Step = ve.Step
			resp.Error.Fields = ve.Fields
		}
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrUnknownAction):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("unknown_action", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed for this role"))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "unauthorized"))
	case errors.Is(err, service.ErrAlreadyProcessed):
		return c.JSON(http.StatusConflict, NewErrorResponse("already_processed", "already processed"))
	case errors.Is(err, repository.ErrDBNotReady):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "service is starting, try again"))
	case errors.Is(err, service.ErrPaymentProvider):
		logger.FromEcho(c).Error("payment provider error", zap.Error(err))
		return c.JSON(http.StatusBadGateway, NewErrorResponse("payment_provider_error", "payment provider is unavailable, try again"))
	default:
		logger.FromEcho(c).Error(fallback, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", fallback))
	}
}

func uidFrom(c echo.Context) string {
	uid, _ := c.Get(middleware.ContextUID).(string)
	return uid
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}
