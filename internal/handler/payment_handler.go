package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/service"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 16

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Result   string `json:"result,omitempty"`
}

func readBody(c echo.Context, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, limit))
}

func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	body, err := readBody(c, maxWebhookBody)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read body"))
	}
	result, err := h.svc.HandleStripeWebhook(c.Request().Context(), body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			logger.FromEcho(c).Warn("stripe webhook rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_signature", "invalid signature"))
		}
		return respondError(c, err, "failed to process stripe event")
	}
	return c.JSON(http.StatusOK, WebhookResponse{Received: true, Result: result})
}

func (h *PaymentHandler) MercadoPagoWebhook(c echo.Context) error {
	body, err := readBody(c, maxWebhookBody)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read body"))
	}
	result, err := h.svc.HandleMercadoPagoWebhook(c.Request().Context(), service.MercadoPagoWebhook{
		Body:      body,
		Query:     c.QueryParams(),
		Signature: c.Request().Header.Get("x-signature"),
		RequestID: c.Request().Header.Get("x-request-id"),
	})
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			logger.FromEcho(c).Warn("mercadopago webhook rejected", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid_signature", "invalid signature"))
		}
		return respondError(c, err, "failed to process mercadopago notification")
	}
	return c.JSON(http.StatusOK, WebhookResponse{Received: true, Result: result})
}

// CheckPix is polled every few seconds by the Pix screen.
func (h *PaymentHandler) CheckPix(c echo.Context) error {
	st, err := h.svc.CheckPix(c.Request().Context(), c.Param("paymentId"))
	if err != nil {
		return respondError(c, err, "failed to check pix payment")
	}
	return c.JSON(http.StatusOK, st)
}
