package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/service"
)

// CheckoutHandler serves guests and signed-in customers alike.
type CheckoutHandler struct {
	svc service.CheckoutService
}

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) Session(c echo.Context) error {
	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.CreateSession(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to create checkout session")
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *CheckoutHandler) Embedded(c echo.Context) error {
	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.CreateEmbeddedSession(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to create embedded checkout")
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *CheckoutHandler) PaymentIntent(c echo.Context) error {
	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.CreatePaymentIntent(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to create payment intent")
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *CheckoutHandler) Pix(c echo.Context) error {
	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.CreatePix(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to create pix payment")
	}
	return c.JSON(http.StatusCreated, res)
}

type BolsaSubmitResponse struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
	Total  string `json:"total"`
}

func (h *CheckoutHandler) Bolsa(c echo.Context) error {
	var req service.BolsaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	bp, err := h.svc.SubmitBolsa(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to submit bolsa uniforme payment")
	}
	return c.JSON(http.StatusCreated, BolsaSubmitResponse{
		ID:     bp.ID,
		Status: string(bp.Status),
		Total:  bp.Total.StringFixed(2),
	})
}
