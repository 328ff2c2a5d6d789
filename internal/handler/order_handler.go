package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/service"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	orders, err := h.svc.ListMine(c.Request().Context(), uidFrom(c))
	if err != nil {
		return respondError(c, err, "failed to fetch orders")
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) GetMine(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	o, err := h.svc.GetMine(c.Request().Context(), uidFrom(c), id)
	if err != nil {
		return respondError(c, err, "failed to fetch order")
	}
	return c.JSON(http.StatusOK, o)
}
