package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/service"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductListResponse struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
}

func (h *ProductHandler) List(c echo.Context) error {
	f := repository.ProductFilter{
		School:   c.QueryParam("school"),
		Category: c.QueryParam("category"),
		Page:     repository.Page{Limit: queryInt(c, "limit"), Offset: queryInt(c, "offset")},
	}
	items, total, err := h.svc.ListActive(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err, "failed to fetch products")
	}
	if items == nil {
		items = []model.Product{}
	}
	return c.JSON(http.StatusOK, ProductListResponse{Items: items, Total: total})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	p, err := h.svc.GetActive(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to fetch product")
	}
	return c.JSON(http.StatusOK, p)
}
