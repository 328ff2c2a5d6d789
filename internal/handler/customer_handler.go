package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/uniforme-store/internal/middleware"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/service"
)

// CustomerHandler serves favorites, profile and feedback.
type CustomerHandler struct {
	favorites service.FavoriteService
	profiles  service.ProfileService
	feedbacks service.FeedbackService
}

func NewCustomerHandler(favorites service.FavoriteService, profiles service.ProfileService, feedbacks service.FeedbackService) *CustomerHandler {
	return &CustomerHandler{favorites: favorites, profiles: profiles, feedbacks: feedbacks}
}

func (h *CustomerHandler) ListFavorites(c echo.Context) error {
	list, err := h.favorites.List(c.Request().Context(), uidFrom(c))
	if err != nil {
		return respondError(c, err, "failed to fetch favorites")
	}
	if list == nil {
		list = []model.Favorite{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"favorites": list})
}

type AddFavoriteRequest struct {
	ProductID uint64 `json:"productId"`
	School    string `json:"school"`
}

func (h *CustomerHandler) AddFavorite(c echo.Context) error {
	var req AddFavoriteRequest
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "productId is required"))
	}
	f, err := h.favorites.Add(c.Request().Context(), uidFrom(c), req.ProductID, req.School)
	if err != nil {
		return respondError(c, err, "failed to add favorite")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *CustomerHandler) RemoveFavorite(c echo.Context) error {
	id, ok := parseID(c, "productId")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	if err := h.favorites.Remove(c.Request().Context(), uidFrom(c), id); err != nil {
		return respondError(c, err, "failed to remove favorite")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandler) GetProfile(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), uidFrom(c))
	if err != nil {
		return respondError(c, err, "failed to fetch profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CustomerHandler) SaveProfile(c echo.Context) error {
	var req service.ProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Email == "" {
		req.Email, _ = c.Get(middleware.ContextEmail).(string)
	}
	p, err := h.profiles.Save(c.Request().Context(), uidFrom(c), req)
	if err != nil {
		return respondError(c, err, "failed to save profile")
	}
	return c.JSON(http.StatusOK, p)
}

type FeedbackListResponse struct {
	Items []model.Feedback `json:"items"`
	Total int64            `json:"total"`
}

func (h *CustomerHandler) ListFeedbacks(c echo.Context) error {
	page := repository.Page{Limit: queryInt(c, "limit"), Offset: queryInt(c, "offset")}
	list, total, err := h.feedbacks.ListVisible(c.Request().Context(), page)
	if err != nil {
		return respondError(c, err, "failed to fetch feedbacks")
	}
	if list == nil {
		list = []model.Feedback{}
	}
	return c.JSON(http.StatusOK, FeedbackListResponse{Items: list, Total: total})
}

type SubmitFeedbackRequest struct {
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	UserName string `json:"userName"`
}

func (h *CustomerHandler) SubmitFeedback(c echo.Context) error {
	var req SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserName == "" {
		req.UserName, _ = c.Get(middleware.ContextName).(string)
	}
	f, err := h.feedbacks.Submit(c.Request().Context(), uidFrom(c), req.UserName, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err, "failed to submit feedback")
	}
	return c.JSON(http.StatusCreated, f)
}
