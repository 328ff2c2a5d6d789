package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"go.uber.org/zap"
)

// AdminService runs the back-office actions posted to the single admin data endpoint.
type AdminService interface {
	Dispatch(ctx context.Context, role adminauth.Role, action string, params json.RawMessage) (interface{}, error)
	Actions(role adminauth.Role) []string
}

type adminAction struct {
	cashier bool
	run     func(ctx context.Context, role adminauth.Role, raw json.RawMessage) (interface{}, error)
}

type adminService struct {
	orders    OrderService
	bolsa     BolsaService
	feedbacks FeedbackService
	products  ProductService
	profiles  ProfileService
	actions   map[string]adminAction
}

func NewAdminService(orders OrderService, bolsa BolsaService, feedbacks FeedbackService, products ProductService, profiles ProfileService) AdminService {
	s := &adminService{
		orders:    orders,
		bolsa:     bolsa,
		feedbacks: feedbacks,
		products:  products,
		profiles:  profiles,
	}
	s.actions = map[string]adminAction{
		"list_orders":         {cashier: true, run: s.listOrders},
		"get_order":           {cashier: true, run: s.getOrder},
		"update_order_status": {cashier: true, run: s.updateOrderStatus},
		"delete_order":        {run: s.deleteOrder},

		"list_bolsa_payments":   {cashier: true, run: s.listBolsa},
		"get_bolsa_payment":     {cashier: true, run: s.getBolsa},
		"approve_bolsa_payment": {cashier: true, run: s.approveBolsa},
		"reject_bolsa_payment":  {cashier: true, run: s.rejectBolsa},
		"delete_bolsa_payment":  {run: s.deleteBolsa},

		"list_feedbacks":          {run: s.listFeedbacks},
		"set_feedback_visibility": {run: s.setFeedbackVisibility},
		"delete_feedback":         {run: s.deleteFeedback},

		"list_products":               {run: s.listProducts},
		"create_product":              {run: s.createProduct},
		"update_product":              {run: s.updateProduct},
		"set_product_active":          {run: s.setProductActive},
		"delete_product":              {run: s.deleteProduct},
		"upload_product_image":        {run: s.uploadProductImage},
		"suggest_product_description": {run: s.suggestDescription},

		"list_profiles": {run: s.listProfiles},

		"dashboard_stats": {cashier: true, run: s.dashboardStats},
	}
	return s
}

func (s *adminService) Dispatch(ctx context.Context, role adminauth.Role, action string, params json.RawMessage) (interface{}, error) {
	a, ok := s.actions[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	switch role {
	case adminauth.RoleAdmin:
	case adminauth.RoleCashier:
		if !a.cashier {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrUnauthorized
	}
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	logger.FromContext(ctx).Info("admin action", zap.String("action", action), zap.String("role", string(role)))
	return a.run(ctx, role, params)
}

// Actions lists what role may run, for the dashboard menus.
func (s *adminService) Actions(role adminauth.Role) []string {
	out := make([]string, 0, len(s.actions))
	for name, a := range s.actions {
		if role == adminauth.RoleAdmin || (role == adminauth.RoleCashier && a.cashier) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func decode(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

type idParams struct {
	ID uint64 `json:"id"`
}

func decodeID(raw json.RawMessage) (uint64, error) {
	var p idParams
	if err := decode(raw, &p); err != nil {
		return 0, err
	}
	if p.ID == 0 {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return p.ID, nil
}

type pageParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (p pageParams) page() repository.Page {
	return repository.Page{Limit: p.Limit, Offset: p.Offset}
}

type listResult struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

func (s *adminService) listOrders(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		pageParams
		Status        model.OrderStatus   `json:"status"`
		PaymentMethod model.PaymentMethod `json:"payment_method"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	list, total, err := s.orders.List(ctx, repository.OrderFilter{Status: p.Status, PaymentMethod: p.PaymentMethod, Page: p.page()})
	if err != nil {
		return nil, err
	}
	return listResult{Items: list, Total: total}, nil
}

func (s *adminService) getOrder(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, id)
}

func (s *adminService) updateOrderStatus(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		ID     uint64            `json:"id"`
		Status model.OrderStatus `json:"status"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.orders.UpdateStatus(ctx, p.ID, p.Status)
}

func (s *adminService) deleteOrder(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]uint64{"deleted": id}, nil
}

func (s *adminService) listBolsa(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		pageParams
		Status model.BolsaStatus `json:"status"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	list, total, err := s.bolsa.List(ctx, p.Status, p.page())
	if err != nil {
		return nil, err
	}
	return listResult{Items: list, Total: total}, nil
}

func (s *adminService) getBolsa(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	return s.bolsa.Get(ctx, id)
}

type reviewParams struct {
	ID    uint64 `json:"id"`
	Notes string `json:"notes"`
}

func (s *adminService) approveBolsa(ctx context.Context, role adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p reviewParams
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.bolsa.Approve(ctx, p.ID, string(role), p.Notes)
}

func (s *adminService) rejectBolsa(ctx context.Context, role adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p reviewParams
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.bolsa.Reject(ctx, p.ID, string(role), p.Notes)
}

func (s *adminService) deleteBolsa(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	if err := s.bolsa.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]uint64{"deleted": id}, nil
}

func (s *adminService) listFeedbacks(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p pageParams
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	list, total, err := s.feedbacks.ListAll(ctx, p.page())
	if err != nil {
		return nil, err
	}
	return listResult{Items: list, Total: total}, nil
}

func (s *adminService) setFeedbackVisibility(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		ID        uint64 `json:"id"`
		IsVisible *bool  `json:"is_visible"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 || p.IsVisible == nil {
		return nil, fmt.Errorf("%w: id and is_visible are required", ErrInvalidInput)
	}
	if err := s.feedbacks.SetVisible(ctx, p.ID, *p.IsVisible); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": p.ID, "is_visible": *p.IsVisible}, nil
}

func (s *adminService) deleteFeedback(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	if err := s.feedbacks.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]uint64{"deleted": id}, nil
}

func (s *adminService) listProducts(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		pageParams
		School   string `json:"school"`
		Category string `json:"category"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	list, total, err := s.products.ListAll(ctx, repository.ProductFilter{School: p.School, Category: p.Category, Page: p.page()})
	if err != nil {
		return nil, err
	}
	return listResult{Items: list, Total: total}, nil
}

func (s *adminService) createProduct(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		Product ProductInput `json:"product"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, p.Product)
}

func (s *adminService) updateProduct(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		ID      uint64       `json:"id"`
		Product ProductInput `json:"product"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.products.Update(ctx, p.ID, p.Product)
}

func (s *adminService) setProductActive(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p struct {
		ID       uint64 `json:"id"`
		IsActive *bool  `json:"is_active"`
	}
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 || p.IsActive == nil {
		return nil, fmt.Errorf("%w: id and is_active are required", ErrInvalidInput)
	}
	if err := s.products.SetActive(ctx, p.ID, *p.IsActive); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": p.ID, "is_active": *p.IsActive}, nil
}

func (s *adminService) deleteProduct(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	if err := s.products.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": id, "is_active": false}, nil
}

func (s *adminService) uploadProductImage(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p ImageUpload
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if p.ProductID == 0 {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	return s.products.UploadImage(ctx, p)
}

func (s *adminService) suggestDescription(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	text, err := s.products.SuggestDescription(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]string{"description": text}, nil
}

func (s *adminService) listProfiles(ctx context.Context, _ adminauth.Role, raw json.RawMessage) (interface{}, error) {
	var p pageParams
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	list, total, err := s.profiles.List(ctx, p.page())
	if err != nil {
		return nil, err
	}
	return listResult{Items: list, Total: total}, nil
}

type DashboardStats struct {
	*OrderStats
	PendingBolsa int64 `json:"pending_bolsa"`
}

func (s *adminService) dashboardStats(ctx context.Context, _ adminauth.Role, _ json.RawMessage) (interface{}, error) {
	st, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.bolsa.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	return DashboardStats{OrderStats: st, PendingBolsa: pending}, nil
}
