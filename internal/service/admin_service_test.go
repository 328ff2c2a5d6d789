package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
)

func newAdmin(t *testing.T, s *store, images ImageStore) AdminService {
	t.Helper()
	return NewAdminService(
		s.orderSvc,
		NewBolsaService(s.bolsa, s.notifications, nil),
		NewFeedbackService(repository.NewFeedbackRepository(s.db)),
		NewProductService(s.products, images, nil, nil),
		NewProfileService(repository.NewProfileRepository(s.db)),
	)
}

func TestDispatchRoleGating(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	admin := newAdmin(t, s, nil)

	if _, err := admin.Dispatch(ctx, adminauth.RoleCashier, "list_orders", nil); err != nil {
		t.Fatalf("cashier list_orders: %v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleCashier, "delete_order", json.RawMessage(`{"id":1}`)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cashier delete_order err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleCashier, "create_product", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cashier create_product err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.Role("guest"), "list_orders", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown role err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "drop_tables", nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("unknown action err=%v", err)
	}
}

func TestActionsPerRole(t *testing.T) {
	admin := newAdmin(t, newStore(t), nil)
	cashier := admin.Actions(adminauth.RoleCashier)
	all := admin.Actions(adminauth.RoleAdmin)
	if len(cashier) == 0 || len(cashier) >= len(all) {
		t.Fatalf("cashier=%d admin=%d", len(cashier), len(all))
	}
	for _, a := range cashier {
		if a == "delete_order" || a == "create_product" {
			t.Fatalf("cashier may not run %s", a)
		}
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] > all[i] {
			t.Fatalf("actions not sorted: %v", all)
		}
	}
}

func TestDispatchOrderActions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	o := s.addPendingOrder(t, "user-5", model.ProviderStripe, "cs_5")
	admin := newAdmin(t, s, nil)

	out, err := admin.Dispatch(ctx, adminauth.RoleCashier, "update_order_status", json.RawMessage(`{"id":1,"status":"paid"}`))
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if got := out.(*model.Order); got.Status != model.OrderStatusPaid || got.PaidAt == nil {
		t.Fatalf("order=%+v", got)
	}

	if _, err := admin.Dispatch(ctx, adminauth.RoleCashier, "update_order_status", json.RawMessage(`{"id":1,"status":"lost"}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad status err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "update_order_status", json.RawMessage(`{"id":1,"status":"shipped"}`)); err != nil {
		t.Fatalf("ship: %v", err)
	}
	notes, _, err := s.notifications.List(ctx, "user-5", false, 10)
	if err != nil || len(notes) != 2 {
		t.Fatalf("notifications=%d err=%v", len(notes), err)
	}

	out, err = admin.Dispatch(ctx, adminauth.RoleAdmin, "dashboard_stats", nil)
	if err != nil {
		t.Fatalf("dashboard_stats: %v", err)
	}
	st := out.(DashboardStats)
	if st.TotalOrders != 1 || st.ByStatus[model.OrderStatusShipped] != 1 {
		t.Fatalf("stats=%+v", st.OrderStats)
	}

	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "get_order", json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing id err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "delete_order", json.RawMessage(`{"id":`+itoa(o.ID)+`}`)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "get_order", json.RawMessage(`{"id":`+itoa(o.ID)+`}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted order err=%v", err)
	}
}

func TestDispatchProductActions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	images := &fakeImages{}
	admin := newAdmin(t, s, images)

	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "create_product", json.RawMessage(`{"product":{"name":"","price":"10"}}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nameless product err=%v", err)
	}
	out, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "create_product", json.RawMessage(`{"product":{"name":"Agasalho","school":"Colégio Horizonte","price":"149.9","is_active":false,"variations":[{"name":"Tamanho","options":["P","M"]}]}}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p := out.(*model.Product)
	stored, err := s.products.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.IsActive {
		t.Fatalf("product created inactive must stay inactive")
	}

	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "set_product_active", json.RawMessage(`{"id":`+itoa(p.ID)+`}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing is_active err=%v", err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "set_product_active", json.RawMessage(`{"id":`+itoa(p.ID)+`,"is_active":true}`)); err != nil {
		t.Fatalf("activate: %v", err)
	}

	img := `{"product_id":` + itoa(p.ID) + `,"image":"` + pngBase64() + `"}`
	out, err = admin.Dispatch(ctx, adminauth.RoleAdmin, "upload_product_image", json.RawMessage(img))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got := out.(*model.Product); len(got.Images) != 1 || got.Images[0] != "https://storage.example.com/1" {
		t.Fatalf("images=%v", got.Images)
	}
	if len(images.paths) != 1 || images.types[0] != "image/png" {
		t.Fatalf("uploads=%v %v", images.paths, images.types)
	}

	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "suggest_product_description", json.RawMessage(`{"id":`+itoa(p.ID)+`}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("describe without writer err=%v", err)
	}
}

func TestDispatchFeedbackVisibility(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	admin := newAdmin(t, s, nil)
	feedbacks := NewFeedbackService(repository.NewFeedbackRepository(s.db))
	f, err := feedbacks.Submit(ctx, "user-1", "Ana", 5, "Ótimo atendimento")
	if err != nil {
		t.Fatal(err)
	}

	visible, _, err := feedbacks.ListVisible(ctx, repositoryPage())
	if err != nil || len(visible) != 0 {
		t.Fatalf("new feedback must be hidden: %d err=%v", len(visible), err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "set_feedback_visibility", json.RawMessage(`{"id":`+itoa(f.ID)+`,"is_visible":true}`)); err != nil {
		t.Fatalf("show: %v", err)
	}
	visible, _, err = feedbacks.ListVisible(ctx, repositoryPage())
	if err != nil || len(visible) != 1 {
		t.Fatalf("visible=%d err=%v", len(visible), err)
	}
	if _, err := admin.Dispatch(ctx, adminauth.RoleAdmin, "set_feedback_visibility", json.RawMessage(`{"id":999,"is_visible":true}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown feedback err=%v", err)
	}
}
