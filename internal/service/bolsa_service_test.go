package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
)

func addBolsa(t *testing.T, s *store, uid string) *model.BolsaUniformePayment {
	t.Helper()
	bp := &model.BolsaUniformePayment{
		CustomerName:  "Carla Lima",
		CustomerEmail: "carla@example.com",
		QRCodeImage:   "data:image/png;base64,AAAA",
		CardPassword:  "4321",
		Status:        model.BolsaStatusPending,
		Items: []model.BolsaItem{
			{ProductID: 1, Name: "Camiseta", Price: decimal.RequireFromString("59.90"), Size: "M", Quantity: 2},
		},
		Subtotal:       decimal.RequireFromString("119.80"),
		Shipping:       decimal.RequireFromString("15"),
		ShippingMethod: "standard",
		Total:          decimal.RequireFromString("134.80"),
	}
	if uid != "" {
		bp.UserUID = &uid
	}
	if err := s.bolsa.Create(context.Background(), bp); err != nil {
		t.Fatalf("create bolsa payment: %v", err)
	}
	return bp
}

func TestBolsaApproveCreatesPaidOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	bp := addBolsa(t, s, "user-3")
	svc := NewBolsaService(s.bolsa, s.notifications, nil)

	got, err := svc.Approve(ctx, bp.ID, "cashier", "conferido")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != model.BolsaStatusApproved || got.OrderID == nil || got.ReviewedBy != "cashier" {
		t.Fatalf("payment=%+v", got)
	}

	o, err := s.orders.FindByID(ctx, *got.OrderID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if o.Status != model.OrderStatusPaid || o.PaymentMethod != model.PaymentMethodBolsaUniforme {
		t.Fatalf("order=%+v", o)
	}
	if o.PaymentProvider != model.ProviderManual || o.PaymentReference != "bolsa:1" {
		t.Fatalf("provider=%q reference=%q", o.PaymentProvider, o.PaymentReference)
	}
	if !o.Total.Equal(decimal.RequireFromString("134.80")) || len(o.Items) != 1 {
		t.Fatalf("total=%s items=%d", o.Total, len(o.Items))
	}

	notes, _, err := s.notifications.List(ctx, "user-3", false, 10)
	if err != nil || len(notes) != 1 {
		t.Fatalf("notifications=%v err=%v", notes, err)
	}

	if _, err := svc.Approve(ctx, bp.ID, "admin", ""); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("second approve err=%v", err)
	}
	if _, err := svc.Reject(ctx, bp.ID, "admin", "tarde demais"); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("reject after approve err=%v", err)
	}
}

func TestBolsaReject(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	bp := addBolsa(t, s, "")
	svc := NewBolsaService(s.bolsa, s.notifications, nil)

	got, err := svc.Reject(ctx, bp.ID, "admin", "  senha incorreta ")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != model.BolsaStatusRejected || got.Notes != "senha incorreta" || got.OrderID != nil {
		t.Fatalf("payment=%+v", got)
	}
	if _, err := svc.Approve(ctx, bp.ID, "admin", ""); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("approve after reject err=%v", err)
	}
	n, err := svc.PendingCount(ctx)
	if err != nil || n != 0 {
		t.Fatalf("pending=%d err=%v", n, err)
	}
}

func TestBolsaNotFoundAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := NewBolsaService(s.bolsa, s.notifications, nil)

	if _, err := svc.Approve(ctx, 42, "admin", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("approve err=%v", err)
	}
	if err := svc.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete err=%v", err)
	}
	if _, _, err := svc.List(ctx, "lost", repositoryPage()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("list err=%v", err)
	}
}
