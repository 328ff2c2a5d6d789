package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(uid string, status model.OrderStatus) *model.Order {
	var owner *string
	if uid != "" {
		owner = &uid
	}
	return &model.Order{
		UserUID:         owner,
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
		Subtotal:        dec("119.80"),
		Shipping:        dec("15.00"),
		ShippingMethod:  "standard",
		Total:           dec("134.80"),
		Status:          status,
		PaymentMethod:   model.PaymentMethodMercadoPagoPix,
		ShippingAddress: datatypes.NewJSONType(model.Address{City: "Campinas", State: "SP"}),
		Items: []model.OrderItem{
			{ProductID: 1, ProductName: "Camiseta", Price: dec("59.90"), Size: "M", Quantity: 2},
		},
	}
}

func TestOrderCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))

	o := newOrder("u1", model.OrderStatusPending)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Total.Equal(dec("134.80")) || !got.Total.Equal(got.Subtotal.Add(got.Shipping)) {
		t.Fatalf("total=%s subtotal=%s shipping=%s", got.Total, got.Subtotal, got.Shipping)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("items=%+v", got.Items)
	}
	if got.ShippingAddress.Data().City != "Campinas" {
		t.Fatalf("address=%+v", got.ShippingAddress.Data())
	}

	if err := repo.SetPaymentReference(ctx, o.ID, model.ProviderMercadoPago, "mp-123"); err != nil {
		t.Fatal(err)
	}
	byRef, err := repo.FindByReference(ctx, model.ProviderMercadoPago, "mp-123")
	if err != nil || byRef.ID != o.ID {
		t.Fatalf("byRef=%v err=%v", byRef, err)
	}
	if _, err := repo.FindByReference(ctx, model.ProviderStripe, "mp-123"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestMarkPaidIfPendingIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))
	o := newOrder("", model.OrderStatusPending)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatal(err)
	}

	n, err := repo.MarkPaidIfPending(ctx, o.ID, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("first n=%d err=%v", n, err)
	}
	n, err = repo.MarkPaidIfPending(ctx, o.ID, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("second n=%d err=%v", n, err)
	}
	if n, _ := repo.CancelIfPending(ctx, o.ID); n != 0 {
		t.Fatalf("cancel after paid affected %d", n)
	}
	got, _ := repo.FindByID(ctx, o.ID)
	if got.Status != model.OrderStatusPaid || got.PaidAt == nil {
		t.Fatalf("status=%s paidAt=%v", got.Status, got.PaidAt)
	}
}

func TestOrderListingAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))
	for _, s := range []model.OrderStatus{model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusCancelled} {
		if err := repo.Create(ctx, newOrder("u1", s)); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Create(ctx, newOrder("u2", model.OrderStatusPaid)); err != nil {
		t.Fatal(err)
	}

	mine, err := repo.ListByUser(ctx, "u1")
	if err != nil || len(mine) != 4 {
		t.Fatalf("mine=%d err=%v", len(mine), err)
	}
	if mine[0].ID < mine[1].ID {
		t.Fatal("expected newest first")
	}

	paid, total, err := repo.List(ctx, OrderFilter{Status: model.OrderStatusPaid})
	if err != nil || total != 2 || len(paid) != 2 {
		t.Fatalf("paid=%d total=%d err=%v", len(paid), total, err)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[model.OrderStatusPaid] != 2 || counts[model.OrderStatusPending] != 1 {
		t.Fatalf("counts=%v", counts)
	}

	rev, err := repo.PaidRevenue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !rev.Equal(dec("404.40")) {
		t.Fatalf("revenue=%s", rev)
	}

	if n, err := repo.Delete(ctx, paid[0].ID); err != nil || n != 1 {
		t.Fatalf("delete n=%d err=%v", n, err)
	}
}
