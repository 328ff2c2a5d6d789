package service

import (
	"context"
	"encoding/base64"
	"strconv"
	"testing"

	"github.com/shinyyama/uniforme-store/internal/cart"
	"github.com/shinyyama/uniforme-store/internal/checkout"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fakeStripe struct {
	CreateCheckoutSessionFunc func(ctx context.Context, in payment.CheckoutSessionInput) (*payment.CheckoutSession, error)
	CreatePaymentIntentFunc   func(ctx context.Context, in payment.PaymentIntentInput) (*payment.PaymentIntent, error)
	ParseEventFunc            func(payload []byte, signature string) (*payment.StripeEvent, error)
}

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (*payment.CheckoutSession, error) {
	return f.CreateCheckoutSessionFunc(ctx, in)
}

func (f *fakeStripe) CreatePaymentIntent(ctx context.Context, in payment.PaymentIntentInput) (*payment.PaymentIntent, error) {
	return f.CreatePaymentIntentFunc(ctx, in)
}

func (f *fakeStripe) ParseEvent(payload []byte, signature string) (*payment.StripeEvent, error) {
	return f.ParseEventFunc(payload, signature)
}

type fakePix struct {
	CreatePixPaymentFunc func(ctx context.Context, req payment.PixRequest) (*payment.PixPayment, error)
	GetPaymentFunc       func(ctx context.Context, id string) (*payment.PixPayment, error)
}

func (f *fakePix) CreatePixPayment(ctx context.Context, req payment.PixRequest) (*payment.PixPayment, error) {
	return f.CreatePixPaymentFunc(ctx, req)
}

func (f *fakePix) GetPayment(ctx context.Context, id string) (*payment.PixPayment, error) {
	return f.GetPaymentFunc(ctx, id)
}

// store wires real repositories over sqlite with fake payment providers.
type store struct {
	db            *gorm.DB
	products      repository.ProductRepository
	orders        repository.OrderRepository
	bolsa         repository.BolsaPaymentRepository
	notifications NotificationService
	orderSvc      OrderService
	stripe        *fakeStripe
	pix           *fakePix
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := newTestDB(t)
	notifications := NewNotificationService(repository.NewNotificationRepository(db))
	orders := repository.NewOrderRepository(db)
	return &store{
		db:            db,
		products:      repository.NewProductRepository(db),
		orders:        orders,
		bolsa:         repository.NewBolsaPaymentRepository(db),
		notifications: notifications,
		orderSvc:      NewOrderService(orders, notifications, nil),
		stripe:        &fakeStripe{},
		pix:           &fakePix{},
	}
}

func (s *store) checkout() CheckoutService {
	return NewCheckoutService(s.products, s.orders, s.bolsa, s.stripe, s.pix, nil, CheckoutConfig{
		FrontendURL: "https://loja.example.com/",
		Shipping: checkout.ShippingTable{
			checkout.ShippingPickup:   decimal.Zero,
			checkout.ShippingStandard: decimal.RequireFromString("15"),
			checkout.ShippingExpress:  decimal.RequireFromString("30"),
		},
	})
}

func (s *store) payments(mpSecret string) PaymentService {
	return NewPaymentService(s.orders, s.orderSvc, s.stripe, s.pix, mpSecret, nil)
}

func (s *store) addProduct(t *testing.T, name, price string, active bool) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:       name,
		School:     "Colégio Horizonte",
		Category:   "Camisetas",
		Price:      decimal.RequireFromString(price),
		Images:     []string{"https://img.example.com/" + name + ".jpg"},
		Variations: []model.Variation{{Name: "Tamanho", Options: []string{"P", "M", "G"}}},
		IsActive:   true,
	}
	if err := s.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if !active {
		if _, err := s.products.SetActive(context.Background(), p.ID, false); err != nil {
			t.Fatalf("deactivate product: %v", err)
		}
	}
	return p
}

func (s *store) addPendingOrder(t *testing.T, uid string, provider, reference string) *model.Order {
	t.Helper()
	o := &model.Order{
		CustomerName:     "Ana Souza",
		CustomerEmail:    "ana@example.com",
		Subtotal:         decimal.RequireFromString("100"),
		Shipping:         decimal.Zero,
		Total:            decimal.RequireFromString("100"),
		Status:           model.OrderStatusPending,
		PaymentMethod:    model.PaymentMethodCard,
		PaymentProvider:  provider,
		PaymentReference: reference,
	}
	if uid != "" {
		o.UserUID = &uid
	}
	if err := s.orders.Create(context.Background(), o); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func validRequest(method model.PaymentMethod, lines ...cart.Line) CheckoutRequest {
	return CheckoutRequest{
		Form: checkout.Form{
			Contact: checkout.Contact{Name: "Ana Souza", Email: "Ana@Example.com", Phone: "(11) 98765-4321"},
			Address: model.Address{
				ZipCode: "01310-100", Street: "Av. Paulista", Number: "1000",
				Neighborhood: "Bela Vista", City: "São Paulo", State: "SP",
			},
			ShippingMethod: checkout.ShippingStandard,
			PaymentMethod:  method,
		},
		Items: lines,
	}
}

func orderFilterAll() repository.OrderFilter {
	return repository.OrderFilter{Page: repository.Page{Limit: 100}}
}

func repositoryPage() repository.Page {
	return repository.Page{Limit: 20}
}

type fakeImages struct {
	paths []string
	types []string
}

func (f *fakeImages) Upload(_ context.Context, objectPath, contentType string, _ []byte) (string, error) {
	f.paths = append(f.paths, objectPath)
	f.types = append(f.types, contentType)
	return "https://storage.example.com/" + strconv.Itoa(len(f.paths)), nil
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func pngBase64() string {
	return base64.StdEncoding.EncodeToString(pngHeader)
}
