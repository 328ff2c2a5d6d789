package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"go.uber.org/zap"
)

// BolsaService is the cashier side of the Bolsa Uniforme flow.
type BolsaService interface {
	List(ctx context.Context, status model.BolsaStatus, page repository.Page) ([]model.BolsaUniformePayment, int64, error)
	Get(ctx context.Context, id uint64) (*model.BolsaUniformePayment, error)
	Approve(ctx context.Context, id uint64, reviewer, notes string) (*model.BolsaUniformePayment, error)
	Reject(ctx context.Context, id uint64, reviewer, notes string) (*model.BolsaUniformePayment, error)
	Delete(ctx context.Context, id uint64) error
	PendingCount(ctx context.Context) (int64, error)
}

type bolsaService struct {
	repo          repository.BolsaPaymentRepository
	notifications NotificationService
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewBolsaService(repo repository.BolsaPaymentRepository, notifications NotificationService, m *metrics.Metrics) BolsaService {
	return &bolsaService{repo: repo, notifications: notifications, metrics: m, now: time.Now}
}

func (s *bolsaService) List(ctx context.Context, status model.BolsaStatus, page repository.Page) ([]model.BolsaUniformePayment, int64, error) {
	switch status {
	case "", model.BolsaStatusPending, model.BolsaStatusApproved, model.BolsaStatusRejected:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.List(ctx, status, page)
}

func (s *bolsaService) Get(ctx context.Context, id uint64) (*model.BolsaUniformePayment, error) {
	bp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return bp, nil
}

// Approve creates a paid bolsa_uniforme order from the submitted items and links it.
func (s *bolsaService) Approve(ctx context.Context, id uint64, reviewer, notes string) (*model.BolsaUniformePayment, error) {
	bp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bp.Status != model.BolsaStatusPending {
		return nil, ErrAlreadyProcessed
	}
	if strings.TrimSpace(notes) == "" {
		notes = bp.Notes
	}

	paidAt := s.now()
	items := make([]model.OrderItem, 0, len(bp.Items))
	for _, it := range bp.Items {
		items = append(items, model.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.Name,
			ProductImage: it.Image,
			Price:        it.Price,
			Size:         it.Size,
			Quantity:     it.Quantity,
		})
	}
	order := &model.Order{
		UserUID:          bp.UserUID,
		CustomerName:     bp.CustomerName,
		CustomerEmail:    bp.CustomerEmail,
		CustomerPhone:    bp.CustomerPhone,
		Subtotal:         bp.Subtotal,
		Shipping:         bp.Shipping,
		ShippingMethod:   bp.ShippingMethod,
		Total:            bp.Total,
		Status:           model.OrderStatusPaid,
		PaymentMethod:    model.PaymentMethodBolsaUniforme,
		PaymentProvider:  model.ProviderManual,
		PaymentReference: fmt.Sprintf("bolsa:%d", bp.ID),
		ShippingAddress:  bp.ShippingAddress,
		PaidAt:           &paidAt,
		Items:            items,
	}
	if err := s.repo.Approve(ctx, id, reviewer, notes, order); err != nil {
		return nil, translate(err)
	}

	s.metrics.BolsaPayment(string(model.BolsaStatusApproved))
	s.metrics.OrderCreated(string(model.PaymentMethodBolsaUniforme))
	s.metrics.PaymentConfirmed(model.ProviderManual)
	logger.FromContext(ctx).Info("bolsa uniforme payment approved",
		zap.Uint64("bolsa_payment_id", id),
		zap.Uint64("order_id", order.ID),
		zap.String("reviewer", reviewer),
	)
	s.notifications.NotifyOrderStatus(ctx, order, model.OrderStatusPaid)
	return s.Get(ctx, id)
}

func (s *bolsaService) Reject(ctx context.Context, id uint64, reviewer, notes string) (*model.BolsaUniformePayment, error) {
	if err := s.repo.Reject(ctx, id, reviewer, strings.TrimSpace(notes)); err != nil {
		return nil, translate(err)
	}
	s.metrics.BolsaPayment(string(model.BolsaStatusRejected))
	logger.FromContext(ctx).Info("bolsa uniforme payment rejected",
		zap.Uint64("bolsa_payment_id", id),
		zap.String("reviewer", reviewer),
	)
	return s.Get(ctx, id)
}

func (s *bolsaService) Delete(ctx context.Context, id uint64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *bolsaService) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, model.BolsaStatusPending)
}
