package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderService interface {
	ListMine(ctx context.Context, uid string) ([]model.Order, error)
	GetMine(ctx context.Context, uid string, id uint64) (*model.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error)
	Get(ctx context.Context, id uint64) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error)
	Delete(ctx context.Context, id uint64) error
	// ConfirmPaid moves a pending order to paid. It reports false when the order was already processed.
	ConfirmPaid(ctx context.Context, id uint64, provider string) (bool, error)
	CancelPending(ctx context.Context, id uint64) (bool, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

type OrderStats struct {
	ByStatus    map[model.OrderStatus]int64 `json:"by_status"`
	TotalOrders int64                       `json:"total_orders"`
	PaidRevenue decimal.Decimal             `json:"paid_revenue"`
}

type orderService struct {
	repo          repository.OrderRepository
	notifications NotificationService
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewOrderService(repo repository.OrderRepository, notifications NotificationService, m *metrics.Metrics) OrderService {
	return &orderService{repo: repo, notifications: notifications, metrics: m, now: time.Now}
}

func (s *orderService) ListMine(ctx context.Context, uid string) ([]model.Order, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, uid)
}

// GetMine hides orders of other users behind ErrNotFound.
func (s *orderService) GetMine(ctx context.Context, uid string, id uint64) (*model.Order, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !o.OwnedBy(uid) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *orderService) Get(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return o, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if status == model.OrderStatusPaid {
		if _, err := s.ConfirmPaid(ctx, id, model.ProviderManual); err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}
	n, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// MySQL reports zero affected rows when the status did not change.
	if n > 0 {
		s.notifications.NotifyOrderStatus(ctx, o, status)
	}
	return o, nil
}

func (s *orderService) Delete(ctx context.Context, id uint64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *orderService) ConfirmPaid(ctx context.Context, id uint64, provider string) (bool, error) {
	n, err := s.repo.MarkPaidIfPending(ctx, id, s.now())
	if err != nil {
		return false, err
	}
	log := logger.FromContext(ctx).With(zap.Uint64("order_id", id), zap.String("provider", provider))
	if n == 0 {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return false, translate(err)
		}
		log.Info("order already processed, payment confirmation ignored")
		return false, nil
	}
	s.metrics.PaymentConfirmed(provider)
	log.Info("order paid")
	if o, err := s.repo.FindByID(ctx, id); err == nil {
		s.notifications.NotifyOrderStatus(ctx, o, model.OrderStatusPaid)
	}
	return true, nil
}

func (s *orderService) CancelPending(ctx context.Context, id uint64) (bool, error) {
	n, err := s.repo.CancelIfPending(ctx, id)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	logger.FromContext(ctx).Info("pending order cancelled", zap.Uint64("order_id", id))
	if o, err := s.repo.FindByID(ctx, id); err == nil {
		s.notifications.NotifyOrderStatus(ctx, o, model.OrderStatusCancelled)
	}
	return true, nil
}

func (s *orderService) Stats(ctx context.Context) (*OrderStats, error) {
	by, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	rev, err := s.repo.PaidRevenue(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range by {
		total += n
	}
	return &OrderStats{ByStatus: by, TotalOrders: total, PaidRevenue: rev}, nil
}
