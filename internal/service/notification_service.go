package service

import (
	"context"
	"fmt"

	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"go.uber.org/zap"
)

const (
	NotificationOrderPaid      = "order_paid"
	NotificationOrderShipped   = "order_shipped"
	NotificationOrderDelivered = "order_delivered"
	NotificationOrderCancelled = "order_cancelled"
)

type NotificationService interface {
	Notify(ctx context.Context, userUID, typ, title, body string, orderID *uint64)
	NotifyOrderStatus(ctx context.Context, o *model.Order, status model.OrderStatus)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
	MarkByOrder(ctx context.Context, userUID string, orderID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; failures are logged and never reach the caller.
func (s *notificationService) Notify(ctx context.Context, userUID, typ, title, body string, orderID *uint64) {
	if userUID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserUID: userUID,
		Type:    typ,
		Title:   title,
		Body:    body,
		OrderID: orderID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.FromContext(ctx).Warn("notification not stored", zap.String("type", typ), zap.Error(err))
	}
}

// NotifyOrderStatus tells the order owner about paid, shipped, delivered and cancelled orders. Guest orders are skipped.
func (s *notificationService) NotifyOrderStatus(ctx context.Context, o *model.Order, status model.OrderStatus) {
	if o == nil || o.UserUID == nil {
		return
	}
	var typ, title string
	switch status {
	case model.OrderStatusPaid:
		typ, title = NotificationOrderPaid, "Pagamento confirmado"
	case model.OrderStatusShipped:
		typ, title = NotificationOrderShipped, "Pedido enviado"
	case model.OrderStatusDelivered:
		typ, title = NotificationOrderDelivered, "Pedido entregue"
	case model.OrderStatusCancelled:
		typ, title = NotificationOrderCancelled, "Pedido cancelado"
	default:
		return
	}
	id := o.ID
	s.Notify(ctx, *o.UserUID, typ, title, fmt.Sprintf("Pedido #%d", o.ID), &id)
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

func (s *notificationService) MarkByOrder(ctx context.Context, userUID string, orderID uint64) error {
	if userUID == "" || orderID == 0 {
		return nil
	}
	return s.repo.MarkByOrder(ctx, userUID, orderID)
}
