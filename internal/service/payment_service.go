package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"go.uber.org/zap"
)

// Webhook outcomes, also used as the metrics result label.
const (
	ResultPaid      = "paid"
	ResultDuplicate = "duplicate"
	ResultCancelled = "cancelled"
	ResultIgnored   = "ignored"
	ResultUnmatched = "unmatched"
)

type PixStatus struct {
	Approved bool   `json:"approved"`
	Status   string `json:"status"`
	OrderID  uint64 `json:"orderId,omitempty"`
}

// MercadoPagoWebhook carries the raw delivery so the service can verify and parse it.
type MercadoPagoWebhook struct {
	Body      []byte
	Query     url.Values
	Signature string
	RequestID string
}

type PaymentService interface {
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (string, error)
	HandleMercadoPagoWebhook(ctx context.Context, in MercadoPagoWebhook) (string, error)
	CheckPix(ctx context.Context, paymentID string) (*PixStatus, error)
}

type paymentService struct {
	orders          repository.OrderRepository
	orderService    OrderService
	stripe          StripeGateway
	pix             PixGateway
	mpWebhookSecret string
	metrics         *metrics.Metrics
}

func NewPaymentService(orders repository.OrderRepository, orderService OrderService, stripe StripeGateway, pix PixGateway, mpWebhookSecret string, m *metrics.Metrics) PaymentService {
	return &paymentService{
		orders:          orders,
		orderService:    orderService,
		stripe:          stripe,
		pix:             pix,
		mpWebhookSecret: mpWebhookSecret,
		metrics:         m,
	}
}

func (s *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	ev, err := s.stripe.ParseEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent(model.ProviderStripe, "unknown", "rejected")
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	log := logger.FromContext(ctx).With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	var action func(context.Context, uint64) (string, error)
	switch ev.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded", "payment_intent.succeeded":
		// boleto sessions complete before the money arrives
		if ev.Paid {
			action = s.markPaid(model.ProviderStripe)
		}
	case "checkout.session.expired", "checkout.session.async_payment_failed",
		"payment_intent.payment_failed", "payment_intent.canceled":
		action = s.cancel
	}
	if action == nil {
		s.metrics.WebhookEvent(model.ProviderStripe, ev.Type, ResultIgnored)
		log.Debug("stripe event acknowledged without changes")
		return ResultIgnored, nil
	}

	orderID := ev.OrderID
	if orderID == 0 && ev.ObjectID != "" {
		if o, err := s.orders.FindByReference(ctx, model.ProviderStripe, ev.ObjectID); err == nil {
			orderID = o.ID
		}
	}
	if orderID == 0 {
		s.metrics.WebhookEvent(model.ProviderStripe, ev.Type, ResultUnmatched)
		log.Warn("stripe event without order reference", zap.String("object_id", ev.ObjectID))
		return ResultUnmatched, nil
	}

	result, err := action(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		s.metrics.WebhookEvent(model.ProviderStripe, ev.Type, ResultUnmatched)
		log.Warn("stripe event references unknown order", zap.Uint64("order_id", orderID))
		return ResultUnmatched, nil
	}
	if err != nil {
		return "", err
	}
	s.metrics.WebhookEvent(model.ProviderStripe, ev.Type, result)
	log.Info("stripe event applied", zap.Uint64("order_id", orderID), zap.String("result", result))
	return result, nil
}

func (s *paymentService) markPaid(provider string) func(context.Context, uint64) (string, error) {
	return func(ctx context.Context, id uint64) (string, error) {
		changed, err := s.orderService.ConfirmPaid(ctx, id, provider)
		if err != nil {
			return "", err
		}
		if !changed {
			return ResultDuplicate, nil
		}
		return ResultPaid, nil
	}
}

func (s *paymentService) cancel(ctx context.Context, id uint64) (string, error) {
	changed, err := s.orderService.CancelPending(ctx, id)
	if err != nil {
		return "", err
	}
	if !changed {
		return ResultDuplicate, nil
	}
	return ResultCancelled, nil
}

func (s *paymentService) HandleMercadoPagoWebhook(ctx context.Context, in MercadoPagoWebhook) (string, error) {
	n, err := payment.ParseNotification(in.Body, in.Query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !n.IsPayment() {
		s.metrics.WebhookEvent(model.ProviderMercadoPago, n.Type, ResultIgnored)
		return ResultIgnored, nil
	}
	if s.mpWebhookSecret != "" {
		if err := payment.VerifySignature(s.mpWebhookSecret, in.Signature, in.RequestID, n.PaymentID); err != nil {
			s.metrics.WebhookEvent(model.ProviderMercadoPago, n.Type, "rejected")
			return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
	}

	p, err := s.pix.GetPayment(ctx, n.PaymentID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}
	_, result, err := s.applyPix(ctx, p)
	if err != nil {
		return "", err
	}
	s.metrics.WebhookEvent(model.ProviderMercadoPago, n.Type, result)
	return result, nil
}

// CheckPix is polled by the checkout page until the payment is approved.
func (s *paymentService) CheckPix(ctx context.Context, paymentID string) (*PixStatus, error) {
	if _, err := strconv.ParseUint(paymentID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: invalid payment id", ErrInvalidInput)
	}
	p, err := s.pix.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}
	orderID, _, err := s.applyPix(ctx, p)
	if err != nil {
		return nil, err
	}
	return &PixStatus{Approved: p.Approved(), Status: p.Status, OrderID: orderID}, nil
}

func (s *paymentService) applyPix(ctx context.Context, p *payment.PixPayment) (uint64, string, error) {
	log := logger.FromContext(ctx).With(zap.String("payment_id", p.ID), zap.String("status", p.Status))

	orderID, err := p.OrderID()
	if err != nil || orderID == 0 {
		o, ferr := s.orders.FindByReference(ctx, model.ProviderMercadoPago, p.ID)
		if ferr != nil {
			log.Warn("pix payment without matching order")
			return 0, ResultUnmatched, nil
		}
		orderID = o.ID
	}

	var result string
	switch p.Status {
	case payment.PixStatusApproved:
		result, err = s.markPaid(model.ProviderMercadoPago)(ctx, orderID)
	case payment.PixStatusRejected, payment.PixStatusCancelled:
		result, err = s.cancel(ctx, orderID)
	default:
		result = ResultIgnored
	}
	if errors.Is(err, ErrNotFound) {
		log.Warn("pix payment references unknown order", zap.Uint64("order_id", orderID))
		return 0, ResultUnmatched, nil
	}
	if err != nil {
		return orderID, "", err
	}
	log.Info("pix payment applied", zap.Uint64("order_id", orderID), zap.String("result", result))
	return orderID, result, nil
}
