package service

import (
	"context"

	"github.com/shinyyama/uniforme-store/internal/ai"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/storage"
)

var (
	_ StripeGateway     = (*payment.StripeClient)(nil)
	_ PixGateway        = (*payment.MercadoPagoClient)(nil)
	_ ImageStore        = (*storage.Uploader)(nil)
	_ ImageEnhancer     = (*ai.GeminiImageClient)(nil)
	_ DescriptionWriter = (*ai.DescriptionClient)(nil)
)

// StripeGateway is implemented by *payment.StripeClient.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (*payment.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, in payment.PaymentIntentInput) (*payment.PaymentIntent, error)
	ParseEvent(payload []byte, signature string) (*payment.StripeEvent, error)
}

// PixGateway is implemented by *payment.MercadoPagoClient.
type PixGateway interface {
	CreatePixPayment(ctx context.Context, req payment.PixRequest) (*payment.PixPayment, error)
	GetPayment(ctx context.Context, id string) (*payment.PixPayment, error)
}

// ImageStore is implemented by *storage.Uploader.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

type ImageEnhancer interface {
	Enabled() bool
	Enhance(ctx context.Context, req ai.ImageEnhanceRequest) (*ai.ImageEnhanceResult, error)
}

type DescriptionWriter interface {
	Enabled() bool
	Describe(ctx context.Context, name, school, category string, options []string) (string, error)
}
