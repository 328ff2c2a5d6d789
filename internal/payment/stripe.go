package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const currencyBRL = "brl"

var ErrStripeNotConfigured = errors.New("STRIPE_SECRET_KEY is not set")

type LineItem struct {
	Name      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

type CheckoutSessionInput struct {
	OrderID       uint64
	CustomerEmail string
	Items         []LineItem
	Shipping      decimal.Decimal
	ShippingLabel string
	SuccessURL    string
	CancelURL     string
	// Embedded switches to the embedded UI mode; ReturnURL replaces success/cancel URLs.
	Embedded  bool
	ReturnURL string
}

type CheckoutSession struct {
	ID           string
	URL          string
	ClientSecret string
}

type PaymentIntentInput struct {
	OrderID       uint64
	Amount        decimal.Decimal
	CustomerEmail string
	MethodTypes   []string
	Description   string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// StripeEvent is the part of a webhook event the order flow cares about.
type StripeEvent struct {
	ID       string
	Type     string
	ObjectID string
	OrderID  uint64
	// Paid is true when the event proves the money was captured.
	Paid bool
}

type StripeClient struct {
	api           *client.API
	webhookSecret string
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	if secretKey == "" {
		return &StripeClient{webhookSecret: webhookSecret}
	}
	return &StripeClient{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

func metadata(orderID uint64) map[string]string {
	return map[string]string{"order_id": strconv.FormatUint(orderID, 10)}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	if c == nil || c.api == nil {
		return nil, ErrStripeNotConfigured
	}
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items)+1)
	for _, it := range in.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(it.Name),
		}
		if it.Image != "" {
			product.Images = stripe.StringSlice([]string{it.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currencyBRL),
				ProductData: product,
				UnitAmount:  stripe.Int64(ToCents(it.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}
	if in.Shipping.IsPositive() {
		label := in.ShippingLabel
		if label == "" {
			label = "Frete"
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currencyBRL),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(label)},
				UnitAmount:  stripe.Int64(ToCents(in.Shipping)),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "boleto"}),
		LineItems:          lineItems,
		ClientReferenceID:  stripe.String(strconv.FormatUint(in.OrderID, 10)),
		Metadata:           metadata(in.OrderID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata(in.OrderID),
		},
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if in.Embedded {
		params.UIMode = stripe.String(string(stripe.CheckoutSessionUIModeEmbedded))
		params.ReturnURL = stripe.String(in.ReturnURL)
	} else {
		params.SuccessURL = stripe.String(in.SuccessURL)
		params.CancelURL = stripe.String(in.CancelURL)
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL, ClientSecret: s.ClientSecret}, nil
}

func (c *StripeClient) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntent, error) {
	if c == nil || c.api == nil {
		return nil, ErrStripeNotConfigured
	}
	methods := in.MethodTypes
	if len(methods) == 0 {
		methods = []string{"card"}
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToCents(in.Amount)),
		Currency:           stripe.String(currencyBRL),
		PaymentMethodTypes: stripe.StringSlice(methods),
		Metadata:           metadata(in.OrderID),
	}
	if in.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(in.CustomerEmail)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseEvent verifies the Stripe-Signature header and extracts the order reference.
func (c *StripeClient) ParseEvent(payload []byte, signature string) (*StripeEvent, error) {
	if c == nil || c.webhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is not set")
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe signature: %w", err)
	}
	return EventFromStripe(ev)
}

// EventFromStripe maps checkout session and payment intent events; other types carry only ID and Type.
func EventFromStripe(ev stripe.Event) (*StripeEvent, error) {
	out := &StripeEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	var meta map[string]string
	switch ev.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed", "checkout.session.expired":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.ObjectID = s.ID
		meta = s.Metadata
		if meta["order_id"] == "" && s.ClientReferenceID != "" {
			meta = map[string]string{"order_id": s.ClientReferenceID}
		}
		out.Paid = ev.Type == "checkout.session.async_payment_succeeded" ||
			(ev.Type == "checkout.session.completed" && s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid)
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.ObjectID = pi.ID
		meta = pi.Metadata
		out.Paid = ev.Type == "payment_intent.succeeded"
	default:
		return out, nil
	}
	if raw := meta["order_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid order_id metadata %q", raw)
		}
		out.OrderID = id
	}
	return out, nil
}
