package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"
)

const (
	PixStatusPending   = "pending"
	PixStatusApproved  = "approved"
	PixStatusRejected  = "rejected"
	PixStatusCancelled = "cancelled"
)

var (
	ErrMercadoPagoNotConfigured = errors.New("MERCADOPAGO_ACCESS_TOKEN is not set")
	ErrInvalidSignature         = errors.New("invalid webhook signature")
)

type PixRequest struct {
	OrderID         uint64
	Amount          decimal.Decimal
	Description     string
	PayerEmail      string
	PayerFirstName  string
	NotificationURL string
	ExpiresAt       time.Time
}

type PixPayment struct {
	ID                string
	Status            string
	ExternalReference string
	QRCode            string
	QRCodeBase64      string
	TicketURL         string
	ExpiresAt         time.Time
}

func (p *PixPayment) Approved() bool {
	return p.Status == PixStatusApproved
}

// OrderID parses the external reference set at creation.
func (p *PixPayment) OrderID() (uint64, error) {
	return strconv.ParseUint(p.ExternalReference, 10, 64)
}

// MercadoPagoClient creates and reads Pix payments through the Mercado Pago SDK.
type MercadoPagoClient struct {
	payments mppayment.Client
}

// NewMercadoPagoClient returns a client whose calls fail with ErrMercadoPagoNotConfigured
// when accessToken is empty. httpClient may be nil.
func NewMercadoPagoClient(accessToken string, httpClient *http.Client) *MercadoPagoClient {
	if accessToken == "" {
		return &MercadoPagoClient{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	cfg, err := mpconfig.New(accessToken, mpconfig.WithHTTPClient(httpClient))
	if err != nil {
		return &MercadoPagoClient{}
	}
	return &MercadoPagoClient{payments: mppayment.NewClient(cfg)}
}

func (c *MercadoPagoClient) CreatePixPayment(ctx context.Context, req PixRequest) (*PixPayment, error) {
	if c == nil || c.payments == nil {
		return nil, ErrMercadoPagoNotConfigured
	}
	body := mppayment.Request{
		TransactionAmount: req.Amount.Round(2).InexactFloat64(),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: strconv.FormatUint(req.OrderID, 10),
		NotificationURL:   req.NotificationURL,
		Payer: &mppayment.PayerRequest{
			Email:     req.PayerEmail,
			FirstName: req.PayerFirstName,
		},
	}
	if !req.ExpiresAt.IsZero() {
		exp := req.ExpiresAt
		body.DateOfExpiration = &exp
	}
	res, err := c.payments.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create payment: %w", err)
	}
	return toPixPayment(res), nil
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*PixPayment, error) {
	if c == nil || c.payments == nil {
		return nil, ErrMercadoPagoNotConfigured
	}
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid payment id %q", id)
	}
	res, err := c.payments.Get(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %d: %w", n, err)
	}
	return toPixPayment(res), nil
}

func toPixPayment(r *mppayment.Response) *PixPayment {
	td := r.PointOfInteraction.TransactionData
	p := &PixPayment{
		ID:                strconv.Itoa(r.ID),
		Status:            r.Status,
		ExternalReference: r.ExternalReference,
		QRCode:            td.QRCode,
		QRCodeBase64:      td.QRCodeBase64,
		TicketURL:         td.TicketURL,
	}
	if !r.DateOfExpiration.IsZero() {
		p.ExpiresAt = r.DateOfExpiration
	}
	return p
}

// Notification is the payment reference carried by a Mercado Pago webhook.
type Notification struct {
	Type      string
	Action    string
	PaymentID string
}

// ParseNotification accepts the JSON body form and the legacy query-string form (type, data.id / topic, id).
func ParseNotification(body []byte, query url.Values) (Notification, error) {
	var n Notification
	if len(bytes.TrimSpace(body)) > 0 {
		var parsed struct {
			Type   string `json:"type"`
			Topic  string `json:"topic"`
			Action string `json:"action"`
			Data   struct {
				ID json.RawMessage `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			n.Type = parsed.Type
			if n.Type == "" {
				n.Type = parsed.Topic
			}
			n.Action = parsed.Action
			n.PaymentID = strings.Trim(string(parsed.Data.ID), `"`)
		}
	}
	if n.Type == "" {
		n.Type = query.Get("type")
		if n.Type == "" {
			n.Type = query.Get("topic")
		}
	}
	if n.PaymentID == "" {
		n.PaymentID = query.Get("data.id")
		if n.PaymentID == "" {
			n.PaymentID = query.Get("id")
		}
	}
	if n.Type == "" && n.PaymentID == "" {
		return n, errors.New("empty notification")
	}
	return n, nil
}

func (n Notification) IsPayment() bool {
	return n.Type == "payment" && n.PaymentID != ""
}

// VerifySignature checks the x-signature header ("ts=...,v1=...") against
// HMAC-SHA256("id:<data.id>;request-id:<x-request-id>;ts:<ts>;").
func VerifySignature(secret, header, requestID, dataID string) error {
	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return ErrInvalidSignature
	}
	manifest := "id:" + strings.ToLower(dataID) + ";"
	if requestID != "" {
		manifest += "request-id:" + requestID + ";"
	}
	manifest += "ts:" + ts + ";"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrInvalidSignature
	}
	return nil
}
