package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"59.90", 5990},
		{"0.005", 1},
		{"134.8", 13480},
		{"0", 0},
	}
	for _, tt := range tests {
		if got := ToCents(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("ToCents(%s)=%d want %d", tt.in, got, tt.want)
		}
	}
	if !FromCents(13480).Equal(decimal.RequireFromString("134.80")) {
		t.Fatal("FromCents mismatch")
	}
}

func rawEvent(t *testing.T, typ string, obj interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}
	return stripe.Event{ID: "evt_1", Type: stripe.EventType(typ), Data: &stripe.EventData{Raw: raw}}
}

func TestEventFromStripe(t *testing.T) {
	tests := []struct {
		name      string
		typ       string
		obj       map[string]interface{}
		wantOrder uint64
		wantPaid  bool
		wantObj   string
	}{
		{"session paid", "checkout.session.completed",
			map[string]interface{}{"id": "cs_1", "payment_status": "paid", "metadata": map[string]string{"order_id": "7"}}, 7, true, "cs_1"},
		{"boleto session awaiting payment", "checkout.session.completed",
			map[string]interface{}{"id": "cs_2", "payment_status": "unpaid", "metadata": map[string]string{"order_id": "8"}}, 8, false, "cs_2"},
		{"async succeeded via client reference", "checkout.session.async_payment_succeeded",
			map[string]interface{}{"id": "cs_3", "client_reference_id": "9"}, 9, true, "cs_3"},
		{"intent succeeded", "payment_intent.succeeded",
			map[string]interface{}{"id": "pi_1", "metadata": map[string]string{"order_id": "10"}}, 10, true, "pi_1"},
		{"intent failed", "payment_intent.payment_failed",
			map[string]interface{}{"id": "pi_2", "metadata": map[string]string{"order_id": "11"}}, 11, false, "pi_2"},
		{"unrelated", "customer.created", map[string]interface{}{"id": "cus_1"}, 0, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := EventFromStripe(rawEvent(t, tt.typ, tt.obj))
			if err != nil {
				t.Fatal(err)
			}
			if ev.OrderID != tt.wantOrder || ev.Paid != tt.wantPaid || ev.ObjectID != tt.wantObj || ev.Type != tt.typ {
				t.Fatalf("event=%+v", ev)
			}
		})
	}
}

func TestEventFromStripeBadMetadata(t *testing.T) {
	_, err := EventFromStripe(rawEvent(t, "payment_intent.succeeded",
		map[string]interface{}{"id": "pi_1", "metadata": map[string]string{"order_id": "abc"}}))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestStripeClientNotConfigured(t *testing.T) {
	c := NewStripeClient("", "")
	if _, err := c.CreateCheckoutSession(context.Background(), CheckoutSessionInput{}); !errors.Is(err, ErrStripeNotConfigured) {
		t.Fatalf("err=%v", err)
	}
	if _, err := c.ParseEvent([]byte("{}"), "sig"); err == nil {
		t.Fatal("expected error without webhook secret")
	}
}
