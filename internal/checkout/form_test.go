package checkout

import (
	"errors"
	"testing"

	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shopspring/decimal"
)

func completeForm() Form {
	return Form{
		Contact: Contact{Name: "Ana Souza", Email: "ana@example.com", Phone: "(11) 98765-4321"},
		Address: model.Address{
			ZipCode: "01310-100", Street: "Av. Paulista", Number: "1000",
			Neighborhood: "Bela Vista", City: "São Paulo", State: "sp",
		},
		ShippingMethod: ShippingStandard,
		PaymentMethod:  model.PaymentMethodStripeCheckout,
	}
}

func TestCompleteForm(t *testing.T) {
	f := completeForm()
	f.Normalize()
	if s := f.FirstIncomplete(); s != 0 {
		t.Fatalf("first incomplete=%d errs=%v", s, f.ValidateStep(s))
	}
	if err := f.Validate(); err != nil {
		t.Fatal(err)
	}
	if f.Address.State != "SP" {
		t.Fatalf("state=%s", f.Address.State)
	}
}

func TestStepGating(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Form)
		wantFirst Step
		enter     Step
		canEnter  bool
	}{
		{"missing name blocks delivery", func(f *Form) { f.Contact.Name = "" }, StepContact, StepDelivery, false},
		{"bad email blocks payment", func(f *Form) { f.Contact.Email = "nope" }, StepContact, StepPayment, false},
		{"contact step can be reopened", func(f *Form) { f.Contact.Phone = "" }, StepContact, StepContact, true},
		{"missing street blocks payment", func(f *Form) { f.Address.Street = "" }, StepDelivery, StepPayment, false},
		{"delivery reachable with missing street", func(f *Form) { f.Address.Street = "" }, StepDelivery, StepDelivery, true},
		{"pickup skips address", func(f *Form) { f.ShippingMethod = ShippingPickup; f.Address = model.Address{} }, 0, StepPayment, true},
		{"unknown payment", func(f *Form) { f.PaymentMethod = "cash" }, StepPayment, StepPayment, true},
		{"complete form reopens contact", func(f *Form) {}, 0, StepContact, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := completeForm()
			tt.mutate(&f)
			f.Normalize()
			if got := f.FirstIncomplete(); got != tt.wantFirst {
				t.Fatalf("first=%d want %d", got, tt.wantFirst)
			}
			if got := f.CanEnter(tt.enter); got != tt.canEnter {
				t.Fatalf("CanEnter(%d)=%v want %v", tt.enter, got, tt.canEnter)
			}
		})
	}
}

func TestValidateReturnsFieldErrors(t *testing.T) {
	f := completeForm()
	f.Address.ZipCode = "123"
	f.Address.City = ""
	f.Normalize()
	err := f.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err=%v", err)
	}
	if verr.Step != StepDelivery || len(verr.Fields) != 2 {
		t.Fatalf("step=%d fields=%v", verr.Step, verr.Fields)
	}
}

func TestShippingTable(t *testing.T) {
	table := ShippingTable{ShippingPickup: decimal.Zero, ShippingStandard: decimal.RequireFromString("15.00")}
	p, err := table.Price(ShippingStandard)
	if err != nil || !p.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("p=%s err=%v", p, err)
	}
	if _, err := table.Price("drone"); err == nil {
		t.Fatal("expected error")
	}
}
