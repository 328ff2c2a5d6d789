// Package checkout validates the three-step checkout form.
package checkout

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/shinyyama/uniforme-store/internal/model"
)

type Step int

const (
	StepContact Step = iota + 1
	StepDelivery
	StepPayment
)

const (
	ShippingPickup   = "pickup"
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

var paymentMethods = map[model.PaymentMethod]bool{
	model.PaymentMethodStripeCheckout: true,
	model.PaymentMethodCard:           true,
	model.PaymentMethodPix:            true,
	model.PaymentMethodBoleto:         true,
	model.PaymentMethodMercadoPagoPix: true,
	model.PaymentMethodBolsaUniforme:  true,
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	CPF   string `json:"cpf,omitempty"`
}

type Form struct {
	Contact        Contact             `json:"contact"`
	Address        model.Address       `json:"address"`
	ShippingMethod string              `json:"shippingMethod"`
	PaymentMethod  model.PaymentMethod `json:"paymentMethod"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the problems of the first incomplete step.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("step %d incomplete: %s", e.Step, strings.Join(names, ", "))
}

// Normalize trims every text field in place.
func (f *Form) Normalize() {
	f.Contact.Name = strings.TrimSpace(f.Contact.Name)
	f.Contact.Email = strings.ToLower(strings.TrimSpace(f.Contact.Email))
	f.Contact.Phone = strings.TrimSpace(f.Contact.Phone)
	f.Contact.CPF = strings.TrimSpace(f.Contact.CPF)
	a := &f.Address
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.Complement = strings.TrimSpace(a.Complement)
	a.Neighborhood = strings.TrimSpace(a.Neighborhood)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	f.ShippingMethod = strings.ToLower(strings.TrimSpace(f.ShippingMethod))
}

func (f *Form) ValidateStep(s Step) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}
	switch s {
	case StepContact:
		if f.Contact.Name == "" {
			add("contact.name", "required")
		}
		if f.Contact.Email == "" {
			add("contact.email", "required")
		} else if _, err := mail.ParseAddress(f.Contact.Email); err != nil {
			add("contact.email", "invalid email")
		}
		if n := countDigits(f.Contact.Phone); n == 0 {
			add("contact.phone", "required")
		} else if n < 10 || n > 13 {
			add("contact.phone", "invalid phone")
		}
	case StepDelivery:
		switch f.ShippingMethod {
		case ShippingPickup:
			return nil
		case ShippingStandard, ShippingExpress:
		case "":
			add("shippingMethod", "required")
		default:
			add("shippingMethod", "unknown shipping method")
		}
		a := f.Address
		if countDigits(a.ZipCode) != 8 {
			add("address.zip_code", "zip code must have 8 digits")
		}
		if a.Street == "" {
			add("address.street", "required")
		}
		if a.Number == "" {
			add("address.number", "required")
		}
		if a.Neighborhood == "" {
			add("address.neighborhood", "required")
		}
		if a.City == "" {
			add("address.city", "required")
		}
		if len(a.State) != 2 {
			add("address.state", "state must be a 2-letter code")
		}
	case StepPayment:
		if f.PaymentMethod == "" {
			add("paymentMethod", "required")
		} else if !paymentMethods[f.PaymentMethod] {
			add("paymentMethod", "unknown payment method")
		}
	default:
		add("step", "unknown step")
	}
	return errs
}

// FirstIncomplete returns the first step with problems, or 0 when the form is complete.
func (f *Form) FirstIncomplete() Step {
	for s := StepContact; s <= StepPayment; s++ {
		if len(f.ValidateStep(s)) > 0 {
			return s
		}
	}
	return 0
}

// CanEnter reports whether every step before s is complete. Earlier steps can always be reopened.
func (f *Form) CanEnter(s Step) bool {
	if s < StepContact || s > StepPayment {
		return false
	}
	first := f.FirstIncomplete()
	return first == 0 || s <= first
}

// Validate returns a *ValidationError for the first incomplete step.
func (f *Form) Validate() error {
	s := f.FirstIncomplete()
	if s == 0 {
		return nil
	}
	return &ValidationError{Step: s, Fields: f.ValidateStep(s)}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
