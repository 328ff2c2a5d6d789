package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusPaid:       true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodPix            PaymentMethod = "pix"
	PaymentMethodBoleto         PaymentMethod = "boleto"
	PaymentMethodStripeCheckout PaymentMethod = "stripe_checkout"
	PaymentMethodMercadoPagoPix PaymentMethod = "mercadopago_pix"
	PaymentMethodBolsaUniforme  PaymentMethod = "bolsa_uniforme"
)

const (
	ProviderStripe      = "stripe"
	ProviderMercadoPago = "mercadopago"
	ProviderManual      = "manual"
)

// Address is the shipping address captured in checkout step 2.
type Address struct {
	ZipCode      string `json:"zip_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type Order struct {
	ID               uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID          *string                     `gorm:"column:user_uid;size:128;index" json:"user_uid,omitempty"`
	CustomerName     string                      `gorm:"column:customer_name;size:160;not null" json:"customer_name"`
	CustomerEmail    string                      `gorm:"column:customer_email;size:255;not null;index" json:"customer_email"`
	CustomerPhone    string                      `gorm:"column:customer_phone;size:40" json:"customer_phone"`
	Subtotal         decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Shipping         decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"shipping"`
	ShippingMethod   string                      `gorm:"column:shipping_method;size:32" json:"shipping_method"`
	Total            decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"total"`
	Status           OrderStatus                 `gorm:"column:status;size:32;not null;index" json:"status"`
	PaymentMethod    PaymentMethod               `gorm:"column:payment_method;size:32;not null" json:"payment_method"`
	PaymentProvider  string                      `gorm:"column:payment_provider;size:32" json:"payment_provider"`
	PaymentReference string                      `gorm:"column:payment_reference;size:255;index" json:"payment_reference,omitempty"`
	ShippingAddress  datatypes.JSONType[Address] `gorm:"column:shipping_address;type:json" json:"shipping_address"`
	PaidAt           *time.Time                  `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Items            []OrderItem                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) OwnedBy(uid string) bool {
	return uid != "" && o.UserUID != nil && *o.UserUID == uid
}
