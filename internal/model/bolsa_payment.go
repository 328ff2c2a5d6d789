package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BolsaStatus string

const (
	BolsaStatusPending  BolsaStatus = "pending"
	BolsaStatusApproved BolsaStatus = "approved"
	BolsaStatusRejected BolsaStatus = "rejected"
)

// BolsaItem is a line of the cart submitted with a Bolsa Uniforme payment.
type BolsaItem struct {
	ProductID uint64          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

// BolsaUniformePayment is a manual payment with the school-issued card, reviewed by a cashier.
type BolsaUniformePayment struct {
	ID              uint64                         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID         *string                        `gorm:"column:user_uid;size:128;index" json:"user_uid,omitempty"`
	CustomerName    string                         `gorm:"column:customer_name;size:160;not null" json:"customer_name"`
	CustomerEmail   string                         `gorm:"column:customer_email;size:255;not null" json:"customer_email"`
	CustomerPhone   string                         `gorm:"column:customer_phone;size:40" json:"customer_phone"`
	CustomerCPF     string                         `gorm:"column:customer_cpf;size:20" json:"customer_cpf"`
	QRCodeImage     string                         `gorm:"column:qr_code_image;type:longtext" json:"qr_code_image"`
	CardPassword    string                         `gorm:"column:card_password;size:64" json:"card_password"`
	Notes           string                         `gorm:"column:notes;type:text" json:"notes"`
	Status          BolsaStatus                    `gorm:"column:status;size:32;not null;index" json:"status"`
	Items           datatypes.JSONSlice[BolsaItem] `gorm:"column:items;type:json" json:"items"`
	Subtotal        decimal.Decimal                `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Shipping        decimal.Decimal                `gorm:"type:decimal(10,2);not null" json:"shipping"`
	ShippingMethod  string                         `gorm:"column:shipping_method;size:32" json:"shipping_method"`
	Total           decimal.Decimal                `gorm:"type:decimal(10,2);not null" json:"total"`
	ShippingAddress datatypes.JSONType[Address]    `gorm:"column:shipping_address;type:json" json:"shipping_address"`
	OrderID         *uint64                        `gorm:"column:order_id;index" json:"order_id,omitempty"`
	ReviewedBy      string                         `gorm:"column:reviewed_by;size:32" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time                     `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time                      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BolsaUniformePayment) TableName() string {
	return "bolsa_uniforme_payments"
}
