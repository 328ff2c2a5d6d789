package model

import "github.com/shopspring/decimal"

// OrderItem is a snapshot of the product at purchase time.
type OrderItem struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint64          `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID    uint64          `gorm:"column:product_id;index" json:"product_id"`
	ProductName  string          `gorm:"column:product_name;size:160;not null" json:"product_name"`
	ProductImage string          `gorm:"column:product_image;size:512" json:"product_image"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Size         string          `gorm:"column:size;size:32" json:"size"`
	Quantity     int             `gorm:"not null" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
