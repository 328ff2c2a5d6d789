package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Variation is an ad hoc option list shown on the product page, e.g. "Tamanho" -> ["P","M","G"].
type Variation struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type Product struct {
	ID              uint64                         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string                         `gorm:"size:160;not null" json:"name"`
	Description     string                         `gorm:"type:text" json:"description"`
	School          string                         `gorm:"size:120;index" json:"school"`
	Category        string                         `gorm:"size:80;index" json:"category"`
	Price           decimal.Decimal                `gorm:"type:decimal(10,2);not null" json:"price"`
	Images          datatypes.JSONSlice[string]    `gorm:"type:json" json:"images"`
	Variations      datatypes.JSONSlice[Variation] `gorm:"type:json" json:"variations"`
	SimilarProducts datatypes.JSONSlice[uint64]    `gorm:"column:similar_products;type:json" json:"similar_products"`
	IsActive        bool                           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time                      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// FirstImage returns the cover image or an empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MatchOption finds size among the variation options, ignoring case, and returns the catalog spelling.
// Products without variations accept any size as given.
func (p *Product) MatchOption(size string) (string, bool) {
	size = strings.TrimSpace(size)
	if len(p.Variations) == 0 {
		return size, true
	}
	for _, v := range p.Variations {
		for _, o := range v.Options {
			if strings.EqualFold(o, size) {
				return o, true
			}
		}
	}
	return "", false
}
