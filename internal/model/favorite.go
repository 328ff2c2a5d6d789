package model

import "time"

type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID   string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:uk_favorites_user_product_school" json:"user_uid"`
	ProductID uint64    `gorm:"column:product_id;not null;uniqueIndex:uk_favorites_user_product_school" json:"product_id"`
	School    string    `gorm:"column:school;size:120;not null;default:'';uniqueIndex:uk_favorites_user_product_school" json:"school"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
