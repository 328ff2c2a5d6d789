package model

import "time"

type Feedback struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID   string    `gorm:"column:user_uid;size:128;index;not null" json:"user_uid"`
	UserName  string    `gorm:"column:user_name;size:160" json:"user_name"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	IsVisible bool      `gorm:"column:is_visible;not null;default:false;index" json:"is_visible"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
