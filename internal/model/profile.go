package model

import (
	"time"

	"gorm.io/datatypes"
)

// Profile holds contact data for a Firebase user (1:1 by uid).
type Profile struct {
	UID       string                      `gorm:"column:uid;primaryKey;size:128" json:"uid"`
	FullName  string                      `gorm:"column:full_name;size:160" json:"full_name"`
	Email     string                      `gorm:"column:email;size:255" json:"email"`
	Phone     string                      `gorm:"column:phone;size:40" json:"phone"`
	CPF       string                      `gorm:"column:cpf;size:20" json:"cpf"`
	Address   datatypes.JSONType[Address] `gorm:"column:address;type:json" json:"address"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
