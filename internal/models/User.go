package models

import "time"

// Canonical user roles.
const (
	RoleAdmin  = "ADMIN"
	RoleFiscal = "FISCAL"
	RoleUser   = "USER"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Nome               string    `gorm:"size:255;not null" json:"nome"`
	Email              string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	SenhaHash          string    `gorm:"size:255;not null" json:"-"`
	Tipo               string    `gorm:"size:20;not null;default:USER" json:"tipo"`
	IsActive           bool      `gorm:"not null;default:true" json:"is_active"`
	MustChangePassword bool      `gorm:"not null" json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (User) TableName() string { return "usuarios" }
