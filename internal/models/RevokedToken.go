package models

import "time"

// RevokedToken records a logged-out token id until the token would have
// expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
