package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // Bcrypt hash, hidden from JSON
	ResetToken   *string   `json:"-"`                 // Set while a password reset is pending
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
