package models

import (
	"time"
)

// User is a registered account. Recipes, edges and follows reference it.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Avatar       string    `gorm:"size:255" json:"avatar"`
}
