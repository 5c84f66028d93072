// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin = "admin"
	RoleHotel = "hotel"
)

// User represents a login account. Hotel accounts are created by
// provisioning; the platform admin is seeded on boot.
type User struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	Email               string       `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash        string       `gorm:"column:password_hash;type:text;not null"`
	Role                string       `gorm:"column:role;type:varchar(16);not null"`
	IsActive            bool         `gorm:"column:is_active;not null;default:true"`
	MustChangePassword  bool         `gorm:"column:must_change_password;not null;default:false"`
	LastPasswordChanged *time.Time   `gorm:"column:last_password_changed"`
	CreatedAt           time.Time    `gorm:"not null"`
	UpdatedAt           time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Tenant is the hotel an account signs in for.
type Tenant struct {
	HotelID  snowflake.ID
	IsActive bool
}

// Claims are the verified contents of a session token.
type Claims struct {
	UserID    snowflake.ID
	Role      string
	HotelID   snowflake.ID
	ExpiresAt time.Time
}
