package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ValidateToken(ctx context.Context, rawToken string) (*Claims, error)
	GetUser(ctx context.Context, userID snowflake.ID) (*User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error
	SetPassword(ctx context.Context, userID snowflake.ID, newPassword string) error
	SetActive(ctx context.Context, userID snowflake.ID, active bool) error
}

type CreateUserRequest struct {
	Email              string
	Password           string
	Role               string
	MustChangePassword bool
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token              string       `json:"token"`
	ExpiresAt          time.Time    `json:"expires_at"`
	UserID             snowflake.ID `json:"user_id"`
	Role               string       `json:"role"`
	HotelID            snowflake.ID `json:"hotel_id,omitempty"`
	MustChangePassword bool         `json:"must_change_password"`
}
