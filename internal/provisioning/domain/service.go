package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ProvisionHotelRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ProvisionResult carries the one-time temporary password. It is never
// stored in clear.
type ProvisionResult struct {
	HotelID           snowflake.ID `json:"hotel_id"`
	UserID            snowflake.ID `json:"user_id"`
	HotelCode         string       `json:"hotel_code"`
	Email             string       `json:"email"`
	TemporaryPassword string       `json:"temporary_password"`
}

type Service interface {
	ProvisionHotel(ctx context.Context, req ProvisionHotelRequest) (*ProvisionResult, error)
}
