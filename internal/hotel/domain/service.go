package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

type GSTSettings struct {
	HasGST        bool             `json:"has_gst"`
	GSTNumber     string           `json:"gst_number"`
	GSTPercentage *decimal.Decimal `json:"gst_percentage"`
	GSTType       string           `json:"gst_type"`
}

type CompleteProfileRequest struct {
	Name        string
	Address     string
	GST         GSTSettings
	NewPassword string
}

type UpdateProfileRequest struct {
	Name    *string
	Address *string
	Email   *string
	Phone   *string
}

type ListHotelRequest struct {
	pagination.Pagination
	HotelCode string
	Name      string
	IsActive  *bool
}

type ListHotelResponse struct {
	pagination.PageInfo
	Hotels []Hotel `json:"hotels"`
}

type Service interface {
	GetByID(ctx context.Context, hotelID snowflake.ID) (Hotel, error)
	GetByUserID(ctx context.Context, userID snowflake.ID) (Hotel, error)
	CompleteProfile(ctx context.Context, hotelID snowflake.ID, req CompleteProfileRequest) (Hotel, error)
	UpdateProfile(ctx context.Context, hotelID snowflake.ID, req UpdateProfileRequest) (Hotel, error)
	UpdateGST(ctx context.Context, hotelID snowflake.ID, req GSTSettings) (Hotel, error)
	SetLogo(ctx context.Context, hotelID snowflake.ID, url string) (Hotel, error)
	SetSignature(ctx context.Context, hotelID snowflake.ID, url string) (Hotel, error)
	List(ctx context.Context, req ListHotelRequest) (ListHotelResponse, error)
	SetActive(ctx context.Context, hotelID snowflake.ID, active bool) (Hotel, error)
	Snapshot(ctx context.Context, hotelID snowflake.ID) (Snapshot, error)
}
