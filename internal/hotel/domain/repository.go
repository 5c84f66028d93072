package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	HotelCode string
	Name      string
	IsActive  *bool
	Limit     int
	Offset    int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, hotel *Hotel) error
	FindByID(ctx context.Context, id snowflake.ID) (*Hotel, error)
	FindByUserID(ctx context.Context, userID snowflake.ID) (*Hotel, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]Hotel, int64, error)
}
