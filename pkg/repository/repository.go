package repository

import (
	"context"

	"github.com/smallbiznis/innledger/pkg/db/option"
	"gorm.io/gorm"
)

// Page selects one sorted window of a listing.
type Page struct {
	Sort   option.QuerySortBy
	Limit  int
	Offset int
}

// Repository is a generic gorm-backed store for the hotel, room and invoice
// headers. Struct filters match non-zero fields only; opts add the rest.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Create(ctx context.Context, resource *T) error
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]T, error)
	Count(ctx context.Context, filter *T, opts ...option.QueryOption) (int64, error)
	// FindPage returns the rows of page together with the total number of
	// rows matching filter and opts.
	FindPage(ctx context.Context, filter *T, page Page, opts ...option.QueryOption) ([]T, int64, error)
}
