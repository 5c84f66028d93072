package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/pkg/db/option"
	"github.com/smallbiznis/innledger/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db    *gorm.DB
	store repository.Repository[domain.Hotel]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db, store: repository.ProvideStore[domain.Hotel](db)}
}

func (r *repo) WithTx(tx *gorm.DB) domain.Repository {
	return &repo{db: tx, store: r.store.WithTrx(tx)}
}

func (r *repo) Insert(ctx context.Context, hotel *domain.Hotel) error {
	return r.store.Create(ctx, hotel)
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Hotel, error) {
	return r.store.FindOne(ctx, &domain.Hotel{ID: id})
}

func (r *repo) FindByUserID(ctx context.Context, userID snowflake.ID) (*domain.Hotel, error) {
	return r.store.FindOne(ctx, &domain.Hotel{UserID: userID})
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Hotel{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Hotel, int64, error) {
	opts := make([]option.QueryOption, 0, 3)
	if filter.HotelCode != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "hotel_code", Operator: option.Prefix, Value: filter.HotelCode}))
	}
	if filter.Name != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "name", Operator: option.Contains, Value: filter.Name}))
	}
	if filter.IsActive != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "is_active", Operator: option.EQ, Value: *filter.IsActive}))
	}

	return r.store.FindPage(ctx, &domain.Hotel{}, repository.Page{
		Sort:   option.QuerySortBy{Default: "hotel_code", OrderBy: "asc"},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, opts...)
}
