package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/room/domain"
	"github.com/smallbiznis/innledger/pkg/db/option"
	"github.com/smallbiznis/innledger/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db    *gorm.DB
	store repository.Repository[domain.Room]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db, store: repository.ProvideStore[domain.Room](db)}
}

func (r *repo) Insert(ctx context.Context, room *domain.Room) error {
	return r.store.Create(ctx, room)
}

func (r *repo) FindByID(ctx context.Context, hotelID, id snowflake.ID) (*domain.Room, error) {
	return r.store.FindOne(ctx, &domain.Room{ID: id, HotelID: hotelID})
}

func (r *repo) List(ctx context.Context, hotelID snowflake.ID, activeOnly bool) ([]domain.Room, error) {
	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Default: "room_number", OrderBy: "asc"}),
	}
	if activeOnly {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "is_active", Operator: option.EQ, Value: true}))
	}

	return r.store.Find(ctx, &domain.Room{HotelID: hotelID}, opts...)
}

func (r *repo) UpdateFields(ctx context.Context, hotelID, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND hotel_id = ?", id, hotelID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
