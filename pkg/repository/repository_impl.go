package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/innledger/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}

func (s *store[T]) FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	var out T
	err := s.matching(ctx, filter, opts).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]T, error) {
	out := make([]T, 0)
	if err := s.matching(ctx, filter, opts).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) Count(ctx context.Context, filter *T, opts ...option.QueryOption) (int64, error) {
	var total int64
	err := s.matching(ctx, filter, opts).Count(&total).Error
	return total, err
}

func (s *store[T]) FindPage(ctx context.Context, filter *T, page Page, opts ...option.QueryOption) ([]T, int64, error) {
	total, err := s.Count(ctx, filter, opts...)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || (page.Offset > 0 && int64(page.Offset) >= total) {
		return []T{}, total, nil
	}

	windowed := make([]option.QueryOption, 0, len(opts)+2)
	windowed = append(windowed, opts...)
	windowed = append(windowed, option.WithSortBy(page.Sort), option.WithPaging(page.Limit, page.Offset))
	items, err := s.Find(ctx, filter, windowed...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *store[T]) matching(ctx context.Context, filter *T, opts []option.QueryOption) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		q = q.Where(filter)
	}
	for _, opt := range opts {
		q = opt.Apply(q)
	}
	return q
}
