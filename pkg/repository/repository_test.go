package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/smallbiznis/innledger/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type folio struct {
	ID      int64 `gorm:"primaryKey"`
	HotelID int64
	Number  string
	Open    bool
}

func newFolioStore(t *testing.T) (*gorm.DB, Repository[folio]) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&folio{}))

	s := ProvideStore[folio](conn)
	ctx := context.Background()
	for i, number := range []string{"F-03", "F-01", "F-02", "G-01"} {
		require.NoError(t, s.Create(ctx, &folio{ID: int64(i + 1), HotelID: 7, Number: number, Open: i%2 == 0}))
	}
	require.NoError(t, s.Create(ctx, &folio{ID: 10, HotelID: 8, Number: "F-01"}))
	return conn, s
}

func TestFindOneReturnsNilWhenMissing(t *testing.T) {
	_, s := newFolioStore(t)
	ctx := context.Background()

	got, err := s.FindOne(ctx, &folio{HotelID: 8, Number: "F-01"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.ID)

	got, err = s.FindOne(ctx, &folio{HotelID: 8, Number: "F-02"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindPageCountsBeforeWindowing(t *testing.T) {
	_, s := newFolioStore(t)
	ctx := context.Background()
	prefix := option.ApplyOperator(option.Condition{Field: "number", Operator: option.Prefix, Value: "F-"})

	items, total, err := s.FindPage(ctx, &folio{HotelID: 7}, Page{
		Sort:  option.QuerySortBy{Default: "number", OrderBy: "asc"},
		Limit: 2,
	}, prefix)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "F-01", items[0].Number)
	assert.Equal(t, "F-02", items[1].Number)

	items, total, err = s.FindPage(ctx, &folio{HotelID: 7}, Page{Limit: 2, Offset: 5}, prefix)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, items)
}

func TestWithTrxRollsBack(t *testing.T) {
	conn, s := newFolioStore(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := s.WithTrx(tx).Create(ctx, &folio{ID: 20, HotelID: 9, Number: "H-01"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	total, err := s.Count(ctx, &folio{HotelID: 9})
	require.NoError(t, err)
	assert.Zero(t, total)

	open, err := s.Find(ctx, &folio{HotelID: 7, Open: true})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}
