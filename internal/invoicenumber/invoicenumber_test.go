package invoicenumber

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHotels struct {
	hoteldomain.Service
	codes map[snowflake.ID]string
}

func (s stubHotels) Snapshot(_ context.Context, hotelID snowflake.ID) (hoteldomain.Snapshot, error) {
	code, ok := s.codes[hotelID]
	if !ok {
		return hoteldomain.Snapshot{}, hoteldomain.ErrNotFound
	}
	return hoteldomain.Snapshot{HotelID: hotelID, HotelCode: code, IsActive: true}, nil
}

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "2026-27"},
		{time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FinancialYear(tt.at, 4), tt.at.String())
	}
	assert.Equal(t, "2025", FinancialYear(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 1))
}

func TestFormat(t *testing.T) {
	got, err := Format(Template(4), "000042", "2025-26", 7)
	require.NoError(t, err)
	assert.Equal(t, "000042/2025-26/0007", got)

	_, err = Format("{CODE}/{NOPE}", "000042", "2025-26", 1)
	assert.Error(t, err)

	_, err = Format(DefaultTemplate, "000042", "2025-26", 0)
	assert.Error(t, err)
}

func TestNextRestartsEachFinancialYear(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&Sequence{}))

	clk := clock.NewFakeClock(time.Date(2026, 3, 30, 10, 0, 0, 0, time.UTC))
	gen := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Hotels:    stubHotels{codes: map[snowflake.ID]string{1: "000001", 2: "000002"}},
		Invoicing: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig()),
		Clock:     clk,
	})
	ctx := context.Background()

	first, err := gen.Next(ctx, 1)
	require.NoError(t, err)
	second, err := gen.Next(ctx, 1)
	require.NoError(t, err)
	other, err := gen.Next(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, "000001/2025-26/0001", first)
	assert.Equal(t, "000001/2025-26/0002", second)
	assert.Equal(t, "000002/2025-26/0001", other)

	clk.Advance(72 * time.Hour)
	next, err := gen.Next(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "000001/2026-27/0001", next)

	_, err = gen.Next(ctx, 3)
	assert.ErrorIs(t, err, hoteldomain.ErrNotFound)
}
