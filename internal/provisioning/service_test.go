package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/auth/password"
	authrepository "github.com/smallbiznis/innledger/internal/auth/repository"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	hotelrepository "github.com/smallbiznis/innledger/internal/hotel/repository"
	"github.com/smallbiznis/innledger/internal/provisioning/domain"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &hoteldomain.Hotel{}, &CodeSequence{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	return New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Users:     authrepository.New(conn),
		Hotels:    hotelrepository.Provide(conn),
		Invoicing: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig()),
		Clock:     clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
	}), conn
}

func TestProvisionHotelAllocatesSequentialCodes(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	first, err := svc.ProvisionHotel(ctx, domain.ProvisionHotelRequest{Name: "Lakeview Inn", Email: "Owner@Lakeview.in", Phone: "98765 43210"})
	require.NoError(t, err)
	second, err := svc.ProvisionHotel(ctx, domain.ProvisionHotelRequest{Name: "Hill Stay", Email: "desk@hillstay.in", Phone: "9876500000"})
	require.NoError(t, err)

	assert.Equal(t, "000001", first.HotelCode)
	assert.Equal(t, "000002", second.HotelCode)
	assert.Equal(t, "owner@lakeview.in", first.Email)
	assert.Len(t, first.TemporaryPassword, 8)

	var user authdomain.User
	require.NoError(t, conn.Where("id = ?", first.UserID).First(&user).Error)
	assert.Equal(t, authdomain.RoleHotel, user.Role)
	assert.True(t, user.MustChangePassword)
	assert.NotEqual(t, first.TemporaryPassword, user.PasswordHash)
	assert.True(t, password.Verify(first.TemporaryPassword, user.PasswordHash))

	var hotel hoteldomain.Hotel
	require.NoError(t, conn.Where("id = ?", first.HotelID).First(&hotel).Error)
	assert.Equal(t, first.UserID, hotel.UserID)
	assert.False(t, hotel.ProfileCompleted)
	assert.True(t, hotel.IsActive)
	assert.Equal(t, "+919876543210", hotel.Phone)
}

func TestProvisionHotelRejectsDuplicateEmail(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	req := domain.ProvisionHotelRequest{Name: "Lakeview Inn", Email: "owner@lakeview.in", Phone: "9876543210"}

	_, err := svc.ProvisionHotel(ctx, req)
	require.NoError(t, err)
	_, err = svc.ProvisionHotel(ctx, req)
	assert.ErrorIs(t, err, authdomain.ErrUserExists)

	var hotels int64
	require.NoError(t, conn.Model(&hoteldomain.Hotel{}).Count(&hotels).Error)
	assert.Equal(t, int64(1), hotels)
}

func TestProvisionHotelValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProvisionHotel(ctx, domain.ProvisionHotelRequest{Email: "a@b.in", Phone: "9876543210"})
	assert.ErrorIs(t, err, hoteldomain.ErrInvalidName)

	_, err = svc.ProvisionHotel(ctx, domain.ProvisionHotelRequest{Name: "X", Email: "nope", Phone: "9876543210"})
	assert.ErrorIs(t, err, hoteldomain.ErrInvalidEmail)

	_, err = svc.ProvisionHotel(ctx, domain.ProvisionHotelRequest{Name: "X", Email: "a@b.in", Phone: "12"})
	assert.ErrorIs(t, err, hoteldomain.ErrInvalidPhone)
}

func TestTemporaryPasswordPassesPolicy(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := temporaryPassword()
		require.NoError(t, err)
		assert.NoError(t, password.Validate(pw))
	}
}
