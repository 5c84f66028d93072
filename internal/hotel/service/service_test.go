package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	authrepository "github.com/smallbiznis/innledger/internal/auth/repository"
	authservice "github.com/smallbiznis/innledger/internal/auth/service"
	"github.com/smallbiznis/innledger/internal/auth/token"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	"github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/hotel/repository"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   domain.Service
	auth  authdomain.Service
	repo  domain.Repository
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Hotel{}, &authdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	repo := repository.Provide(conn)
	auth := authservice.New(authservice.Params{
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    authrepository.New(conn),
		Tenants: NewTenantResolver(repo),
		Tokens:  token.NewIssuer([]byte("secret"), "innledger", time.Hour, clk),
		Clock:   clk,
	})

	svc := New(Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		Auth:      auth,
		Invoicing: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig()),
		Clock:     clk,
	})
	return &fixture{svc: svc, auth: auth, repo: repo, node: node, clock: clk}
}

func (f *fixture) seedHotel(t *testing.T, code, email string) domain.Hotel {
	t.Helper()
	ctx := context.Background()

	user, err := f.auth.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:              email,
		Password:           "temp1234",
		Role:               authdomain.RoleHotel,
		MustChangePassword: true,
	})
	require.NoError(t, err)

	now := f.clock.Now()
	hotel := domain.Hotel{
		ID:        f.node.Generate(),
		UserID:    user.ID,
		HotelCode: code,
		Name:      "Hotel " + code,
		Email:     email,
		GSTType:   domain.GSTTypeCGSTSGST,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.repo.Insert(ctx, &hotel))
	return hotel
}

func pct(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCompleteProfileSetsPasswordAndGST(t *testing.T) {
	f := newFixture(t)
	hotel := f.seedHotel(t, "000001", "sea@hotel.example")
	ctx := context.Background()

	updated, err := f.svc.CompleteProfile(ctx, hotel.ID, domain.CompleteProfileRequest{
		Name:    "Sea View Inn",
		Address: "1 Beach Road, Goa",
		GST: domain.GSTSettings{
			HasGST:        true,
			GSTNumber:     "30aapfu0939f1zv",
			GSTPercentage: pct("18"),
		},
		NewPassword: "seaview2025",
	})
	require.NoError(t, err)
	assert.True(t, updated.ProfileCompleted)
	assert.Equal(t, "30AAPFU0939F1ZV", updated.GSTNumber)
	assert.True(t, decimal.NewFromInt(18).Equal(updated.GSTPercentage))
	assert.Equal(t, domain.GSTTypeCGSTSGST, updated.GSTType)

	res, err := f.auth.Login(ctx, authdomain.LoginRequest{Email: "sea@hotel.example", Password: "seaview2025"})
	require.NoError(t, err)
	assert.False(t, res.MustChangePassword)
	assert.Equal(t, hotel.ID, res.HotelID)

	_, err = f.svc.CompleteProfile(ctx, hotel.ID, domain.CompleteProfileRequest{Name: "x", Address: "y", NewPassword: "another99"})
	assert.ErrorIs(t, err, domain.ErrProfileCompleted)
}

func TestCompleteProfileValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t)
	hotel := f.seedHotel(t, "000002", "hill@hotel.example")
	ctx := context.Background()

	_, err := f.svc.CompleteProfile(ctx, hotel.ID, domain.CompleteProfileRequest{
		Name: "Hill Stay", Address: "Ooty", NewPassword: "weak",
	})
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)

	got, err := f.svc.GetByID(ctx, hotel.ID)
	require.NoError(t, err)
	assert.False(t, got.ProfileCompleted)
}

func TestUpdateGSTRules(t *testing.T) {
	f := newFixture(t)
	hotel := f.seedHotel(t, "000003", "gst@hotel.example")
	ctx := context.Background()

	_, err := f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: true, GSTNumber: "bad", GSTPercentage: pct("12")})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTNumber)

	_, err = f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: true, GSTNumber: "27AAPFU0939F1ZV", GSTPercentage: pct("28.01")})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTPercentage)

	_, err = f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: true, GSTNumber: "27AAPFU0939F1ZV", GSTPercentage: pct("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTPercentage)

	_, err = f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: false, GSTType: "vat"})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTType)

	updated, err := f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: true, GSTNumber: "27AAPFU0939F1ZV", GSTPercentage: pct("12"), GSTType: "IGST"})
	require.NoError(t, err)
	assert.Equal(t, domain.GSTTypeIGST, updated.GSTType)

	cleared, err := f.svc.UpdateGST(ctx, hotel.ID, domain.GSTSettings{HasGST: false})
	require.NoError(t, err)
	assert.False(t, cleared.HasGST)
	assert.Empty(t, cleared.GSTNumber)
	assert.True(t, cleared.GSTPercentage.IsZero())
}

func TestUpdateProfileNormalisesPhone(t *testing.T) {
	f := newFixture(t)
	hotel := f.seedHotel(t, "000004", "city@hotel.example")
	ctx := context.Background()

	phoneNumber := "98765 43210"
	updated, err := f.svc.UpdateProfile(ctx, hotel.ID, domain.UpdateProfileRequest{Phone: &phoneNumber})
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", updated.Phone)

	bad := "12"
	_, err = f.svc.UpdateProfile(ctx, hotel.ID, domain.UpdateProfileRequest{Phone: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	blank := " "
	_, err = f.svc.UpdateProfile(ctx, hotel.ID, domain.UpdateProfileRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestSnapshotIsScopedToSessionHotel(t *testing.T) {
	f := newFixture(t)
	a := f.seedHotel(t, "000005", "a@hotel.example")
	b := f.seedHotel(t, "000006", "b@hotel.example")

	ctx := hotelcontext.WithHotelID(context.Background(), a.ID)
	snap, err := f.svc.Snapshot(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "000005", snap.HotelCode)

	_, err = f.svc.Snapshot(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Snapshot(context.Background(), snowflake.ID(12345))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetActiveDisablesLogin(t *testing.T) {
	f := newFixture(t)
	hotel := f.seedHotel(t, "000007", "off@hotel.example")
	ctx := context.Background()

	updated, err := f.svc.SetActive(ctx, hotel.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = f.auth.Login(ctx, authdomain.LoginRequest{Email: "off@hotel.example", Password: "temp1234"})
	assert.ErrorIs(t, err, authdomain.ErrAccountDisabled)

	_, err = f.svc.SetActive(ctx, hotel.ID, true)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, authdomain.LoginRequest{Email: "off@hotel.example", Password: "temp1234"})
	assert.NoError(t, err)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	f.seedHotel(t, "000010", "h10@hotel.example")
	f.seedHotel(t, "000011", "h11@hotel.example")
	third := f.seedHotel(t, "000020", "h20@hotel.example")
	ctx := context.Background()

	_, err := f.svc.SetActive(ctx, third.ID, false)
	require.NoError(t, err)

	res, err := f.svc.List(ctx, domain.ListHotelRequest{HotelCode: "00001"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	require.Len(t, res.Hotels, 2)
	assert.Equal(t, "000010", res.Hotels[0].HotelCode)

	inactive := false
	res, err = f.svc.List(ctx, domain.ListHotelRequest{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, res.Hotels, 1)
	assert.Equal(t, "000020", res.Hotels[0].HotelCode)

	res, err = f.svc.List(ctx, domain.ListHotelRequest{Pagination: pagination.Pagination{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, res.Hotels, 1)
	assert.False(t, res.HasMore)
}
