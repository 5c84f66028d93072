package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/auth/repository"
	"github.com/smallbiznis/innledger/internal/auth/token"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTenants struct {
	tenant authdomain.Tenant
	err    error
}

func (s *stubTenants) ResolveTenant(ctx context.Context, userID snowflake.ID) (authdomain.Tenant, error) {
	return s.tenant, s.err
}

func newTestService(t *testing.T, tenants *stubTenants) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return New(Params{
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.New(dbConn),
		Tenants: tenants,
		Tokens:  token.NewIssuer([]byte("test-secret"), "innledger", time.Hour, clk),
		Clock:   clk,
	})
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, &stubTenants{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    "Admin@Example.com",
		Password: "correct-pass1",
		Role:     authdomain.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "admin@example.com", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "nobody@example.com", Password: "correct-pass1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLoginHotelAccountCarriesHotelID(t *testing.T) {
	tenants := &stubTenants{tenant: authdomain.Tenant{HotelID: snowflake.ID(99), IsActive: true}}
	svc := newTestService(t, tenants)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:              "frontdesk@hotel.example",
		Password:           "temp1234",
		Role:               authdomain.RoleHotel,
		MustChangePassword: true,
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, authdomain.LoginRequest{Email: "FRONTDESK@hotel.example ", Password: "temp1234"})
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(99), res.HotelID)
	assert.True(t, res.MustChangePassword)

	claims, err := svc.ValidateToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, snowflake.ID(99), claims.HotelID)
	assert.Equal(t, authdomain.RoleHotel, claims.Role)
}

func TestLoginRejectsInactiveHotel(t *testing.T) {
	tenants := &stubTenants{tenant: authdomain.Tenant{HotelID: snowflake.ID(5), IsActive: false}}
	svc := newTestService(t, tenants)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email: "closed@hotel.example", Password: "temp1234", Role: authdomain.RoleHotel,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "closed@hotel.example", Password: "temp1234"})
	assert.ErrorIs(t, err, authdomain.ErrAccountDisabled)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc := newTestService(t, &stubTenants{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email: "ops@example.com", Password: "opspass99", Role: authdomain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, user.ID, false))

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "ops@example.com", Password: "opspass99"})
	assert.ErrorIs(t, err, authdomain.ErrAccountDisabled)
}

func TestCreateUserRejectsDuplicateAndInvalidInput(t *testing.T) {
	svc := newTestService(t, &stubTenants{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "a@example.com", Password: "abcdefg1", Role: authdomain.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "A@example.com", Password: "abcdefg1", Role: authdomain.RoleAdmin})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "not-an-email", Password: "abcdefg1", Role: authdomain.RoleAdmin})
	assert.ErrorIs(t, err, authdomain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "b@example.com", Password: "short", Role: authdomain.RoleAdmin})
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "c@example.com", Password: "abcdefg1", Role: "owner"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidRole)
}

func TestChangePasswordClearsMustChangeFlag(t *testing.T) {
	svc := newTestService(t, &stubTenants{tenant: authdomain.Tenant{HotelID: 1, IsActive: true}})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email: "owner@hotel.example", Password: "temp1234", Role: authdomain.RoleHotel, MustChangePassword: true,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-one1", "newpass123")
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "temp1234", "weak")
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "temp1234", "newpass123"))

	updated, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updated.MustChangePassword)
	assert.NotNil(t, updated.LastPasswordChanged)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "owner@hotel.example", Password: "temp1234"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "owner@hotel.example", Password: "newpass123"})
	assert.NoError(t, err)
}
