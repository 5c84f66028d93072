package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/auth/password"
	"github.com/smallbiznis/innledger/internal/auth/token"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Tenants domain.TenantResolver
	Tokens  *token.Issuer
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	tenants domain.TenantResolver
	tokens  *token.Issuer
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		log:     p.Log.Named("auth.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		tenants: p.Tenants,
		tokens:  p.Tokens,
		clock:   clk,
		metrics: p.Metrics,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	user, err := NewUser(s.genID, s.clock, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// NewUser validates req and builds an unsaved account with a hashed password.
func NewUser(genID *snowflake.Node, clk clock.Clock, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != domain.RoleAdmin && role != domain.RoleHotel {
		return nil, domain.ErrInvalidRole
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := clk.Now()
	user := &domain.User{
		ID:                 genID.Generate(),
		Email:              email,
		PasswordHash:       hashed,
		Role:               role,
		IsActive:           true,
		MustChangePassword: req.MustChangePassword,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if !req.MustChangePassword {
		user.LastPasswordChanged = &now
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	result, err := s.login(ctx, req)
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		outcome = "disabled"
	default:
		outcome = "error"
	}
	s.metrics.RecordLoginAttempt(ctx, outcome)
	return result, err
}

func (s *Service) login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	var hotelID snowflake.ID
	if user.Role == domain.RoleHotel {
		tenant, err := s.tenants.ResolveTenant(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if !tenant.IsActive {
			return nil, domain.ErrAccountDisabled
		}
		hotelID = tenant.HotelID
	}

	raw, expiresAt, err := s.tokens.Issue(user.ID, user.Role, hotelID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)

	return &domain.LoginResult{
		Token:              raw,
		ExpiresAt:          expiresAt,
		UserID:             user.ID,
		Role:               user.Role,
		HotelID:            hotelID,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *Service) ValidateToken(ctx context.Context, rawToken string) (*domain.Claims, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return claims, nil
}

func (s *Service) GetUser(ctx context.Context, userID snowflake.ID) (*domain.User, error) {
	if userID == 0 {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return s.SetPassword(ctx, userID, newPassword)
}

func (s *Service) SetPassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	if err := password.Validate(newPassword); err != nil {
		return err
	}
	if userID == 0 {
		return domain.ErrUserNotFound
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash":         hashed,
		"must_change_password":  false,
		"last_password_changed": &now,
		"updated_at":            now,
	})
}

func (s *Service) SetActive(ctx context.Context, userID snowflake.ID, active bool) error {
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"is_active":  active,
		"updated_at": s.clock.Now(),
	})
}
