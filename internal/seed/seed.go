// Package seed bootstraps the platform admin account on startup.
package seed

import (
	"context"
	"errors"
	"strings"

	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/config"
	"go.uber.org/zap"
)

// EnsureAdmin creates the admin account named in cfg.Admin when it does not
// exist yet. An empty email or password disables seeding.
func EnsureAdmin(ctx context.Context, users authdomain.Service, cfg config.Config, log *zap.Logger) error {
	if users == nil {
		return errors.New("seed user service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	email := strings.TrimSpace(cfg.Admin.Email)
	if email == "" || cfg.Admin.Password == "" {
		log.Info("admin seeding skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	user, err := users.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    email,
		Password: cfg.Admin.Password,
		Role:     authdomain.RoleAdmin,
	})
	switch {
	case errors.Is(err, authdomain.ErrUserExists):
		log.Debug("admin account already present", zap.String("email", email))
		return nil
	case err != nil:
		return err
	}

	log.Info("admin account seeded", zap.String("email", user.Email), zap.String("user_id", user.ID.String()))
	return nil
}
