package migration

import (
	"context"

	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/config"
	"github.com/smallbiznis/innledger/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, users authdomain.Service, log *zap.Logger) error {
		log = log.Named("migration")
		if cfg.DBMigrate {
			if err := Apply(conn); err != nil {
				return err
			}
			log.Info("schema up to date", zap.String("dialect", conn.Dialector.Name()))
		}
		return seed.EnsureAdmin(context.Background(), users, cfg, log)
	}),
)
