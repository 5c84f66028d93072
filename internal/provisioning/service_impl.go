package provisioning

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/auth/password"
	authservice "github.com/smallbiznis/innledger/internal/auth/service"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/observability/metrics"
	"github.com/smallbiznis/innledger/internal/provisioning/domain"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/smallbiznis/innledger/pkg/phone"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Users     authdomain.Repository
	Hotels    hoteldomain.Repository
	Invoicing *config.InvoicingConfigHolder
	Clock     clock.Clock
	Metrics   *metrics.Metrics    `optional:"true"`
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	users     authdomain.Repository
	hotels    hoteldomain.Repository
	invoicing *config.InvoicingConfigHolder
	clock     clock.Clock
	metrics   *metrics.Metrics
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("provisioning.service"),
		genID:     p.GenID,
		users:     p.Users,
		hotels:    p.Hotels,
		invoicing: p.Invoicing,
		clock:     p.Clock,
		metrics:   p.Metrics,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) ProvisionHotel(ctx context.Context, req domain.ProvisionHotelRequest) (*domain.ProvisionResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, hoteldomain.ErrInvalidName
	}
	email, err := authservice.NormalizeEmail(req.Email)
	if err != nil {
		return nil, hoteldomain.ErrInvalidEmail
	}
	cfg := s.invoicing.Get()
	phoneNumber, err := phone.Normalize(req.Phone, cfg.PhoneRegion)
	if err != nil {
		return nil, hoteldomain.ErrInvalidPhone
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, authdomain.ErrUserExists
	} else if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}

	temporary, err := temporaryPassword()
	if err != nil {
		return nil, err
	}

	var result domain.ProvisionResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := nextHotelCode(ctx, tx)
		if err != nil {
			return err
		}

		user, err := authservice.NewUser(s.genID, s.clock, authdomain.CreateUserRequest{
			Email:              email,
			Password:           temporary,
			Role:               authdomain.RoleHotel,
			MustChangePassword: true,
		})
		if err != nil {
			return err
		}
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return authdomain.ErrUserExists
			}
			return err
		}

		now := s.clock.Now()
		hotel := &hoteldomain.Hotel{
			ID:        s.genID.Generate(),
			UserID:    user.ID,
			HotelCode: code,
			Name:      name,
			Email:     email,
			Phone:     phoneNumber,
			GSTType:   cfg.DefaultGSTType,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.hotels.WithTx(tx).Insert(ctx, hotel); err != nil {
			return err
		}

		result = domain.ProvisionResult{
			HotelID:           hotel.ID,
			UserID:            user.ID,
			HotelCode:         code,
			Email:             email,
			TemporaryPassword: temporary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hotel provisioned",
		zap.String("hotel_id", result.HotelID.String()),
		zap.String("hotel_code", result.HotelCode),
	)
	s.metrics.RecordHotelProvisioned(ctx)
	if s.auditSvc != nil {
		targetID := result.HotelID.String()
		hotelID := result.HotelID
		if err := s.auditSvc.AuditLog(ctx, &hotelID, auditdomain.ActionHotelProvisioned, "hotel", &targetID, map[string]any{
			"hotel_code": result.HotelCode,
			"email":      result.Email,
		}); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}
	return &result, nil
}

// temporaryPassword derives an 8 character password from a random uuid,
// retrying until it carries both a letter and a digit.
func temporaryPassword() (string, error) {
	for i := 0; i < 32; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		candidate := strings.ReplaceAll(id.String(), "-", "")[:8]
		if password.Validate(candidate) == nil {
			return candidate, nil
		}
	}
	return "", errors.New("could not derive temporary password")
}
