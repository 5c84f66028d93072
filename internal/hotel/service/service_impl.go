package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/auth/password"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	"github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
	"github.com/smallbiznis/innledger/pkg/gstin"
	"github.com/smallbiznis/innledger/pkg/phone"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var maxGSTPercentage = decimal.NewFromInt(28)

var validate = validator.New()

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      domain.Repository
	Auth      authdomain.Service
	Invoicing *config.InvoicingConfigHolder
	Clock     clock.Clock
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	auth      authdomain.Service
	invoicing *config.InvoicingConfigHolder
	clock     clock.Clock
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("hotel.service"),
		repo:      p.Repo,
		auth:      p.Auth,
		invoicing: p.Invoicing,
		clock:     p.Clock,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) GetByID(ctx context.Context, hotelID snowflake.ID) (domain.Hotel, error) {
	if hotelID == 0 {
		return domain.Hotel{}, domain.ErrInvalidID
	}
	// A hotel session can only see its own profile.
	if scoped, ok := hotelcontext.HotelIDFromContext(ctx); ok && scoped != hotelID {
		return domain.Hotel{}, domain.ErrNotFound
	}

	hotel, err := s.repo.FindByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if hotel == nil {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return *hotel, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID snowflake.ID) (domain.Hotel, error) {
	if userID == 0 {
		return domain.Hotel{}, domain.ErrInvalidID
	}
	hotel, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if hotel == nil {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return *hotel, nil
}

func (s *Service) CompleteProfile(ctx context.Context, hotelID snowflake.ID, req domain.CompleteProfileRequest) (domain.Hotel, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if hotel.ProfileCompleted {
		return domain.Hotel{}, domain.ErrProfileCompleted
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Hotel{}, domain.ErrInvalidName
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Hotel{}, domain.ErrInvalidAddress
	}
	gst, err := s.gstFields(req.GST)
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := password.Validate(req.NewPassword); err != nil {
		return domain.Hotel{}, err
	}

	fields := map[string]any{
		"name":              name,
		"address":           address,
		"profile_completed": true,
		"updated_at":        s.clock.Now(),
	}
	for k, v := range gst {
		fields[k] = v
	}
	if err := s.repo.UpdateFields(ctx, hotel.ID, fields); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.auth.SetPassword(ctx, hotel.UserID, req.NewPassword); err != nil {
		return domain.Hotel{}, err
	}

	s.log.Info("hotel profile completed", zap.String("hotel_id", hotel.ID.String()))
	return s.reload(ctx, hotel.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, hotelID snowflake.ID, req domain.UpdateProfileRequest) (domain.Hotel, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Hotel{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return domain.Hotel{}, domain.ErrInvalidAddress
		}
		fields["address"] = address
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if validate.Var(email, "required,email") != nil {
			return domain.Hotel{}, domain.ErrInvalidEmail
		}
		fields["email"] = email
	}
	if req.Phone != nil {
		normalized, err := phone.Normalize(*req.Phone, s.invoicing.Get().PhoneRegion)
		if err != nil {
			return domain.Hotel{}, domain.ErrInvalidPhone
		}
		fields["phone"] = normalized
	}
	if len(fields) == 0 {
		return hotel, nil
	}

	fields["updated_at"] = s.clock.Now()
	if err := s.repo.UpdateFields(ctx, hotel.ID, fields); err != nil {
		return domain.Hotel{}, err
	}
	s.audit(ctx, hotel.ID, auditdomain.ActionHotelProfileUpdated, map[string]any{"fields": fieldNames(fields)})
	return s.reload(ctx, hotel.ID)
}

func (s *Service) UpdateGST(ctx context.Context, hotelID snowflake.ID, req domain.GSTSettings) (domain.Hotel, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	fields, err := s.gstFields(req)
	if err != nil {
		return domain.Hotel{}, err
	}
	fields["updated_at"] = s.clock.Now()
	if err := s.repo.UpdateFields(ctx, hotel.ID, fields); err != nil {
		return domain.Hotel{}, err
	}
	return s.reload(ctx, hotel.ID)
}

func (s *Service) SetLogo(ctx context.Context, hotelID snowflake.ID, url string) (domain.Hotel, error) {
	return s.setAsset(ctx, hotelID, "logo_url", url)
}

func (s *Service) SetSignature(ctx context.Context, hotelID snowflake.ID, url string) (domain.Hotel, error) {
	return s.setAsset(ctx, hotelID, "signature_url", url)
}

func (s *Service) setAsset(ctx context.Context, hotelID snowflake.ID, column, url string) (domain.Hotel, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.Hotel{}, domain.ErrInvalidAssetURL
	}
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := s.repo.UpdateFields(ctx, hotel.ID, map[string]any{
		column:       url,
		"updated_at": s.clock.Now(),
	}); err != nil {
		return domain.Hotel{}, err
	}
	return s.reload(ctx, hotel.ID)
}

func (s *Service) List(ctx context.Context, req domain.ListHotelRequest) (domain.ListHotelResponse, error) {
	page := req.Pagination.Normalize()
	hotels, total, err := s.repo.List(ctx, domain.ListFilter{
		HotelCode: strings.TrimSpace(req.HotelCode),
		Name:      strings.TrimSpace(req.Name),
		IsActive:  req.IsActive,
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	})
	if err != nil {
		return domain.ListHotelResponse{}, err
	}
	return domain.ListHotelResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Hotels:   hotels,
	}, nil
}

// SetActive toggles the hotel and its login account together.
func (s *Service) SetActive(ctx context.Context, hotelID snowflake.ID, active bool) (domain.Hotel, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if hotel.IsActive == active {
		return hotel, nil
	}

	if err := s.repo.UpdateFields(ctx, hotel.ID, map[string]any{
		"is_active":  active,
		"updated_at": s.clock.Now(),
	}); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.auth.SetActive(ctx, hotel.UserID, active); err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
		return domain.Hotel{}, err
	}

	s.audit(ctx, hotel.ID, auditdomain.ActionHotelStatusChanged, map[string]any{"is_active": active})
	s.log.Info("hotel status changed",
		zap.String("hotel_id", hotel.ID.String()),
		zap.Bool("is_active", active),
	)
	return s.reload(ctx, hotel.ID)
}

func (s *Service) Snapshot(ctx context.Context, hotelID snowflake.ID) (domain.Snapshot, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return hotel.Snapshot(), nil
}

func (s *Service) gstFields(req domain.GSTSettings) (map[string]any, error) {
	gstType := strings.ToLower(strings.TrimSpace(req.GSTType))
	if gstType == "" {
		gstType = s.invoicing.Get().DefaultGSTType
	}
	if gstType != domain.GSTTypeCGSTSGST && gstType != domain.GSTTypeIGST {
		return nil, domain.ErrInvalidGSTType
	}

	if !req.HasGST {
		return map[string]any{
			"has_gst":        false,
			"gst_number":     "",
			"gst_percentage": decimal.Zero,
			"gst_type":       gstType,
		}, nil
	}

	number, err := gstin.Normalize(req.GSTNumber)
	if err != nil {
		return nil, domain.ErrInvalidGSTNumber
	}
	if req.GSTPercentage == nil || !req.GSTPercentage.IsPositive() || req.GSTPercentage.GreaterThan(maxGSTPercentage) {
		return nil, domain.ErrInvalidGSTPercentage
	}

	return map[string]any{
		"has_gst":        true,
		"gst_number":     number,
		"gst_percentage": req.GSTPercentage.Round(2),
		"gst_type":       gstType,
	}, nil
}

func (s *Service) reload(ctx context.Context, hotelID snowflake.ID) (domain.Hotel, error) {
	hotel, err := s.repo.FindByID(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if hotel == nil {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return *hotel, nil
}

func (s *Service) audit(ctx context.Context, hotelID snowflake.ID, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	target := hotelID.String()
	if err := s.auditSvc.AuditLog(ctx, &hotelID, action, "hotel", &target, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		if k != "updated_at" {
			names = append(names, k)
		}
	}
	return names
}
