package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	"github.com/smallbiznis/innledger/internal/audit/masking"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	obscontext "github.com/smallbiznis/innledger/internal/observability/context"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// sensitiveKeys are metadata keys redacted before persisting.
var sensitiveKeys = []string{"guest_phone", "guest_email", "email", "phone"}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Clock clock.Clock `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: clk,
	}
}

func (s *Service) AuditLog(ctx context.Context, hotelID *snowflake.ID, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := masking.MaskFields(metadata, sensitiveKeys...)
	if payload == nil {
		payload = map[string]any{}
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	actorType, actorID := resolveActor(ctx)
	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		HotelID:    s.resolveHotelID(ctx, hotelID),
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	// Hotel users only ever see their own trail.
	hotelID := req.HotelID
	if ctxHotelID, ok := hotelcontext.HotelIDFromContext(ctx); ok {
		hotelID = &ctxHotelID
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		HotelID:    hotelID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      page.Limit(),
		Offset:     page.Offset(),
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	return auditdomain.ListAuditLogResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		AuditLogs: items,
	}, nil
}

func (s *Service) resolveHotelID(ctx context.Context, hotelID *snowflake.ID) *snowflake.ID {
	if hotelID != nil && *hotelID != 0 {
		return hotelID
	}
	resolved, ok := hotelcontext.HotelIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &resolved
}

func resolveActor(ctx context.Context) (string, *string) {
	userID, ok := hotelcontext.UserIDFromContext(ctx)
	if !ok {
		return string(auditdomain.ActorTypeSystem), nil
	}
	actorID := userID.String()
	switch hotelcontext.RoleFromContext(ctx) {
	case hotelcontext.RoleAdmin:
		return string(auditdomain.ActorTypeAdmin), &actorID
	case hotelcontext.RoleHotel:
		return string(auditdomain.ActorTypeHotel), &actorID
	default:
		return string(auditdomain.ActorTypeSystem), &actorID
	}
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
