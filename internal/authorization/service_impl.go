package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectHotels    = "hotels"
	ObjectAuditLogs = "audit_logs"
	ObjectProfile   = "profile"
	ObjectRooms     = "rooms"
	ObjectInvoices  = "invoices"
)

const (
	ActionList     = "list"
	ActionCreate   = "create"
	ActionToggle   = "toggle"
	ActionView     = "view"
	ActionUpdate   = "update"
	ActionManage   = "manage"
	ActionFinalize = "finalize"
	ActionVoid     = "void"
	ActionDelete   = "delete"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, role string, object string, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != authdomain.RoleAdmin && role != authdomain.RoleHotel {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(roleSubject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, role, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, role string, object string, action string) {
	s.log.Info("authorization denied",
		zap.String("role", role),
		zap.String("object", object),
		zap.String("action", action),
	)
	if s.auditSvc == nil {
		return
	}
	var hotelID *snowflake.ID
	if id, ok := hotelcontext.HotelIDFromContext(ctx); ok {
		hotelID = &id
	}
	targetID := object + "." + action
	if err := s.auditSvc.AuditLog(ctx, hotelID, "authorization.denied", "capability", &targetID, map[string]any{
		"object": object,
		"action": action,
		"role":   role,
	}); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
}

func roleSubject(role string) string {
	return fmt.Sprintf("role:%s", role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	admin := roleSubject(authdomain.RoleAdmin)
	hotel := roleSubject(authdomain.RoleHotel)

	policies := [][]string{
		{admin, ObjectHotels, ActionList},
		{admin, ObjectHotels, ActionCreate},
		{admin, ObjectHotels, ActionToggle},
		{admin, ObjectHotels, ActionView},
		{admin, ObjectAuditLogs, ActionView},

		{hotel, ObjectProfile, ActionView},
		{hotel, ObjectProfile, ActionUpdate},
		{hotel, ObjectRooms, ActionView},
		{hotel, ObjectRooms, ActionManage},
		{hotel, ObjectInvoices, ActionView},
		{hotel, ObjectInvoices, ActionCreate},
		{hotel, ObjectInvoices, ActionUpdate},
		{hotel, ObjectInvoices, ActionFinalize},
		{hotel, ObjectInvoices, ActionVoid},
		{hotel, ObjectInvoices, ActionDelete},
	}

	for _, policy := range policies {
		params := make([]interface{}, 0, len(policy))
		for _, value := range policy {
			params = append(params, value)
		}
		has, err := enforcer.HasPolicy(params...)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(params...); err != nil {
			return err
		}
	}

	return nil
}
