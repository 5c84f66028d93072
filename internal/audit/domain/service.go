package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

const (
	ActionInvoiceCreated      = "invoice.created"
	ActionInvoiceGuestUpdated = "invoice.guest_updated"
	ActionInvoiceFinalized    = "invoice.finalized"
	ActionInvoiceVoided       = "invoice.voided"
	ActionInvoiceDeleted      = "invoice.deleted"
	ActionHotelProvisioned    = "hotel.provisioned"
	ActionHotelStatusChanged  = "hotel.status_changed"
	ActionHotelProfileUpdated = "hotel.profile_updated"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	HotelID    *snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	AuditLog(ctx context.Context, hotelID *snowflake.ID, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
