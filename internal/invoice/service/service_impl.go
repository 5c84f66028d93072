package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/observability/metrics"
	roomdomain "github.com/smallbiznis/innledger/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      invoicedomain.Repository
	Hotels    hoteldomain.Service
	Rooms     roomdomain.Service
	Numbers   invoicedomain.NumberGenerator
	Renderer  invoicedomain.Renderer
	Invoicing *config.InvoicingConfigHolder
	Clock     clock.Clock
	Guard     invoicedomain.TransitionGuard `optional:"true"`
	Metrics   *metrics.Metrics              `optional:"true"`
	AuditSvc  auditdomain.Service           `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	repo      invoicedomain.Repository
	hotels    hoteldomain.Service
	rooms     roomdomain.Service
	numbers   invoicedomain.NumberGenerator
	renderer  invoicedomain.Renderer
	invoicing *config.InvoicingConfigHolder
	clock     clock.Clock
	guard     invoicedomain.TransitionGuard
	metrics   *metrics.Metrics
	auditSvc  auditdomain.Service
}

func NewService(p ServiceParam) invoicedomain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		hotels:    p.Hotels,
		rooms:     p.Rooms,
		numbers:   p.Numbers,
		renderer:  p.Renderer,
		invoicing: p.Invoicing,
		clock:     clk,
		guard:     p.Guard,
		metrics:   p.Metrics,
		auditSvc:  p.AuditSvc,
	}
}

// inDraft runs fn against a locked Draft invoice inside the caller's
// transaction, then bumps the invoice version together with the returned
// fields. A lost compare-and-swap is reported as a state conflict.
func (s *Service) inDraft(ctx context.Context, repo invoicedomain.Repository, invoiceID snowflake.ID, fn func(inv *invoicedomain.Invoice) (map[string]any, error)) (*invoicedomain.Invoice, error) {
	inv, err := s.lockScoped(ctx, repo, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Editable() {
		return nil, invoicedomain.ErrInvoiceLocked
	}

	fields, err := fn(inv)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["updated_at"] = s.clock.Now()

	ok, err := repo.UpdateInvoice(ctx, inv.ID, inv.Version, invoicedomain.InvoiceStatusDraft, fields)
	if err != nil {
		return nil, invoicedomain.StorageError("update invoice", err)
	}
	if !ok {
		return nil, s.conflict(ctx, repo, inv.ID, invoicedomain.InvoiceStatusDraft)
	}

	updated, err := repo.FindInvoice(ctx, inv.ID)
	if err != nil {
		return nil, invoicedomain.StorageError("reload invoice", err)
	}
	if updated == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return updated, nil
}

// lockScoped loads the invoice for update and hides invoices of other hotels.
func (s *Service) lockScoped(ctx context.Context, repo invoicedomain.Repository, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	inv, err := repo.LockInvoice(ctx, invoiceID)
	if err != nil {
		return nil, invoicedomain.StorageError("lock invoice", err)
	}
	if inv == nil || !visible(ctx, inv) {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return inv, nil
}

// conflict explains why a compare-and-swap matched no row.
func (s *Service) conflict(ctx context.Context, repo invoicedomain.Repository, invoiceID snowflake.ID, expected invoicedomain.InvoiceStatus) error {
	current, err := repo.FindInvoice(ctx, invoiceID)
	if err != nil {
		return invoicedomain.StorageError("reload invoice", err)
	}
	if current == nil {
		return invoicedomain.ErrInvoiceNotFound
	}
	if current.Status != expected {
		return invoicedomain.ErrInvoiceLocked
	}
	return invoicedomain.ErrConcurrentModification
}

// acquire takes the cross-replica transition lock when one is configured.
func (s *Service) acquire(ctx context.Context, invoiceID snowflake.ID) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	release, err := s.guard.Acquire(ctx, "invoice:"+invoiceID.String()+":transition")
	if err != nil {
		return nil, err
	}
	if release == nil {
		release = func() {}
	}
	return release, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, invoice *invoicedomain.Invoice, extra map[string]any) {
	if s.auditSvc == nil || invoice == nil {
		return
	}
	metadata := map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"status":         string(invoice.Status),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	targetID := invoice.ID.String()
	hotelID := invoice.HotelID
	if err := s.auditSvc.AuditLog(ctx, &hotelID, action, "invoice", &targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) recordOutcome(ctx context.Context, transition string, err error) {
	if err == nil {
		s.metrics.RecordInvoiceTransition(ctx, transition)
		return
	}
	if invoicedomain.KindOf(err) == invoicedomain.KindStateConflict {
		s.metrics.RecordInvoiceConflict(ctx, transition)
	}
}

// visible reports whether the session may see inv. Sessions without a hotel
// (admin, internal callers) see every invoice.
func visible(ctx context.Context, inv *invoicedomain.Invoice) bool {
	hotelID, ok := hotelcontext.HotelIDFromContext(ctx)
	return !ok || hotelID == inv.HotelID
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, invoicedomain.ErrInvalidID
	}
	return id, nil
}

// storage wraps unclassified errors as storage failures and passes domain
// errors through untouched.
func storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *invoicedomain.Error
	if errors.As(err, &typed) {
		return err
	}
	if invoicedomain.KindOf(err) != invoicedomain.KindStorage {
		return err
	}
	return invoicedomain.StorageError(op, err)
}
