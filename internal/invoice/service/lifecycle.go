package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/smallbiznis/innledger/pkg/gstin"
	"github.com/smallbiznis/innledger/pkg/phone"
	"go.uber.org/zap"
)

var validate = validator.New()

var maxPercent = decimal.NewFromInt(100)

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	hotelID := req.HotelID
	if scoped, ok := hotelcontext.HotelIDFromContext(ctx); ok {
		if hotelID != 0 && hotelID != scoped {
			return invoicedomain.Invoice{}, invoicedomain.ErrSnapshotSourceNotFound
		}
		hotelID = scoped
	}
	if hotelID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidHotel
	}

	snapshot, err := s.hotels.Snapshot(ctx, hotelID)
	if err != nil {
		switch {
		case errors.Is(err, hoteldomain.ErrNotFound):
			return invoicedomain.Invoice{}, invoicedomain.ErrSnapshotSourceNotFound
		case errors.Is(err, hoteldomain.ErrInvalidID):
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidHotel
		default:
			return invoicedomain.Invoice{}, invoicedomain.StorageError("read hotel snapshot", err)
		}
	}
	if !snapshot.IsActive {
		return invoicedomain.Invoice{}, invoicedomain.ErrHotelInactive
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number, err = s.numbers.Next(ctx, hotelID)
		if err != nil {
			return invoicedomain.Invoice{}, storage("generate invoice number", err)
		}
	}
	if len(number) > 64 {
		return invoicedomain.Invoice{}, invoicedomain.FieldError(invoicedomain.ErrInvalidInvoiceNumber, "invoice_number")
	}

	gstType := invoicedomain.GSTType(snapshot.GSTType)
	if gstType != invoicedomain.GSTTypeIGST {
		gstType = invoicedomain.GSTTypeCGSTSGST
	}

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		HotelID:           hotelID,
		InvoiceNumber:     number,
		Status:            invoicedomain.InvoiceStatusDraft,
		Version:           1,
		HotelCode:         snapshot.HotelCode,
		HotelName:         snapshot.Name,
		HotelAddress:      snapshot.Address,
		HotelEmail:        snapshot.Email,
		HotelPhone:        snapshot.Phone,
		HotelLogoURL:      snapshot.LogoURL,
		HotelSignatureURL: snapshot.SignatureURL,
		HasGST:            snapshot.HasGST,
		GSTNumber:         snapshot.GSTNumber,
		GSTPercentage:     snapshot.GSTPercentage,
		GSTType:           gstType,
		Subtotal:          decimal.Zero,
		DiscountValue:     decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TaxableAmount:     decimal.Zero,
		GSTAmount:         decimal.Zero,
		GrandTotal:        decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.InsertInvoice(ctx, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return invoicedomain.Invoice{}, invoicedomain.ErrDuplicateInvoiceNumber
		}
		return invoicedomain.Invoice{}, invoicedomain.StorageError("insert invoice", err)
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("hotel_id", hotelID.String()),
	)
	s.emitAudit(ctx, auditdomain.ActionInvoiceCreated, &invoice, nil)
	s.recordOutcome(ctx, "create", nil)
	return invoice, nil
}

func (s *Service) UpdateGuestDetails(ctx context.Context, invoiceID string, guest invoicedomain.GuestDetails) (invoicedomain.Invoice, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	fields, err := s.guestFields(guest)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var updated *invoicedomain.Invoice
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		inv, err := s.inDraft(ctx, repo, id, func(*invoicedomain.Invoice) (map[string]any, error) {
			return fields, nil
		})
		updated = inv
		return err
	})
	if err != nil {
		return invoicedomain.Invoice{}, storage("update guest details", err)
	}

	s.emitAudit(ctx, auditdomain.ActionInvoiceGuestUpdated, updated, map[string]any{
		"guest_name":  updated.GuestName,
		"guest_phone": updated.GuestPhone,
	})
	return *updated, nil
}

// guestFields validates guest input. Name and phone may stay blank on a
// draft; finalization requires them.
func (s *Service) guestFields(guest invoicedomain.GuestDetails) (map[string]any, error) {
	fields := map[string]any{
		"guest_name": strings.TrimSpace(guest.Name),
	}

	rawPhone := strings.TrimSpace(guest.Phone)
	if rawPhone == "" {
		fields["guest_phone"] = ""
	} else {
		normalized, err := phone.Normalize(rawPhone, s.invoicing.Get().PhoneRegion)
		if err != nil {
			return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidGuestPhone, "guest_phone")
		}
		fields["guest_phone"] = normalized
	}

	if email := optional(guest.Email); email != nil {
		lowered := strings.ToLower(*email)
		if validate.Var(lowered, "email") != nil {
			return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidGuestEmail, "guest_email")
		}
		fields["guest_email"] = &lowered
	} else {
		fields["guest_email"] = nil
	}

	fields["additional_guest_name"] = optional(guest.AdditionalGuestName)

	if raw := optional(guest.GSTIN); raw != nil {
		normalized, err := gstin.Normalize(*raw)
		if err != nil {
			return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidGuestGSTIN, "guest_gstin")
		}
		fields["guest_gstin"] = &normalized
	} else {
		fields["guest_gstin"] = nil
	}
	return fields, nil
}

func (s *Service) Finalize(ctx context.Context, invoiceID string, req invoicedomain.FinalizeRequest) (invoicedomain.Invoice, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if err := validateDiscount(req.Discount); err != nil {
		return invoicedomain.Invoice{}, err
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		s.recordOutcome(ctx, "finalize", err)
		return invoicedomain.Invoice{}, err
	}
	defer release()

	var finalized *invoicedomain.Invoice
	var settlement totals.Settlement
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		inv, err := s.lockScoped(ctx, repo, id)
		if err != nil {
			return err
		}
		if inv.Status != invoicedomain.InvoiceStatusDraft {
			return invoicedomain.ErrInvoiceLocked
		}
		if strings.TrimSpace(inv.GuestName) == "" || strings.TrimSpace(inv.GuestPhone) == "" {
			return invoicedomain.ErrMissingGuestDetails
		}

		stays, err := repo.ListStayDetails(ctx, inv.ID)
		if err != nil {
			return invoicedomain.StorageError("list room stays", err)
		}
		if len(stays) == 0 {
			return invoicedomain.ErrNoRoomsAttached
		}

		paymentMode, err := s.paymentMode(req.PaymentModes)
		if err != nil {
			return err
		}

		agg := invoicedomain.InvoiceAggregate{Invoice: *inv, Stays: stays}
		settlement = totals.Calculate(agg.TotalsInput(req.Discount))
		if settlement.DiscountExceedsSubtotal() {
			return invoicedomain.FieldError(invoicedomain.ErrDiscountExceedsSubtotal, "discount_value")
		}

		now := s.clock.Now()
		var discountType *invoicedomain.DiscountType
		if req.Discount.Type != "" {
			t := req.Discount.Type
			discountType = &t
		}
		ok, err := repo.UpdateInvoice(ctx, inv.ID, inv.Version, invoicedomain.InvoiceStatusDraft, map[string]any{
			"status":          invoicedomain.InvoiceStatusPaid,
			"subtotal":        settlement.Subtotal,
			"discount_type":   discountType,
			"discount_value":  totals.Round(req.Discount.Value),
			"discount_amount": settlement.DiscountAmount,
			"taxable_amount":  settlement.TaxableAmount,
			"gst_amount":      settlement.GSTAmount,
			"grand_total":     settlement.GrandTotal,
			"payment_mode":    paymentMode,
			"finalized_at":    &now,
			"updated_at":      now,
		})
		if err != nil {
			return invoicedomain.StorageError("finalize invoice", err)
		}
		if !ok {
			return s.conflict(ctx, repo, inv.ID, invoicedomain.InvoiceStatusDraft)
		}

		finalized, err = repo.FindInvoice(ctx, inv.ID)
		if err != nil {
			return invoicedomain.StorageError("reload invoice", err)
		}
		return nil
	})
	s.recordOutcome(ctx, "finalize", err)
	if err != nil {
		return invoicedomain.Invoice{}, storage("finalize invoice", err)
	}
	if finalized == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	s.log.Info("invoice finalized",
		zap.String("invoice_id", finalized.ID.String()),
		zap.String("grand_total", finalized.GrandTotal.StringFixed(totals.Places)),
	)
	s.emitAudit(ctx, auditdomain.ActionInvoiceFinalized, finalized, map[string]any{
		"previous_status": string(invoicedomain.InvoiceStatusDraft),
		"grand_total":     settlement.GrandTotal.StringFixed(totals.Places),
		"payment_mode":    finalized.PaymentMode,
	})
	return *finalized, nil
}

// Void is allowed from Draft and Paid. Financial fields are left as they
// were, so a voided paid invoice still shows what was billed.
func (s *Service) Void(ctx context.Context, invoiceID string) (invoicedomain.Invoice, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		s.recordOutcome(ctx, "void", err)
		return invoicedomain.Invoice{}, err
	}
	defer release()

	var voided *invoicedomain.Invoice
	var previous invoicedomain.InvoiceStatus
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		inv, err := s.lockScoped(ctx, repo, id)
		if err != nil {
			return err
		}
		if inv.Status == invoicedomain.InvoiceStatusVoid {
			return invoicedomain.ErrInvoiceLocked
		}
		previous = inv.Status

		now := s.clock.Now()
		ok, err := repo.UpdateInvoice(ctx, inv.ID, inv.Version, inv.Status, map[string]any{
			"status":     invoicedomain.InvoiceStatusVoid,
			"voided_at":  &now,
			"updated_at": now,
		})
		if err != nil {
			return invoicedomain.StorageError("void invoice", err)
		}
		if !ok {
			return s.conflict(ctx, repo, inv.ID, inv.Status)
		}

		voided, err = repo.FindInvoice(ctx, inv.ID)
		if err != nil {
			return invoicedomain.StorageError("reload invoice", err)
		}
		return nil
	})
	s.recordOutcome(ctx, "void", err)
	if err != nil {
		return invoicedomain.Invoice{}, storage("void invoice", err)
	}
	if voided == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	s.emitAudit(ctx, auditdomain.ActionInvoiceVoided, voided, map[string]any{
		"previous_status": string(previous),
	})
	return *voided, nil
}

func (s *Service) Delete(ctx context.Context, invoiceID string) error {
	id, err := parseID(invoiceID)
	if err != nil {
		return err
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		s.recordOutcome(ctx, "delete", err)
		return err
	}
	defer release()

	var deleted *invoicedomain.Invoice
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		inv, err := s.lockScoped(ctx, repo, id)
		if err != nil {
			return err
		}
		if inv.Status != invoicedomain.InvoiceStatusDraft {
			return invoicedomain.ErrInvoiceLocked
		}

		ok, err := repo.DeleteInvoice(ctx, inv.ID, inv.Version)
		if err != nil {
			return invoicedomain.StorageError("delete invoice", err)
		}
		if !ok {
			return s.conflict(ctx, repo, inv.ID, invoicedomain.InvoiceStatusDraft)
		}
		deleted = inv
		return nil
	})
	s.recordOutcome(ctx, "delete", err)
	if err != nil {
		return storage("delete invoice", err)
	}

	s.emitAudit(ctx, auditdomain.ActionInvoiceDeleted, deleted, nil)
	return nil
}

// paymentMode validates the selected modes against configuration and joins
// them in configured order. Duplicates collapse.
func (s *Service) paymentMode(selected []string) (string, error) {
	cfg := s.invoicing.Get()

	chosen := make(map[string]struct{}, len(selected))
	for _, raw := range selected {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		canonical, ok := cfg.AllowsPaymentMode(raw)
		if !ok {
			return "", invoicedomain.FieldError(invoicedomain.ErrInvalidPaymentMode, "payment_modes")
		}
		chosen[canonical] = struct{}{}
	}
	if len(chosen) == 0 {
		return "", invoicedomain.FieldError(invoicedomain.ErrNoPaymentModeSelected, "payment_modes")
	}

	ordered := make([]string, 0, len(chosen))
	for _, mode := range cfg.PaymentModes {
		if _, ok := chosen[mode]; ok {
			ordered = append(ordered, mode)
		}
	}
	return strings.Join(ordered, cfg.PaymentModeJoiner), nil
}

func validateDiscount(discount totals.Discount) error {
	if discount.Value.IsNegative() {
		return invoicedomain.FieldError(invoicedomain.ErrInvalidDiscount, "discount_value")
	}
	switch discount.Type {
	case "":
		if !discount.Value.IsZero() {
			return invoicedomain.FieldError(invoicedomain.ErrInvalidDiscount, "discount_type")
		}
	case totals.DiscountFlat:
	case totals.DiscountPercent:
		if discount.Value.GreaterThan(maxPercent) {
			return invoicedomain.FieldError(invoicedomain.ErrInvalidDiscount, "discount_value")
		}
	default:
		return invoicedomain.FieldError(invoicedomain.ErrInvalidDiscount, "discount_type")
	}
	return nil
}

func optional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
