package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

func (s *Service) Get(ctx context.Context, invoiceID string) (invoicedomain.InvoiceAggregate, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.InvoiceAggregate{}, err
	}
	agg, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.InvoiceAggregate{}, storage("get invoice", err)
	}
	return agg, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (invoicedomain.InvoiceAggregate, error) {
	inv, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		return invoicedomain.InvoiceAggregate{}, invoicedomain.StorageError("find invoice", err)
	}
	if inv == nil || !visible(ctx, inv) {
		return invoicedomain.InvoiceAggregate{}, invoicedomain.ErrInvoiceNotFound
	}
	stays, err := s.repo.ListStayDetails(ctx, inv.ID)
	if err != nil {
		return invoicedomain.InvoiceAggregate{}, invoicedomain.StorageError("list room stays", err)
	}
	return invoicedomain.InvoiceAggregate{Invoice: *inv, Stays: stays}, nil
}

func (s *Service) Search(ctx context.Context, req invoicedomain.SearchInvoiceRequest) (invoicedomain.SearchInvoiceResponse, error) {
	page := req.Pagination.Normalize()
	filter := invoicedomain.InvoiceFilter{
		InvoiceNumber: req.InvoiceNumber,
		GuestName:     req.GuestName,
		Status:        req.Status,
		MinTotal:      req.MinTotal,
		MaxTotal:      req.MaxTotal,
		CreatedFrom:   req.CreatedFrom,
		CreatedTo:     req.CreatedTo,
		Limit:         page.Limit(),
		Offset:        page.Offset(),
	}
	if hotelID, ok := hotelcontext.HotelIDFromContext(ctx); ok {
		filter.HotelID = hotelID
	}

	invoices, total, err := s.repo.SearchInvoices(ctx, filter)
	if err != nil {
		return invoicedomain.SearchInvoiceResponse{}, invoicedomain.StorageError("search invoices", err)
	}
	if invoices == nil {
		invoices = []invoicedomain.Invoice{}
	}
	return invoicedomain.SearchInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Invoices: invoices,
	}, nil
}

// Preview recomputes totals for a draft with the proposed discount. Paid and
// voided invoices report the amounts frozen at finalization.
func (s *Service) Preview(ctx context.Context, invoiceID string, discount totals.Discount) (invoicedomain.Preview, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.Preview{}, err
	}
	agg, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Preview{}, storage("preview invoice", err)
	}

	if !agg.Invoice.Status.Editable() {
		return invoicedomain.Preview{Invoice: agg.Invoice, Settlement: agg.FrozenSettlement()}, nil
	}

	if err := validateDiscount(discount); err != nil {
		return invoicedomain.Preview{}, err
	}
	settlement := totals.Calculate(agg.TotalsInput(discount))
	if settlement.DiscountExceedsSubtotal() {
		return invoicedomain.Preview{}, invoicedomain.FieldError(invoicedomain.ErrDiscountExceedsSubtotal, "discount_value")
	}
	return invoicedomain.Preview{Invoice: agg.Invoice, Settlement: settlement}, nil
}

// RenderPDF renders the printable invoice. Drafts are rendered with live
// totals and no discount.
func (s *Service) RenderPDF(ctx context.Context, invoiceID string) (invoicedomain.Document, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.Document{}, err
	}
	agg, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Document{}, storage("render invoice", err)
	}

	var settlement totals.Settlement
	if agg.Invoice.Status.Editable() {
		settlement = totals.Calculate(agg.TotalsInput(totals.Discount{}))
	} else {
		settlement = agg.FrozenSettlement()
	}

	content, err := s.renderer.Render(agg, settlement)
	if err != nil {
		return invoicedomain.Document{}, invoicedomain.StorageError("render pdf", err)
	}
	return invoicedomain.Document{
		FileName:    "invoice-" + slug.Make(agg.Invoice.InvoiceNumber) + ".pdf",
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}
