package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	HotelID snowflake.ID
	// InvoiceNumber is generated when empty.
	InvoiceNumber string
}

type GuestDetails struct {
	Name                string  `json:"guest_name"`
	Phone               string  `json:"guest_phone"`
	Email               *string `json:"guest_email"`
	AdditionalGuestName *string `json:"additional_guest_name"`
	GSTIN               *string `json:"guest_gstin"`
}

// AttachRoomRequest describes a stay. Either RoomID references inventory or
// RoomNumber/RoomName are given directly. When SameRateAllNights is false,
// NightRates carries one rate per night starting at CheckinDate.
type AttachRoomRequest struct {
	RoomID            string
	RoomNumber        string
	RoomName          string
	CheckinDate       time.Time
	CheckoutDate      time.Time
	SameRateAllNights bool
	PerNightRate      decimal.Decimal
	NightRates        []decimal.Decimal
}

type ChargeSpec struct {
	Type     string
	Name     string
	Quantity *int
	Rate     decimal.Decimal
}

type FinalizeRequest struct {
	PaymentModes []string
	Discount     totals.Discount
}

type SearchInvoiceRequest struct {
	pagination.Pagination
	InvoiceNumber string
	GuestName     string
	Status        *InvoiceStatus
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

type SearchInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// Preview is a live settlement computed from current ledger state.
type Preview struct {
	Invoice    Invoice           `json:"invoice"`
	Settlement totals.Settlement `json:"settlement"`
}

// Service manages the invoice lifecycle and its room and charge ledgers.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Get(ctx context.Context, invoiceID string) (InvoiceAggregate, error)
	Search(ctx context.Context, req SearchInvoiceRequest) (SearchInvoiceResponse, error)
	UpdateGuestDetails(ctx context.Context, invoiceID string, guest GuestDetails) (Invoice, error)

	AttachRoom(ctx context.Context, invoiceID string, req AttachRoomRequest) (StayDetail, error)
	RemoveRoom(ctx context.Context, roomStayID string) error
	AddCharges(ctx context.Context, roomStayID string, charges []ChargeSpec) ([]FoodServiceCharge, error)
	RemoveCharge(ctx context.Context, chargeID string) error

	Preview(ctx context.Context, invoiceID string, discount totals.Discount) (Preview, error)
	Finalize(ctx context.Context, invoiceID string, req FinalizeRequest) (Invoice, error)
	Void(ctx context.Context, invoiceID string) (Invoice, error)
	Delete(ctx context.Context, invoiceID string) error

	RenderPDF(ctx context.Context, invoiceID string) (Document, error)
}

// Document is a rendered invoice file.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

// NumberGenerator supplies unique invoice numbers.
type NumberGenerator interface {
	Next(ctx context.Context, hotelID snowflake.ID) (string, error)
}

// TransitionGuard serialises lifecycle transitions of one invoice across
// processes. The database version check stays authoritative.
type TransitionGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Renderer produces a printable document from an invoice.
type Renderer interface {
	Render(agg InvoiceAggregate, settlement totals.Settlement) ([]byte, error)
}
