package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows a search within one hotel.
type InvoiceFilter struct {
	HotelID       snowflake.ID
	InvoiceNumber string
	GuestName     string
	Status        *InvoiceStatus
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// Repository is the storage gateway for invoices and their ledgers.
// Find and Lock methods return nil, nil when the row does not exist.
type Repository interface {
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	InsertInvoice(ctx context.Context, invoice *Invoice) error
	FindInvoice(ctx context.Context, id snowflake.ID) (*Invoice, error)
	LockInvoice(ctx context.Context, id snowflake.ID) (*Invoice, error)
	// UpdateInvoice applies fields only while the row still carries the
	// expected version and status, and bumps the version. It reports false
	// when another writer got there first.
	UpdateInvoice(ctx context.Context, id snowflake.ID, version int64, status InvoiceStatus, fields map[string]any) (bool, error)
	DeleteInvoice(ctx context.Context, id snowflake.ID, version int64) (bool, error)
	SearchInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)

	InsertRoomStay(ctx context.Context, stay *RoomStay, rates []RoomNightRate) error
	FindRoomStay(ctx context.Context, id snowflake.ID) (*RoomStay, error)
	ListStayDetails(ctx context.Context, invoiceID snowflake.ID) ([]StayDetail, error)
	DeleteRoomStay(ctx context.Context, stayID snowflake.ID) error
	NextStaySeq(ctx context.Context, invoiceID snowflake.ID) (int, error)

	InsertCharges(ctx context.Context, charges []FoodServiceCharge) error
	FindCharge(ctx context.Context, id snowflake.ID) (*FoodServiceCharge, error)
	DeleteCharge(ctx context.Context, id snowflake.ID) error
	NextChargeSeq(ctx context.Context, stayID snowflake.ID) (int, error)
}
