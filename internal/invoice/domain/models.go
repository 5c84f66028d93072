// Package domain contains persistence models for guest invoicing.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "Draft"
	InvoiceStatusPaid  InvoiceStatus = "Paid"
	InvoiceStatusVoid  InvoiceStatus = "Void"
)

// ParseInvoiceStatus accepts a status name in any letter case.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	for _, status := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPaid, InvoiceStatusVoid} {
		if strings.EqualFold(strings.TrimSpace(raw), string(status)) {
			return status, true
		}
	}
	return "", false
}

// Editable reports whether guest, room and charge data may still change.
func (s InvoiceStatus) Editable() bool {
	return s == InvoiceStatusDraft
}

type GSTType string

const (
	GSTTypeCGSTSGST GSTType = "cgst_sgst"
	GSTTypeIGST     GSTType = "igst"
)

type DiscountType = totals.DiscountType

const (
	DiscountFlat    = totals.DiscountFlat
	DiscountPercent = totals.DiscountPercent
)

// ChargeType classifies a food or service charge.
type ChargeType string

const (
	ChargeBreakfast ChargeType = "breakfast"
	ChargeLunch     ChargeType = "lunch"
	ChargeDinner    ChargeType = "dinner"
	ChargeService   ChargeType = "service"
	ChargeOther     ChargeType = "other"
)

func ParseChargeType(raw string) (ChargeType, bool) {
	switch ChargeType(strings.ToLower(strings.TrimSpace(raw))) {
	case ChargeBreakfast:
		return ChargeBreakfast, true
	case ChargeLunch:
		return ChargeLunch, true
	case ChargeDinner:
		return ChargeDinner, true
	case ChargeService:
		return ChargeService, true
	case ChargeOther:
		return ChargeOther, true
	default:
		return "", false
	}
}

// DisplayName is the default label printed for a charge of this type.
func (t ChargeType) DisplayName() string {
	switch t {
	case ChargeBreakfast:
		return "Breakfast"
	case ChargeLunch:
		return "Lunch"
	case ChargeDinner:
		return "Dinner"
	case ChargeService:
		return "Service"
	default:
		return "Other"
	}
}

// Invoice is the aggregate root of a guest bill. Hotel fields are a snapshot
// copied at creation and never re-read.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	HotelID       snowflake.ID  `gorm:"not null;index" json:"hotel_id"`
	InvoiceNumber string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_number" json:"invoice_number"`
	Status        InvoiceStatus `gorm:"type:text;not null;default:'Draft'" json:"status"`
	Version       int64         `gorm:"not null;default:1" json:"version"`

	HotelCode         string          `gorm:"type:text;not null;default:''" json:"hotel_code"`
	HotelName         string          `gorm:"type:text;not null;default:''" json:"hotel_name"`
	HotelAddress      string          `gorm:"type:text;not null;default:''" json:"hotel_address"`
	HotelEmail        string          `gorm:"type:text;not null;default:''" json:"hotel_email"`
	HotelPhone        string          `gorm:"type:text;not null;default:''" json:"hotel_phone"`
	HotelLogoURL      string          `gorm:"type:text;not null;default:''" json:"hotel_logo_url"`
	HotelSignatureURL string          `gorm:"type:text;not null;default:''" json:"hotel_signature_url"`
	HasGST            bool            `gorm:"not null;default:false" json:"has_gst"`
	GSTNumber         string          `gorm:"type:text;not null;default:''" json:"gst_number"`
	GSTPercentage     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"gst_percentage"`
	GSTType           GSTType         `gorm:"type:text;not null;default:'cgst_sgst'" json:"gst_type"`

	GuestName           string  `gorm:"type:text;not null;default:''" json:"guest_name"`
	GuestPhone          string  `gorm:"type:text;not null;default:''" json:"guest_phone"`
	GuestEmail          *string `gorm:"type:text" json:"guest_email,omitempty"`
	AdditionalGuestName *string `gorm:"type:text" json:"additional_guest_name,omitempty"`
	GuestGSTIN          *string `gorm:"type:text;column:guest_gstin" json:"guest_gstin,omitempty"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	DiscountType   *DiscountType   `gorm:"type:text" json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_value"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TaxableAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"taxable_amount"`
	GSTAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:gst_amount" json:"gst_amount"`
	GrandTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"grand_total"`
	PaymentMode    string          `gorm:"type:text;not null;default:''" json:"payment_mode"`

	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	VoidedAt    *time.Time `json:"voided_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// RoomStay is one room's booked date range within an invoice. Room number and
// name are copied at attach time.
type RoomStay struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID         snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	RoomID            *snowflake.ID   `json:"room_id,omitempty"`
	RoomNumber        string          `gorm:"type:text;not null" json:"room_number"`
	RoomName          string          `gorm:"type:text;not null;default:''" json:"room_name"`
	CheckinDate       time.Time       `gorm:"type:date;not null" json:"checkin_date"`
	CheckoutDate      time.Time       `gorm:"type:date;not null" json:"checkout_date"`
	SameRateAllNights bool            `gorm:"not null" json:"same_rate_all_nights"`
	PerNightRate      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"per_night_rate"`
	TotalNights       int             `gorm:"not null" json:"total_nights"`
	TotalRoomAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_room_amount"`
	CreationSeq       int             `gorm:"not null" json:"creation_seq"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RoomStay) TableName() string { return "invoice_room_stays" }

// RoomNightRate is the rate for one night of a variable-rate stay.
type RoomNightRate struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	RoomStayID snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_night_rates_stay_date,priority:1" json:"room_stay_id"`
	NightDate  time.Time       `gorm:"type:date;not null;uniqueIndex:ux_night_rates_stay_date,priority:2" json:"night_date"`
	Rate       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rate"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RoomNightRate) TableName() string { return "invoice_room_night_rates" }

// FoodServiceCharge is an ad-hoc charge attached to a room stay.
type FoodServiceCharge struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	RoomStayID  snowflake.ID    `gorm:"not null;index" json:"room_stay_id"`
	Type        ChargeType      `gorm:"type:text;not null" json:"type"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Quantity    *int            `json:"quantity,omitempty"`
	Rate        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rate"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CreationSeq int             `gorm:"not null" json:"creation_seq"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FoodServiceCharge) TableName() string { return "invoice_food_charges" }

// StayDetail is a room stay with its owned rows, in display order.
type StayDetail struct {
	RoomStay
	NightRates []RoomNightRate     `json:"night_rates"`
	Charges    []FoodServiceCharge `json:"charges"`
}

// InvoiceAggregate is an invoice with all descendant ledger rows.
type InvoiceAggregate struct {
	Invoice Invoice      `json:"invoice"`
	Stays   []StayDetail `json:"stays"`
}

// TotalsInput projects the ledger onto the calculator.
func (a InvoiceAggregate) TotalsInput(discount totals.Discount) totals.Input {
	in := totals.Input{
		Stays:         make([]totals.Stay, 0, len(a.Stays)),
		Discount:      discount,
		HasGST:        a.Invoice.HasGST,
		GSTPercentage: a.Invoice.GSTPercentage,
		SplitGST:      a.Invoice.GSTType != GSTTypeIGST,
	}
	for _, stay := range a.Stays {
		ts := totals.Stay{
			SameRateAllNights: stay.SameRateAllNights,
			TotalNights:       stay.TotalNights,
			PerNightRate:      stay.PerNightRate,
		}
		for _, rate := range stay.NightRates {
			ts.NightRates = append(ts.NightRates, rate.Rate)
		}
		for _, charge := range stay.Charges {
			ts.Charges = append(ts.Charges, charge.TotalAmount)
		}
		in.Stays = append(in.Stays, ts)
	}
	return in
}

// FrozenSettlement rebuilds the settlement persisted at finalization.
// Paid and void invoices report these figures rather than a fresh calculation.
func (a InvoiceAggregate) FrozenSettlement() totals.Settlement {
	inv := a.Invoice
	discount := totals.Discount{Value: inv.DiscountValue}
	if inv.DiscountType != nil {
		discount.Type = *inv.DiscountType
	}
	out := totals.Calculate(a.TotalsInput(discount))
	out.Subtotal = inv.Subtotal
	out.DiscountAmount = inv.DiscountAmount
	out.TaxableAmount = inv.TaxableAmount
	out.GSTAmount = inv.GSTAmount
	out.GrandTotal = inv.GrandTotal
	out.CGSTAmount, out.SGSTAmount, out.IGSTAmount = decimal.Zero, decimal.Zero, decimal.Zero
	if inv.HasGST {
		if inv.GSTType == GSTTypeIGST {
			out.IGSTAmount = inv.GSTAmount
		} else {
			out.CGSTAmount = totals.Round(inv.GSTAmount.Div(decimal.NewFromInt(2)))
			out.SGSTAmount = inv.GSTAmount.Sub(out.CGSTAmount)
		}
	}
	return out
}
