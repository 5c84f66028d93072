package server

import (
	"time"

	"github.com/shopspring/decimal"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(totals.Places)
}

type invoiceView struct {
	ID            string `json:"id"`
	HotelID       string `json:"hotel_id"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
	Version       int64  `json:"version"`

	HotelCode         string `json:"hotel_code"`
	HotelName         string `json:"hotel_name"`
	HotelAddress      string `json:"hotel_address"`
	HotelEmail        string `json:"hotel_email"`
	HotelPhone        string `json:"hotel_phone"`
	HotelLogoURL      string `json:"hotel_logo_url"`
	HotelSignatureURL string `json:"hotel_signature_url"`
	HasGST            bool   `json:"has_gst"`
	GSTNumber         string `json:"gst_number"`
	GSTPercentage     string `json:"gst_percentage"`
	GSTType           string `json:"gst_type"`

	GuestName           string  `json:"guest_name"`
	GuestPhone          string  `json:"guest_phone"`
	GuestEmail          *string `json:"guest_email"`
	AdditionalGuestName *string `json:"additional_guest_name"`
	GuestGSTIN          *string `json:"guest_gstin"`

	Subtotal       string  `json:"subtotal"`
	DiscountType   *string `json:"discount_type"`
	DiscountValue  string  `json:"discount_value"`
	DiscountAmount string  `json:"discount_amount"`
	TaxableAmount  string  `json:"taxable_amount"`
	GSTAmount      string  `json:"gst_amount"`
	GrandTotal     string  `json:"grand_total"`
	PaymentMode    string  `json:"payment_mode"`

	FinalizedAt *time.Time `json:"finalized_at"`
	VoidedAt    *time.Time `json:"voided_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newInvoiceView(inv invoicedomain.Invoice) invoiceView {
	view := invoiceView{
		ID:                  inv.ID.String(),
		HotelID:             inv.HotelID.String(),
		InvoiceNumber:       inv.InvoiceNumber,
		Status:              string(inv.Status),
		Version:             inv.Version,
		HotelCode:           inv.HotelCode,
		HotelName:           inv.HotelName,
		HotelAddress:        inv.HotelAddress,
		HotelEmail:          inv.HotelEmail,
		HotelPhone:          inv.HotelPhone,
		HotelLogoURL:        inv.HotelLogoURL,
		HotelSignatureURL:   inv.HotelSignatureURL,
		HasGST:              inv.HasGST,
		GSTNumber:           inv.GSTNumber,
		GSTPercentage:       money(inv.GSTPercentage),
		GSTType:             string(inv.GSTType),
		GuestName:           inv.GuestName,
		GuestPhone:          inv.GuestPhone,
		GuestEmail:          inv.GuestEmail,
		AdditionalGuestName: inv.AdditionalGuestName,
		GuestGSTIN:          inv.GuestGSTIN,
		Subtotal:            money(inv.Subtotal),
		DiscountValue:       money(inv.DiscountValue),
		DiscountAmount:      money(inv.DiscountAmount),
		TaxableAmount:       money(inv.TaxableAmount),
		GSTAmount:           money(inv.GSTAmount),
		GrandTotal:          money(inv.GrandTotal),
		PaymentMode:         inv.PaymentMode,
		FinalizedAt:         inv.FinalizedAt,
		VoidedAt:            inv.VoidedAt,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}
	if inv.DiscountType != nil {
		dt := string(*inv.DiscountType)
		view.DiscountType = &dt
	}
	return view
}

func newInvoiceViews(items []invoicedomain.Invoice) []invoiceView {
	out := make([]invoiceView, 0, len(items))
	for _, inv := range items {
		out = append(out, newInvoiceView(inv))
	}
	return out
}

type nightRateView struct {
	ID        string `json:"id"`
	NightDate string `json:"night_date"`
	Rate      string `json:"rate"`
}

type chargeView struct {
	ID          string `json:"id"`
	RoomStayID  string `json:"room_stay_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Quantity    *int   `json:"quantity"`
	Rate        string `json:"rate"`
	TotalAmount string `json:"total_amount"`
}

type stayView struct {
	ID                string          `json:"id"`
	InvoiceID         string          `json:"invoice_id"`
	RoomID            *string         `json:"room_id"`
	RoomNumber        string          `json:"room_number"`
	RoomName          string          `json:"room_name"`
	CheckinDate       string          `json:"checkin_date"`
	CheckoutDate      string          `json:"checkout_date"`
	SameRateAllNights bool            `json:"same_rate_all_nights"`
	PerNightRate      string          `json:"per_night_rate"`
	TotalNights       int             `json:"total_nights"`
	TotalRoomAmount   string          `json:"total_room_amount"`
	NightRates        []nightRateView `json:"night_rates"`
	Charges           []chargeView    `json:"charges"`
}

func newChargeView(ch invoicedomain.FoodServiceCharge) chargeView {
	return chargeView{
		ID:          ch.ID.String(),
		RoomStayID:  ch.RoomStayID.String(),
		Type:        string(ch.Type),
		Name:        ch.Name,
		Quantity:    ch.Quantity,
		Rate:        money(ch.Rate),
		TotalAmount: money(ch.TotalAmount),
	}
}

func newChargeViews(items []invoicedomain.FoodServiceCharge) []chargeView {
	out := make([]chargeView, 0, len(items))
	for _, ch := range items {
		out = append(out, newChargeView(ch))
	}
	return out
}

func newStayView(stay invoicedomain.StayDetail) stayView {
	view := stayView{
		ID:                stay.ID.String(),
		InvoiceID:         stay.InvoiceID.String(),
		RoomNumber:        stay.RoomNumber,
		RoomName:          stay.RoomName,
		CheckinDate:       stay.CheckinDate.Format(dateLayout),
		CheckoutDate:      stay.CheckoutDate.Format(dateLayout),
		SameRateAllNights: stay.SameRateAllNights,
		PerNightRate:      money(stay.PerNightRate),
		TotalNights:       stay.TotalNights,
		TotalRoomAmount:   money(stay.TotalRoomAmount),
		NightRates:        make([]nightRateView, 0, len(stay.NightRates)),
		Charges:           newChargeViews(stay.Charges),
	}
	if stay.RoomID != nil {
		id := stay.RoomID.String()
		view.RoomID = &id
	}
	for _, rate := range stay.NightRates {
		view.NightRates = append(view.NightRates, nightRateView{
			ID:        rate.ID.String(),
			NightDate: rate.NightDate.Format(dateLayout),
			Rate:      money(rate.Rate),
		})
	}
	return view
}

type aggregateView struct {
	Invoice invoiceView `json:"invoice"`
	Stays   []stayView  `json:"stays"`
}

func newAggregateView(agg invoicedomain.InvoiceAggregate) aggregateView {
	view := aggregateView{
		Invoice: newInvoiceView(agg.Invoice),
		Stays:   make([]stayView, 0, len(agg.Stays)),
	}
	for _, stay := range agg.Stays {
		view.Stays = append(view.Stays, newStayView(stay))
	}
	return view
}

type stayBreakdownView struct {
	RoomCharge string `json:"room_charge"`
	FoodTotal  string `json:"food_total"`
	Subtotal   string `json:"subtotal"`
}

type settlementView struct {
	Stays          []stayBreakdownView `json:"stays"`
	Subtotal       string              `json:"subtotal"`
	DiscountType   string              `json:"discount_type,omitempty"`
	DiscountValue  string              `json:"discount_value"`
	DiscountAmount string              `json:"discount_amount"`
	TaxableAmount  string              `json:"taxable_amount"`
	GSTAmount      string              `json:"gst_amount"`
	CGSTAmount     string              `json:"cgst_amount"`
	SGSTAmount     string              `json:"sgst_amount"`
	IGSTAmount     string              `json:"igst_amount"`
	GrandTotal     string              `json:"grand_total"`
}

func newSettlementView(s totals.Settlement) settlementView {
	view := settlementView{
		Stays:          make([]stayBreakdownView, 0, len(s.Stays)),
		Subtotal:       money(s.Subtotal),
		DiscountType:   string(s.DiscountType),
		DiscountValue:  money(s.DiscountValue),
		DiscountAmount: money(s.DiscountAmount),
		TaxableAmount:  money(s.TaxableAmount),
		GSTAmount:      money(s.GSTAmount),
		CGSTAmount:     money(s.CGSTAmount),
		SGSTAmount:     money(s.SGSTAmount),
		IGSTAmount:     money(s.IGSTAmount),
		GrandTotal:     money(s.GrandTotal),
	}
	for _, stay := range s.Stays {
		view.Stays = append(view.Stays, stayBreakdownView{
			RoomCharge: money(stay.RoomCharge),
			FoodTotal:  money(stay.FoodTotal),
			Subtotal:   money(stay.Subtotal),
		})
	}
	return view
}

type hotelView struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	HotelCode        string    `json:"hotel_code"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	LogoURL          string    `json:"logo_url"`
	SignatureURL     string    `json:"signature_url"`
	HasGST           bool      `json:"has_gst"`
	GSTNumber        string    `json:"gst_number"`
	GSTPercentage    string    `json:"gst_percentage"`
	GSTType          string    `json:"gst_type"`
	ProfileCompleted bool      `json:"profile_completed"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newHotelView(h hoteldomain.Hotel) hotelView {
	return hotelView{
		ID:               h.ID.String(),
		UserID:           h.UserID.String(),
		HotelCode:        h.HotelCode,
		Name:             h.Name,
		Address:          h.Address,
		Email:            h.Email,
		Phone:            h.Phone,
		LogoURL:          h.LogoURL,
		SignatureURL:     h.SignatureURL,
		HasGST:           h.HasGST,
		GSTNumber:        h.GSTNumber,
		GSTPercentage:    money(h.GSTPercentage),
		GSTType:          h.GSTType,
		ProfileCompleted: h.ProfileCompleted,
		IsActive:         h.IsActive,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func newHotelViews(items []hoteldomain.Hotel) []hotelView {
	out := make([]hotelView, 0, len(items))
	for _, h := range items {
		out = append(out, newHotelView(h))
	}
	return out
}
