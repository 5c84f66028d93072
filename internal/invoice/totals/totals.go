// Package totals derives invoice settlement figures from ledger state.
//
// Every function here is pure. The same calculation backs the live preview
// and the figures frozen on an invoice at finalization.
package totals

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountFlat    DiscountType = "flat"
	DiscountPercent DiscountType = "percent"
)

// Places is the number of fraction digits kept on every monetary value.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Stay is the calculator's view of one room stay.
type Stay struct {
	SameRateAllNights bool
	TotalNights       int
	PerNightRate      decimal.Decimal
	NightRates        []decimal.Decimal
	Charges           []decimal.Decimal
}

type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

type Input struct {
	Stays         []Stay
	Discount      Discount
	HasGST        bool
	GSTPercentage decimal.Decimal
	// SplitGST reports the tax as equal CGST and SGST halves instead of IGST.
	SplitGST bool
}

type StayBreakdown struct {
	RoomCharge decimal.Decimal `json:"room_charge"`
	FoodTotal  decimal.Decimal `json:"food_total"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Settlement is the derived financial view of an invoice.
type Settlement struct {
	Stays          []StayBreakdown `json:"stays"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountType   DiscountType    `json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	CGSTAmount     decimal.Decimal `json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `json:"sgst_amount"`
	IGSTAmount     decimal.Decimal `json:"igst_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// DiscountExceedsSubtotal reports whether finalizing would produce a negative
// taxable amount.
func (s Settlement) DiscountExceedsSubtotal() bool {
	return s.DiscountAmount.GreaterThan(s.Subtotal)
}

// Round applies round-half-up to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Nights is the whole number of nights between check-in and check-out.
// Partial days round up to a full night.
func Nights(checkin, checkout time.Time) int {
	diff := checkout.Sub(checkin)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// ChargeTotal is quantity × rate, or the rate itself for a flat charge.
func ChargeTotal(quantity *int, rate decimal.Decimal) decimal.Decimal {
	if quantity == nil {
		return Round(rate)
	}
	return Round(rate.Mul(decimal.NewFromInt(int64(*quantity))))
}

// RoomCharge is the accommodation amount of a stay.
func RoomCharge(stay Stay) decimal.Decimal {
	if stay.SameRateAllNights {
		return Round(stay.PerNightRate.Mul(decimal.NewFromInt(int64(stay.TotalNights))))
	}
	total := decimal.Zero
	for _, rate := range stay.NightRates {
		total = total.Add(rate)
	}
	return Round(total)
}

func FoodTotal(stay Stay) decimal.Decimal {
	total := decimal.Zero
	for _, charge := range stay.Charges {
		total = total.Add(charge)
	}
	return Round(total)
}

// DiscountAmount resolves a discount against a subtotal.
func DiscountAmount(subtotal decimal.Decimal, discount Discount) decimal.Decimal {
	switch discount.Type {
	case DiscountPercent:
		return Round(subtotal.Mul(discount.Value).Div(hundred))
	case DiscountFlat:
		return Round(discount.Value)
	default:
		return decimal.Zero
	}
}

// Calculate evaluates subtotal, discount, taxable amount, GST and grand total
// in that order. It does not clamp; callers check DiscountExceedsSubtotal.
func Calculate(in Input) Settlement {
	out := Settlement{
		Stays:         make([]StayBreakdown, 0, len(in.Stays)),
		Subtotal:      decimal.Zero,
		DiscountType:  in.Discount.Type,
		DiscountValue: in.Discount.Value,
	}

	for _, stay := range in.Stays {
		room := RoomCharge(stay)
		food := FoodTotal(stay)
		sub := room.Add(food)
		out.Stays = append(out.Stays, StayBreakdown{RoomCharge: room, FoodTotal: food, Subtotal: sub})
		out.Subtotal = out.Subtotal.Add(sub)
	}

	out.DiscountAmount = DiscountAmount(out.Subtotal, in.Discount)
	out.TaxableAmount = out.Subtotal.Sub(out.DiscountAmount)

	out.GSTAmount = decimal.Zero
	out.CGSTAmount = decimal.Zero
	out.SGSTAmount = decimal.Zero
	out.IGSTAmount = decimal.Zero
	if in.HasGST {
		out.GSTAmount = Round(out.TaxableAmount.Mul(in.GSTPercentage).Div(hundred))
		if in.SplitGST {
			out.CGSTAmount = Round(out.GSTAmount.Div(decimal.NewFromInt(2)))
			out.SGSTAmount = out.GSTAmount.Sub(out.CGSTAmount)
		} else {
			out.IGSTAmount = out.GSTAmount
		}
	}

	out.GrandTotal = out.TaxableAmount.Add(out.GSTAmount)
	return out
}
