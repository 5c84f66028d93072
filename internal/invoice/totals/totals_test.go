package totals

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func intPtr(v int) *int { return &v }

func twoStayInput() Input {
	return Input{
		Stays: []Stay{
			{
				SameRateAllNights: true,
				TotalNights:       3,
				PerNightRate:      d("1000"),
				Charges: []decimal.Decimal{
					ChargeTotal(intPtr(3), d("100")),
					ChargeTotal(nil, d("200")),
				},
			},
			{
				SameRateAllNights: false,
				TotalNights:       2,
				NightRates:        []decimal.Decimal{d("800"), d("900")},
			},
		},
		Discount:      Discount{Type: DiscountPercent, Value: d("10")},
		HasGST:        true,
		GSTPercentage: d("18"),
		SplitGST:      true,
	}
}

func TestCalculateWorkedExample(t *testing.T) {
	got := Calculate(twoStayInput())

	assert.Len(t, got.Stays, 2)
	assert.True(t, got.Stays[0].RoomCharge.Equal(d("3000")))
	assert.True(t, got.Stays[0].FoodTotal.Equal(d("500")))
	assert.True(t, got.Stays[0].Subtotal.Equal(d("3500")))
	assert.True(t, got.Stays[1].Subtotal.Equal(d("1700")))

	assert.Equal(t, "5200.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "520.00", got.DiscountAmount.StringFixed(2))
	assert.Equal(t, "4680.00", got.TaxableAmount.StringFixed(2))
	assert.Equal(t, "842.40", got.GSTAmount.StringFixed(2))
	assert.Equal(t, "421.20", got.CGSTAmount.StringFixed(2))
	assert.Equal(t, "421.20", got.SGSTAmount.StringFixed(2))
	assert.True(t, got.IGSTAmount.IsZero())
	assert.Equal(t, "5522.40", got.GrandTotal.StringFixed(2))
	assert.False(t, got.DiscountExceedsSubtotal())
}

func TestCalculateWithoutGST(t *testing.T) {
	in := twoStayInput()
	in.HasGST = false

	got := Calculate(in)
	assert.True(t, got.GSTAmount.IsZero())
	assert.Equal(t, "4680.00", got.GrandTotal.StringFixed(2))
}

func TestCalculateIGST(t *testing.T) {
	in := twoStayInput()
	in.SplitGST = false

	got := Calculate(in)
	assert.Equal(t, "842.40", got.IGSTAmount.StringFixed(2))
	assert.True(t, got.CGSTAmount.IsZero())
}

func TestFlatDiscount(t *testing.T) {
	in := twoStayInput()
	in.Discount = Discount{Type: DiscountFlat, Value: d("200")}

	got := Calculate(in)
	assert.Equal(t, "5000.00", got.TaxableAmount.StringFixed(2))
	assert.Equal(t, "900.00", got.GSTAmount.StringFixed(2))
	assert.Equal(t, "5900.00", got.GrandTotal.StringFixed(2))
}

func TestDiscountExceedsSubtotal(t *testing.T) {
	in := twoStayInput()

	in.Discount = Discount{Type: DiscountFlat, Value: d("5200.01")}
	assert.True(t, Calculate(in).DiscountExceedsSubtotal())

	in.Discount = Discount{Type: DiscountPercent, Value: d("100.5")}
	assert.True(t, Calculate(in).DiscountExceedsSubtotal())

	in.Discount = Discount{Type: DiscountPercent, Value: d("100")}
	got := Calculate(in)
	assert.False(t, got.DiscountExceedsSubtotal())
	assert.True(t, got.GrandTotal.IsZero())
}

func TestNoDiscount(t *testing.T) {
	in := twoStayInput()
	in.Discount = Discount{}

	got := Calculate(in)
	assert.True(t, got.DiscountAmount.IsZero())
	assert.Equal(t, "5200.00", got.TaxableAmount.StringFixed(2))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "0.13", Round(d("0.125")).StringFixed(2))
	assert.Equal(t, "10.01", Round(d("10.005")).StringFixed(2))
	assert.Equal(t, "10.00", Round(d("10.004")).StringFixed(2))
}

func TestRepeatedAdditionDoesNotDrift(t *testing.T) {
	stay := Stay{}
	for i := 0; i < 10; i++ {
		stay.Charges = append(stay.Charges, d("0.1"))
	}
	assert.Equal(t, "1.00", FoodTotal(stay).StringFixed(2))
}

func TestNights(t *testing.T) {
	day := func(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 3, Nights(day(2025, 1, 1), day(2025, 1, 4)))
	assert.Equal(t, 0, Nights(day(2025, 1, 1), day(2025, 1, 1)))
	assert.Equal(t, 0, Nights(day(2025, 1, 2), day(2025, 1, 1)))
	assert.Equal(t, 1, Nights(day(2025, 1, 1), day(2025, 1, 1).Add(2*time.Hour)))
	assert.Equal(t, 2, Nights(day(2025, 12, 31), day(2026, 1, 2)))
}

func TestChargeTotal(t *testing.T) {
	assert.Equal(t, "300.00", ChargeTotal(intPtr(3), d("100")).StringFixed(2))
	assert.Equal(t, "200.00", ChargeTotal(nil, d("200")).StringFixed(2))
	assert.Equal(t, "0.00", ChargeTotal(intPtr(0), d("50")).StringFixed(2))
}
