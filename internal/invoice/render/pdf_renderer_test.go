package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderProducesPDF(t *testing.T) {
	qty := 3
	finalized := time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC)
	agg := domain.InvoiceAggregate{
		Invoice: domain.Invoice{
			InvoiceNumber: "000001/2025-26/0001",
			Status:        domain.InvoiceStatusVoid,
			HotelName:     "Lakeview Inn",
			HasGST:        true,
			GSTNumber:     "29ABCDE1234F1Z5",
			GSTPercentage: decimal.NewFromInt(18),
			GSTType:       domain.GSTTypeCGSTSGST,
			GuestName:     "Asha Rao",
			GuestPhone:    "+919876543210",
			PaymentMode:   "Cash, UPI",
			FinalizedAt:   &finalized,
		},
		Stays: []domain.StayDetail{{
			RoomStay: domain.RoomStay{
				RoomNumber:        "101",
				CheckinDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				CheckoutDate:      time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
				SameRateAllNights: true,
				PerNightRate:      decimal.NewFromInt(1000),
				TotalNights:       3,
				TotalRoomAmount:   decimal.NewFromInt(3000),
			},
			Charges: []domain.FoodServiceCharge{{
				Name: "Breakfast", Quantity: &qty, Rate: decimal.NewFromInt(100), TotalAmount: decimal.NewFromInt(300),
			}},
		}},
	}
	settlement := totals.Calculate(agg.TotalsInput(totals.Discount{Type: totals.DiscountFlat, Value: decimal.NewFromInt(100)}))

	out, err := NewPDFRenderer(zap.NewNop()).Render(agg, settlement)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
