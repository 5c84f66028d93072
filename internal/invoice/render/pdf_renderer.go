package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"go.uber.org/zap"
)

const dateLayout = "02 Jan 2006"

var voidColor = &props.Color{Red: 200, Green: 30, Blue: 30}

type PDFRenderer struct {
	log *zap.Logger
}

func NewPDFRenderer(log *zap.Logger) domain.Renderer {
	return &PDFRenderer{log: log.Named("invoice.render")}
}

// Render lays out one invoice with the hotel snapshot header, a section per
// room stay and the settlement block.
func (r *PDFRenderer) Render(agg domain.InvoiceAggregate, settlement totals.Settlement) ([]byte, error) {
	inv := agg.Invoice

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	r.header(m, inv)
	r.guest(m, inv)

	for i, stay := range agg.Stays {
		breakdown := totals.StayBreakdown{}
		if i < len(settlement.Stays) {
			breakdown = settlement.Stays[i]
		}
		r.stay(m, stay, breakdown)
	}

	r.settlement(m, inv, settlement)

	doc, err := m.Generate()
	if err != nil {
		r.log.Error("pdf generation failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		return nil, err
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) header(m core.Maroto, inv domain.Invoice) {
	title := "Tax Invoice"
	if !inv.HasGST {
		title = "Invoice"
	}

	m.AddRow(12,
		text.NewCol(8, inv.HotelName, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(18,
		col.New(8).Add(
			text.New(inv.HotelAddress, props.Text{Size: 9}),
			text.New(joinNonEmpty(" | ", inv.HotelPhone, inv.HotelEmail), props.Text{Size: 9, Top: 5}),
			text.New(gstLine(inv), props.Text{Size: 9, Top: 10}),
		),
		col.New(4).Add(
			text.New("No. "+inv.InvoiceNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Date: "+issueDate(inv), props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New("Status: "+string(inv.Status), props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)
	if inv.Status == domain.InvoiceStatusVoid {
		m.AddRow(14,
			text.NewCol(12, "VOID", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Color: voidColor}),
		)
	}
	m.AddRow(4, line.NewCol(12))
}

func (r *PDFRenderer) guest(m core.Maroto, inv domain.Invoice) {
	lines := []string{inv.GuestName, inv.GuestPhone}
	if inv.AdditionalGuestName != nil {
		lines = append(lines, "With: "+*inv.AdditionalGuestName)
	}
	if inv.GuestEmail != nil {
		lines = append(lines, *inv.GuestEmail)
	}
	if inv.GuestGSTIN != nil {
		lines = append(lines, "GSTIN: "+*inv.GuestGSTIN)
	}

	m.AddRow(6, text.NewCol(12, "Billed to", props.Text{Size: 10, Style: fontstyle.Bold}))
	c := col.New(12)
	for i, l := range lines {
		c.Add(text.New(l, props.Text{Size: 9, Top: float64(i * 5)}))
	}
	m.AddRow(float64(len(lines)*5+2), c)
}

func (r *PDFRenderer) stay(m core.Maroto, stay domain.StayDetail, breakdown totals.StayBreakdown) {
	room := "Room " + stay.RoomNumber
	if stay.RoomName != "" {
		room += " (" + stay.RoomName + ")"
	}
	period := fmt.Sprintf("%s to %s, %d night(s)",
		stay.CheckinDate.Format(dateLayout), stay.CheckoutDate.Format(dateLayout), stay.TotalNights)

	m.AddRow(4, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, room, props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(6, period, props.Text{Size: 9, Align: align.Right}),
	)
	r.tableHeader(m)

	if stay.SameRateAllNights {
		r.item(m, "Room charge", fmt.Sprintf("%d", stay.TotalNights), money(stay.PerNightRate), money(stay.TotalRoomAmount))
	} else {
		for _, night := range stay.NightRates {
			r.item(m, "Room charge "+night.NightDate.Format(dateLayout), "1", money(night.Rate), money(night.Rate))
		}
	}
	for _, charge := range stay.Charges {
		qty := "-"
		if charge.Quantity != nil {
			qty = fmt.Sprintf("%d", *charge.Quantity)
		}
		r.item(m, charge.Name, qty, money(charge.Rate), money(charge.TotalAmount))
	}

	r.total(m, "Stay subtotal", money(breakdown.Subtotal), false)
}

func (r *PDFRenderer) tableHeader(m core.Maroto) {
	head := props.Text{Size: 9, Style: fontstyle.Bold}
	right := head
	right.Align = align.Right
	m.AddRow(6,
		text.NewCol(6, "Description", head),
		text.NewCol(2, "Qty", right),
		text.NewCol(2, "Rate", right),
		text.NewCol(2, "Amount", right),
	)
}

func (r *PDFRenderer) item(m core.Maroto, desc, qty, rate, amount string) {
	right := props.Text{Size: 9, Align: align.Right}
	m.AddRow(5,
		text.NewCol(6, desc, props.Text{Size: 9}),
		text.NewCol(2, qty, right),
		text.NewCol(2, rate, right),
		text.NewCol(2, amount, right),
	)
}

func (r *PDFRenderer) total(m core.Maroto, label, value string, bold bool) {
	p := props.Text{Size: 9}
	if bold {
		p.Style = fontstyle.Bold
	}
	v := p
	v.Align = align.Right
	m.AddRow(6,
		col.New(6),
		text.NewCol(4, label, p),
		text.NewCol(2, value, v),
	)
}

func (r *PDFRenderer) settlement(m core.Maroto, inv domain.Invoice, s totals.Settlement) {
	m.AddRow(4, line.NewCol(12))
	r.total(m, "Subtotal", money(s.Subtotal), false)
	if !s.DiscountAmount.IsZero() {
		label := "Discount"
		if s.DiscountType == totals.DiscountPercent {
			label = fmt.Sprintf("Discount (%s%%)", s.DiscountValue.StringFixed(totals.Places))
		}
		r.total(m, label, "-"+money(s.DiscountAmount), false)
	}
	r.total(m, "Taxable amount", money(s.TaxableAmount), false)
	if inv.HasGST {
		rate := inv.GSTPercentage
		if inv.GSTType == domain.GSTTypeIGST {
			r.total(m, fmt.Sprintf("IGST (%s%%)", rate.StringFixed(totals.Places)), money(s.IGSTAmount), false)
		} else {
			half := rate.Div(decimal.NewFromInt(2))
			r.total(m, fmt.Sprintf("CGST (%s%%)", half.StringFixed(totals.Places)), money(s.CGSTAmount), false)
			r.total(m, fmt.Sprintf("SGST (%s%%)", half.StringFixed(totals.Places)), money(s.SGSTAmount), false)
		}
	}
	r.total(m, "Grand total", money(s.GrandTotal), true)
	if inv.PaymentMode != "" {
		r.total(m, "Paid via", inv.PaymentMode, false)
	}
}

func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(totals.Places)
}

func gstLine(inv domain.Invoice) string {
	if !inv.HasGST || inv.GSTNumber == "" {
		return ""
	}
	return "GSTIN: " + inv.GSTNumber
}

func issueDate(inv domain.Invoice) string {
	if inv.FinalizedAt != nil {
		return inv.FinalizedAt.Format(dateLayout)
	}
	return inv.CreatedAt.Format(dateLayout)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
