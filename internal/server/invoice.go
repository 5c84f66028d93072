package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

type AttachRoomRequest struct {
	RoomID            string            `json:"room_id"`
	RoomNumber        string            `json:"room_number"`
	RoomName          string            `json:"room_name"`
	CheckinDate       string            `json:"checkin_date" binding:"required"`
	CheckoutDate      string            `json:"checkout_date" binding:"required"`
	SameRateAllNights *bool             `json:"same_rate_all_nights"`
	PerNightRate      decimal.Decimal   `json:"per_night_rate"`
	NightRates        []decimal.Decimal `json:"night_rates"`
}

type ChargeItem struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Quantity *int            `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

type AddChargesRequest struct {
	Charges []ChargeItem `json:"charges"`
}

type DiscountRequest struct {
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

func (r DiscountRequest) discount() totals.Discount {
	return totals.Discount{
		Type:  totals.DiscountType(strings.ToLower(strings.TrimSpace(r.DiscountType))),
		Value: r.DiscountValue,
	}
}

type FinalizeInvoiceRequest struct {
	DiscountRequest
	PaymentModes []string `json:"payment_modes"`
}

type searchInvoicesQuery struct {
	pagination.Pagination
	InvoiceNumber string `form:"invoice_number"`
	GuestName     string `form:"guest_name"`
	Status        string `form:"status"`
	MinTotal      string `form:"min_total"`
	MaxTotal      string `form:"max_total"`
	CreatedFrom   string `form:"created_from"`
	CreatedTo     string `form:"created_to"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindingError(err))
			return
		}
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		HotelID:       hotelID,
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("invoice_id", inv.ID.String())
	c.JSON(http.StatusCreated, gin.H{"data": newInvoiceView(inv)})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query searchInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := invoicedomain.SearchInvoiceRequest{
		Pagination:    query.Pagination,
		InvoiceNumber: strings.TrimSpace(query.InvoiceNumber),
		GuestName:     strings.TrimSpace(query.GuestName),
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, ok := invoicedomain.ParseInvoiceStatus(raw)
		if !ok {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		req.Status = &status
	}

	var err error
	if req.MinTotal, err = parseOptionalDecimal(query.MinTotal); err != nil {
		AbortWithError(c, newValidationError("min_total", "invalid_min_total", "invalid min_total"))
		return
	}
	if req.MaxTotal, err = parseOptionalDecimal(query.MaxTotal); err != nil {
		AbortWithError(c, newValidationError("max_total", "invalid_max_total", "invalid max_total"))
		return
	}
	if req.CreatedFrom, err = parseOptionalTime(query.CreatedFrom, false); err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	if req.CreatedTo, err = parseOptionalTime(query.CreatedTo, true); err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.invoiceSvc.Search(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newInvoiceViews(resp.Invoices), "page_info": resp.PageInfo})
}

func (s *Server) GetInvoice(c *gin.Context) {
	agg, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newAggregateView(agg)})
}

func (s *Server) UpdateInvoiceGuest(c *gin.Context) {
	var req invoicedomain.GuestDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	inv, err := s.invoiceSvc.UpdateGuestDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newInvoiceView(inv)})
}

func (s *Server) AttachInvoiceRoom(c *gin.Context) {
	var req AttachRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	checkin, err := parseDate(req.CheckinDate)
	if err != nil {
		AbortWithError(c, invoicedomain.FieldError(invoicedomain.ErrInvalidDateRange, "checkin_date"))
		return
	}
	checkout, err := parseDate(req.CheckoutDate)
	if err != nil {
		AbortWithError(c, invoicedomain.FieldError(invoicedomain.ErrInvalidDateRange, "checkout_date"))
		return
	}

	sameRate := len(req.NightRates) == 0
	if req.SameRateAllNights != nil {
		sameRate = *req.SameRateAllNights
	}

	stay, err := s.invoiceSvc.AttachRoom(c.Request.Context(), c.Param("id"), invoicedomain.AttachRoomRequest{
		RoomID:            strings.TrimSpace(req.RoomID),
		RoomNumber:        req.RoomNumber,
		RoomName:          req.RoomName,
		CheckinDate:       checkin,
		CheckoutDate:      checkout,
		SameRateAllNights: sameRate,
		PerNightRate:      req.PerNightRate,
		NightRates:        req.NightRates,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": newStayView(stay)})
}

func (s *Server) RemoveRoomStay(c *gin.Context) {
	if err := s.invoiceSvc.RemoveRoom(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) AddRoomStayCharges(c *gin.Context) {
	var req AddChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	specs := make([]invoicedomain.ChargeSpec, 0, len(req.Charges))
	for _, item := range req.Charges {
		specs = append(specs, invoicedomain.ChargeSpec{
			Type:     item.Type,
			Name:     item.Name,
			Quantity: item.Quantity,
			Rate:     item.Rate,
		})
	}

	charges, err := s.invoiceSvc.AddCharges(c.Request.Context(), c.Param("id"), specs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": newChargeViews(charges)})
}

func (s *Server) RemoveCharge(c *gin.Context) {
	if err := s.invoiceSvc.RemoveCharge(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	var req DiscountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindingError(err))
			return
		}
	}

	preview, err := s.invoiceSvc.Preview(c.Request.Context(), c.Param("id"), req.discount())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"invoice":    newInvoiceView(preview.Invoice),
		"settlement": newSettlementView(preview.Settlement),
	}})
}

func (s *Server) FinalizeInvoice(c *gin.Context) {
	var req FinalizeInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	inv, err := s.invoiceSvc.Finalize(c.Request.Context(), c.Param("id"), invoicedomain.FinalizeRequest{
		PaymentModes: req.PaymentModes,
		Discount:     req.discount(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newInvoiceView(inv)})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newInvoiceView(inv)})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}
