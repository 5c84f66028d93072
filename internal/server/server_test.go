package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/innledger/internal/assets"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/authorization"
	"github.com/smallbiznis/innledger/internal/config"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/observability"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	hotelToken = "hotel-token"
	adminToken = "admin-token"
	testHotel  = snowflake.ID(7001)
)

type fakeAuth struct {
	authdomain.Service
}

func (fakeAuth) ValidateToken(_ context.Context, raw string) (*authdomain.Claims, error) {
	switch raw {
	case hotelToken:
		return &authdomain.Claims{UserID: 11, Role: authdomain.RoleHotel, HotelID: testHotel}, nil
	case adminToken:
		return &authdomain.Claims{UserID: 1, Role: authdomain.RoleAdmin}, nil
	default:
		return nil, authdomain.ErrInvalidToken
	}
}

type fakeInvoices struct {
	invoicedomain.Service

	createdFor snowflake.ID
	attachReq  invoicedomain.AttachRoomRequest
	get        func(id string) (invoicedomain.InvoiceAggregate, error)
	finalize   func(id string, req invoicedomain.FinalizeRequest) (invoicedomain.Invoice, error)
	attach     func(id string, req invoicedomain.AttachRoomRequest) (invoicedomain.StayDetail, error)
	search     func(req invoicedomain.SearchInvoiceRequest) (invoicedomain.SearchInvoiceResponse, error)
}

func (f *fakeInvoices) Create(_ context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	f.createdFor = req.HotelID
	return invoicedomain.Invoice{ID: 42, HotelID: req.HotelID, InvoiceNumber: "INV-1", Status: invoicedomain.InvoiceStatusDraft}, nil
}

func (f *fakeInvoices) Get(_ context.Context, id string) (invoicedomain.InvoiceAggregate, error) {
	return f.get(id)
}

func (f *fakeInvoices) Finalize(_ context.Context, id string, req invoicedomain.FinalizeRequest) (invoicedomain.Invoice, error) {
	return f.finalize(id, req)
}

func (f *fakeInvoices) AttachRoom(_ context.Context, id string, req invoicedomain.AttachRoomRequest) (invoicedomain.StayDetail, error) {
	f.attachReq = req
	return f.attach(id, req)
}

func (f *fakeInvoices) Search(_ context.Context, req invoicedomain.SearchInvoiceRequest) (invoicedomain.SearchInvoiceResponse, error) {
	return f.search(req)
}

func (f *fakeInvoices) RenderPDF(_ context.Context, id string) (invoicedomain.Document, error) {
	return invoicedomain.Document{FileName: "INV-1.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")}, nil
}

func newTestServer(t *testing.T, invoices *fakeInvoices) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)

	engine := NewEngine(observability.Config{}, config.Config{}, nil)
	s := NewServer(ServerParams{
		Gin:        engine,
		Authsvc:    fakeAuth{},
		AuthzSvc:   authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		InvoiceSvc: invoices,
	})
	return s.Engine()
}

func do(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})
	rec := do(t, engine, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})

	rec := do(t, engine, http.MethodGet, "/api/invoices", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, typeUnauthorized, decodeError(t, rec).Type)

	rec = do(t, engine, http.MethodGet, "/api/invoices", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decodeError(t, rec).Code)
}

func TestRolePoliciesGateRoutes(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})

	rec := do(t, engine, http.MethodPost, "/api/invoices", adminToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, typeForbidden, decodeError(t, rec).Type)

	rec = do(t, engine, http.MethodGet, "/admin/hotels", hotelToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateInvoiceScopesToCallerHotel(t *testing.T) {
	invoices := &fakeInvoices{}
	engine := newTestServer(t, invoices)

	rec := do(t, engine, http.MethodPost, "/api/invoices", hotelToken, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testHotel, invoices.createdFor)

	var resp struct {
		Data invoiceView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Draft", resp.Data.Status)
	assert.Equal(t, "0.00", resp.Data.GrandTotal)
}

func TestGetInvoiceRendersMoneyWithTwoDecimals(t *testing.T) {
	invoices := &fakeInvoices{
		get: func(id string) (invoicedomain.InvoiceAggregate, error) {
			return invoicedomain.InvoiceAggregate{
				Invoice: invoicedomain.Invoice{
					ID:            42,
					Status:        invoicedomain.InvoiceStatusDraft,
					Subtotal:      decimal.RequireFromString("5200"),
					GSTPercentage: decimal.RequireFromString("12"),
					GrandTotal:    decimal.RequireFromString("5522.4"),
				},
			}, nil
		},
	}
	engine := newTestServer(t, invoices)

	rec := do(t, engine, http.MethodGet, "/api/invoices/42", hotelToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data aggregateView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "5200.00", resp.Data.Invoice.Subtotal)
	assert.Equal(t, "12.00", resp.Data.Invoice.GSTPercentage)
	assert.Equal(t, "5522.40", resp.Data.Invoice.GrandTotal)
	assert.Empty(t, resp.Data.Stays)
}

func TestInvoiceErrorsMapToStatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		kind      string
		code      string
		wantField string
	}{
		{"locked", invoicedomain.ErrInvoiceLocked, http.StatusConflict, "state_conflict", "invoice_locked", ""},
		{"missing guest", invoicedomain.FieldError(invoicedomain.ErrMissingGuestDetails, "guest_name"), http.StatusBadRequest, "validation_error", "missing_guest_details", "guest_name"},
		{"not found", invoicedomain.ErrInvoiceNotFound, http.StatusNotFound, "not_found", "invoice_not_found", ""},
		{"storage", invoicedomain.StorageError("finalize", errors.New("disk full")), http.StatusInternalServerError, "storage_failure", "storage_failure", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := &fakeInvoices{
				finalize: func(string, invoicedomain.FinalizeRequest) (invoicedomain.Invoice, error) {
					return invoicedomain.Invoice{}, tt.err
				},
			}
			engine := newTestServer(t, invoices)

			rec := do(t, engine, http.MethodPost, "/api/invoices/42/finalize", hotelToken, `{"payment_modes":["cash"]}`)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.kind, body.Type)
			assert.Equal(t, tt.code, body.Code)
			if tt.wantField != "" {
				require.Len(t, body.Errors, 1)
				assert.Equal(t, tt.wantField, body.Errors[0].Field)
			}
		})
	}
}

func TestUnknownErrorsAreNotLeaked(t *testing.T) {
	invoices := &fakeInvoices{
		search: func(invoicedomain.SearchInvoiceRequest) (invoicedomain.SearchInvoiceResponse, error) {
			return invoicedomain.SearchInvoiceResponse{}, errors.New("pq: connection refused")
		},
	}
	engine := newTestServer(t, invoices)

	rec := do(t, engine, http.MethodGet, "/api/invoices", hotelToken, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestListInvoicesRejectsUnknownStatus(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})

	rec := do(t, engine, http.MethodGet, "/api/invoices?status=Pending", hotelToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "status", body.Errors[0].Field)
}

func TestAttachRoomParsesDatesAndDefaultsRateMode(t *testing.T) {
	invoices := &fakeInvoices{
		attach: func(string, invoicedomain.AttachRoomRequest) (invoicedomain.StayDetail, error) {
			return invoicedomain.StayDetail{}, nil
		},
	}
	engine := newTestServer(t, invoices)

	rec := do(t, engine, http.MethodPost, "/api/invoices/42/rooms", hotelToken,
		`{"room_number":"101","checkin_date":"2024-01-10","checkout_date":"2024-01-12","night_rates":["2500","2700"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, invoices.attachReq.SameRateAllNights)
	assert.Equal(t, 10, invoices.attachReq.CheckinDate.Day())
	assert.Len(t, invoices.attachReq.NightRates, 2)

	rec = do(t, engine, http.MethodPost, "/api/invoices/42/rooms", hotelToken,
		`{"room_number":"101","checkin_date":"10/01/2024","checkout_date":"2024-01-12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "checkin_date", body.Errors[0].Field)
}

func TestBindingErrorsUseJSONFieldNames(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})

	rec := do(t, engine, http.MethodPost, "/admin/hotels/9/status", adminToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "is_active", body.Errors[0].Field)
	assert.Equal(t, "required", body.Errors[0].Code)
}

func TestDownloadInvoicePDF(t *testing.T) {
	engine := newTestServer(t, &fakeInvoices{})

	rec := do(t, engine, http.MethodGet, "/api/invoices/42/pdf", hotelToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `"INV-1.pdf"`)
}

func TestAssetErrorsAreValidationErrors(t *testing.T) {
	for _, err := range []error{assets.ErrInvalidKind, assets.ErrInvalidImage, assets.ErrTooLarge, assets.ErrDimensions} {
		assert.True(t, isValidationError(fmt.Errorf("upload: %w", err)), err.Error())
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00", money(decimal.Zero))
	assert.Equal(t, "1234.50", money(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "3.33", money(decimal.RequireFromString("3.333")))
}
