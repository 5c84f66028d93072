package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/innledger/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("  select id from invoices"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH x AS (SELECT 1) UPDATE invoices SET status = 'Paid'"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestDescribeStatementIgnoresNestedQueries(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{`SELECT * FROM "invoices" WHERE id = $1`, "SELECT", "invoices"},
		{`SELECT count(*) FROM (SELECT id FROM room_stays) s`, "SELECT", ""},
		{`WITH paid AS (SELECT id FROM invoices WHERE status = 'Paid') DELETE FROM invoice_food_charges WHERE 1=1`, "DELETE", "invoice_food_charges"},
		{`WITH seq AS (UPDATE invoice_sequences SET next = next + 1 RETURNING next) INSERT INTO invoices (id) SELECT next FROM seq`, "INSERT", "invoices"},
		{`UPDATE "public"."invoices" SET "status"='Paid (cash)', "version"=version + 1`, "UPDATE", "public.invoices"},
		{"INSERT INTO `rooms` (`number`) VALUES ('101')", "INSERT", "rooms"},
		{`SELECT 'UPDATE x' AS note`, "SELECT", ""},
		{`PRAGMA foreign_keys = ON`, "UNKNOWN", ""},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			got := describeStatement(tt.sql)
			assert.Equal(t, tt.operation, got.operation)
			assert.Equal(t, tt.table, got.table)
		})
	}
}

func TestGormLoggerLogsSlowStatementsWithoutParams(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	l := NewGormLogger(GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 1})
	sql, params := l.ParamsFilter(context.Background(), "SELECT * FROM invoices WHERE guest_phone = ?", "+919812345678")
	assert.Nil(t, params)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return sql, 2 }, nil)

	entries := logs.FilterMessage("db.statement").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "slow", fields["outcome"])
	assert.Equal(t, "SELECT", fields["operation"])
	assert.Equal(t, "invoices", fields["table"])
	assert.NotContains(t, fields["sql"], "+919812345678")
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("off"))
	assert.Equal(t, gormlogger.Error, ParseGormLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, ParseGormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel(""))
}

func TestWithContextOmitsUnsetFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("plain")
	ctx := obscontext.WithHotelID(obscontext.WithRequestID(context.Background(), "req-9"), "7001")
	WithContext(ctx, base).Info("scoped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"request_id": "req-9", "hotel_id": "7001"}, entries[1].ContextMap())
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/invoices/:id/finalize", http.StatusInternalServerError, "storage_failure"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/invoices/:id/finalize", http.StatusConflict, "state_conflict"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/auth/login", http.StatusTooManyRequests, "rate_limited"))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/rooms", http.StatusOK, ""))
}

func TestGinMiddlewareNamesLedgerRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.DELETE("/api/room-stays/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/room-stays/55", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "55", fields["room_stay_id"])
	assert.Equal(t, "/api/room-stays/:id", fields["route"])
	assert.NotContains(t, fields, "invoice_id")
}

func TestGinMiddlewareEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
