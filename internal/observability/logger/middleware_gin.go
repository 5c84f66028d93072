package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/innledger/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDHeader = "X-Request-Id"

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier returns the error type and code reported to clients.
	ErrorClassifier func(err error) (string, string)
}

// subjectKeys maps the leading route segment of a ledger route onto the log
// field that names the record it acts on.
var subjectKeys = map[string]string{
	"invoices":   "invoice_id",
	"room-stays": "room_stay_id",
	"charges":    "charge_id",
	"rooms":      "room_id",
	"hotels":     "target_hotel_id",
}

// GinMiddleware assigns a request id and writes one "http_request" entry per
// request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := strings.TrimSpace(c.FullPath())
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
			zap.String("client_ip", c.ClientIP()),
		}
		fields = append(fields, subjectFields(c, route)...)

		var errorType string
		if lastErr := c.Errors.Last(); lastErr != nil {
			var errorCode string
			if cfg.ErrorClassifier != nil {
				errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			}
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if cfg.Debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		if ce := FromContext(c.Request.Context()).Check(requestLevel(route, status, errorType), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// subjectFields names the invoice, stay, charge, room or hotel a request
// touched: the :id route parameter, or an id a handler stored after creating
// the record.
func subjectFields(c *gin.Context, route string) []zap.Field {
	var fields []zap.Field
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		for _, segment := range strings.Split(route, "/") {
			if key, ok := subjectKeys[segment]; ok {
				fields = append(fields, zap.String(key, id))
				break
			}
		}
	}
	if created := strings.TrimSpace(c.GetString("invoice_id")); created != "" {
		fields = append(fields, zap.String("invoice_id", created))
	}
	return fields
}

// requestLevel keeps health and metrics scrapes quiet, flags lifecycle conflicts and throttled
// logins as warnings and server failures as errors.
func requestLevel(route string, status int, errorType string) zapcore.Level {
	switch {
	case route == "/health" || route == "/metrics":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusTooManyRequests, errorType == "state_conflict":
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
	if requestID == "" {
		requestID = strings.TrimSpace(c.GetString("request_id"))
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Header(requestIDHeader, requestID)
	return requestID
}
