package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("transition", "finalized"),
		attribute.String("invoice_id", "123"),
		attribute.String("outcome", "ok"),
	)
	assert.Len(t, attrs, 2)
	for _, attr := range attrs {
		assert.NotEqual(t, attribute.Key("invoice_id"), attr.Key)
	}
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	m.RecordInvoiceTransition(context.Background(), "finalized")
	m.RecordInvoiceConflict(context.Background(), "finalized")

	var nilMetrics *Metrics
	nilMetrics.RecordLoginAttempt(context.Background(), "ok")
}

func TestHTTPMetricsCanBeBuiltTwice(t *testing.T) {
	first := NewHTTPMetrics()
	second := NewHTTPMetrics()
	assert.Same(t, first.requests, second.requests)
}

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics()
	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(m.requests.WithLabelValues("/health", http.MethodGet, "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	after := testutil.ToFloat64(m.requests.WithLabelValues("/health", http.MethodGet, "200"))

	assert.Equal(t, before+1, after)
}
