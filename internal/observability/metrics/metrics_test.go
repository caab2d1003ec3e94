package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("outcome", "inserted"),
		attribute.String("customer_id", "ABC123"),
		attribute.String("engine", "maroto"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("outcome"), attrs[0].Key)
	assert.Equal(t, attribute.Key("engine"), attrs[1].Key)
}

func TestRecordIngestRows(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordIngestRows(ctx, "inserted", 3)
	m.RecordIngestRows(ctx, "inserted", 2)
	m.RecordIngestRows(ctx, "skipped", 0)
	m.RecordReportRendered(ctx, "maroto", 10*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "voltbill_ingest_rows_total" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(5), total)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordIngestRows(context.Background(), "inserted", 1)
	m.RecordBillOutcome(context.Background(), "created")
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	again, err := NewHTTPMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, m.requests, again.requests)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/get-bills", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/get-bills", nil))
	}

	var metric dto.Metric
	require.NoError(t, m.requests.WithLabelValues(http.MethodGet, "/get-bills", "200").Write(&metric))
	assert.Equal(t, float64(2), metric.GetCounter().GetValue())
}
