package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"bvmtdash/internal/config"
)

func testOTelConfig(traceExporter string, metrics bool) *OTelConfig {
	cfg := NewOTelConfig(config.TelemetryConfig{
		MetricsEnabled: metrics,
		TraceExporter:  traceExporter,
		ServiceName:    "bvmtdash-test",
	})
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", true), discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", false), discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	// no-op meter still hands out working instruments
	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordTransform(context.Background(), "Banques", time.Millisecond, "")
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(testOTelConfig("jaeger", false), discardLogger())
	assert.Error(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("stdout", false), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "select-sector")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	SetSpanAttributes(ctx, attribute.String("sector", "Banques"))
	RecordError(ctx, errors.New("boom"))
	assert.True(t, span.IsRecording())
}

func TestDashboardMetrics_PrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", true), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordTransform(ctx, "Banques", 3*time.Millisecond, "")
	metrics.RecordTransform(ctx, "Mines", time.Millisecond, "LOOKUP")
	metrics.RecordExport(ctx, "Banques", "csv")
	metrics.SetSectorsLoaded(ctx, 2)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, "sector_selections_total")
	assert.Contains(t, text, `sector="Banques"`)
	assert.Contains(t, text, "sector_transform_errors_total")
	assert.Contains(t, text, `kind="LOOKUP"`)
	assert.Contains(t, text, "sectors_loaded")
	assert.Contains(t, text, "go_goroutines")
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		m.RecordTransform(context.Background(), "x", time.Second, "PARSING")
		m.RecordExport(context.Background(), "x", "png")
		m.SetSectorsLoaded(context.Background(), 1)
	})
}
