package metrics_test

import (
	"context"
	"sigscan/pkg/domain"
	"sigscan/pkg/metrics"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestScanMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	m, err := metrics.NewScanMetrics(mp)
	require.NoError(t, err)

	m.File(ctx, domain.VerdictClean, 2*time.Millisecond)
	m.File(ctx, domain.VerdictClean, 3*time.Millisecond)
	m.File(ctx, domain.VerdictFlagged, time.Millisecond)
	m.Scan(ctx, metrics.OutcomeOK)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Equal(t, metrics.MeterName, rm.ScopeMetrics[0].Scope.Name)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	files, ok := byName["sigscan.files"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range files.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("verdict"))
		counts[v.AsString()] = dp.Value
	}
	require.Equal(t, map[string]int64{"CLEAN": 2, "FLAGGED": 1}, counts)

	scans, ok := byName["sigscan.scans"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, scans.DataPoints, 1)
	require.EqualValues(t, 1, scans.DataPoints[0].Value)

	hist, ok := byName["sigscan.digest.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)
	for _, dp := range hist.DataPoints {
		require.Equal(t, metrics.DefaultBuckets, dp.Bounds)
	}
}

func TestScanMetrics_Noop(t *testing.T) {
	m, err := metrics.NewScanMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	m.File(context.Background(), domain.VerdictReadError, time.Second)
	m.Scan(context.Background(), metrics.OutcomeFailed)
}
