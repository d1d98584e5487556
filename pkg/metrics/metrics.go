package metrics

import (
	"context"
	"fmt"
	"sigscan/pkg/domain"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// MeterName is the instrumentation scope of the scanner instruments.
const MeterName = "sigscan"

// Scan outcomes recorded by ScanMetrics.Scan.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// ScanMetrics groups the instruments recorded by the scan orchestrator.
type ScanMetrics struct {
	files  metric.Int64Counter
	scans  metric.Int64Counter
	digest metric.Float64Histogram
}

// NewScanMetrics registers the scanner instruments on mp.
func NewScanMetrics(mp metric.MeterProvider) (*ScanMetrics, error) {
	meter := mp.Meter(MeterName)

	files, err := meter.Int64Counter("sigscan.files",
		metric.WithDescription("Files classified, by verdict."),
		metric.WithUnit("{file}"))
	if err != nil {
		return nil, fmt.Errorf("could not create files counter: %w", err)
	}

	scans, err := meter.Int64Counter("sigscan.scans",
		metric.WithDescription("Completed scan requests, by outcome."),
		metric.WithUnit("{scan}"))
	if err != nil {
		return nil, fmt.Errorf("could not create scans counter: %w", err)
	}

	digest, err := meter.Float64Histogram("sigscan.digest.duration",
		metric.WithDescription("Time spent digesting a single file."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create digest histogram: %w", err)
	}

	return &ScanMetrics{files: files, scans: scans, digest: digest}, nil
}

// File records one classified file and how long its digest took.
func (m *ScanMetrics) File(ctx context.Context, verdict domain.Verdict, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("verdict", string(verdict)))
	m.files.Add(ctx, 1, attrs)
	m.digest.Record(ctx, took.Seconds(), attrs)
}

// Scan records the outcome of one scan request.
func (m *ScanMetrics) Scan(ctx context.Context, outcome string) {
	m.scans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
