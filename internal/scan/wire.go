package scan

import (
	"fmt"
	"sigscan/internal/config"
	"sigscan/pkg/blocklist"
	"sigscan/pkg/digest"
	"sigscan/pkg/metrics"
	"sigscan/pkg/walker"

	"github.com/go-git/go-billy/v5"
	"go.opentelemetry.io/otel/metric"
)

// NewFromConfig assembles a Scanner reading both scanned trees and blocklist
// sources from fs. mp may be nil.
func NewFromConfig(fs billy.Filesystem, cfg *config.Config, mp metric.MeterProvider) (Scanner, error) {
	engine, err := NewEngine(fs, cfg)
	if err != nil {
		return nil, err
	}

	var m *metrics.ScanMetrics
	if mp != nil {
		if m, err = metrics.NewScanMetrics(mp); err != nil {
			return nil, fmt.Errorf("could not create scan metrics: %w", err)
		}
	}

	cache := blocklist.NewCache(blocklist.FileLoader(fs), blocklist.CacheOptions{HexLen: engine.HexLen()})
	w := walker.New(fs, walker.Options{
		Extensions:      cfg.Scanner.Extensions,
		CaseInsensitive: cfg.Scanner.CaseInsensitiveExtensions,
	})

	return New(cache, engine, w, m, NewOptions(cfg))
}

// NewEngine builds the digest engine described by cfg.
func NewEngine(fs billy.Filesystem, cfg *config.Config) (*digest.Engine, error) {
	engine, err := digest.New(fs, digest.Options{
		Algorithm:  digest.Algorithm(cfg.Scanner.Algorithm),
		BufferSize: cfg.Scanner.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create digest engine: %w", err)
	}

	return engine, nil
}
