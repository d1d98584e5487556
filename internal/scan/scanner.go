// Package scan orchestrates a signature scan: it resolves the blocklist,
// walks the tree, and fans the candidate files out to a pool of workers that
// digest and classify them.
package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sigscan/internal/config"
	"sigscan/pkg/blocklist"
	"sigscan/pkg/digest"
	"sigscan/pkg/domain"
	"sigscan/pkg/logger"
	"sigscan/pkg/metrics"
	"sigscan/pkg/serrors"
	"sigscan/pkg/walker"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errInvalidPath is reported for entries whose path cannot be rendered as text.
var errInvalidPath = errors.New("path is not valid UTF-8")

// Options configure the orchestrator.
// These settings are typically derived from application configuration.
type Options struct {
	// Workers is the number of files digested concurrently. Zero or less
	// means runtime.GOMAXPROCS(0).
	Workers int
	// DefaultBlocklist is used when a request passes an empty blocklist path.
	DefaultBlocklist string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Workers:          cfg.Scanner.Workers,
		DefaultBlocklist: cfg.Scanner.BlocklistPath,
	}
}

// scanner is the concrete implementation of the Scanner interface.
type scanner struct {
	options Options
	cache   *blocklist.Cache
	engine  *digest.Engine
	walker  *walker.Walker
	metrics *metrics.ScanMetrics
	tracer  trace.Tracer
}

// New creates a Scanner. cache is owned by the returned Scanner for its whole
// lifetime; m may be nil, in which case nothing is recorded.
func New(
	cache *blocklist.Cache,
	engine *digest.Engine,
	w *walker.Walker,
	m *metrics.ScanMetrics,
	options Options) (Scanner, error) {
	if m == nil {
		var err error
		if m, err = metrics.NewScanMetrics(noop.NewMeterProvider()); err != nil {
			return nil, fmt.Errorf("could not create metrics: %w", err)
		}
	}
	if options.Workers <= 0 {
		options.Workers = runtime.GOMAXPROCS(0)
	}

	return &scanner{
		options: options,
		cache:   cache,
		engine:  engine,
		walker:  w,
		metrics: m,
		tracer:  otel.Tracer("sigscan/scan"),
	}, nil
}

// Scan runs one complete scan of root against the blocklist at blocklistPath.
//
// A blocklist failure aborts before any file is touched. Per-file failures
// become ReadError results and never abort. A worker panic aborts with
// serrors.ErrInternal and cancellation with serrors.ErrCanceled; in both
// cases no partial results are returned. Result order is unspecified.
func (s *scanner) Scan(ctx context.Context, root string, blocklistPath string) (_ []domain.Result, err error) {
	if blocklistPath == "" {
		blocklistPath = s.options.DefaultBlocklist
	}

	ctx, span := s.tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("scan.root", root),
		attribute.String("scan.blocklist", blocklistPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	ctx = logger.WithFields(ctx, zap.String("root", root), zap.String("blocklist", blocklistPath))

	results, err := s.scan(ctx, root, blocklistPath)
	switch {
	case errors.Is(err, serrors.ErrCanceled):
		s.metrics.Scan(ctx, metrics.OutcomeCanceled)

		return nil, err
	case err != nil:
		s.metrics.Scan(ctx, metrics.OutcomeFailed)

		return nil, err
	}

	s.metrics.Scan(ctx, metrics.OutcomeOK)
	summary := domain.Summarize(results)
	span.SetAttributes(
		attribute.Int("scan.clean", summary.Clean),
		attribute.Int("scan.flagged", summary.Flagged),
		attribute.Int("scan.errors", summary.Errors),
	)
	logger.Info(ctx, "scan finished",
		zap.Int("clean", summary.Clean),
		zap.Int("flagged", summary.Flagged),
		zap.Int("errors", summary.Errors))

	return results, nil
}

func (s *scanner) scan(ctx context.Context, root string, blocklistPath string) ([]domain.Result, error) {
	if blocklistPath == "" {
		return nil, serrors.With(serrors.ErrConfig, "no blocklist given")
	}

	store, err := s.cache.GetOrLoad(ctx, blocklistPath)
	if err != nil {
		if serrors.KindOf(err) == nil {
			return nil, serrors.Wrap(serrors.ErrConfig, err, "could not load blocklist")
		}

		return nil, err //nolint: wrapcheck
	}

	g, gctx := errgroup.WithContext(ctx)
	targets := s.walker.Walk(gctx, root)

	var mu sync.Mutex
	results := make([]domain.Result, 0)

	for range s.options.Workers {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error(gctx, "scan worker panicked", zap.Any("panic", p), zap.Stack("stack"))
					err = serrors.With(serrors.ErrInternal, "scan worker panicked: %v", p)
				}
			}()

			for target := range targets {
				r, err := s.classify(gctx, store, target.Path)
				if err != nil {
					return err
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}

			// the walker also stops early when the group is canceled
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, serrors.ErrInternal) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, serrors.Wrap(serrors.ErrCanceled, ctx.Err(), "scan canceled")
		}

		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not join scan workers")
	}

	return results, nil
}

// classify digests one file and matches it against store. Only cancellation
// is returned as an error; every other failure is a ReadError result.
func (s *scanner) classify(ctx context.Context, store *blocklist.Store, path string) (domain.Result, error) {
	if !utf8.ValidString(path) {
		shown := strings.ToValidUTF8(path, string(utf8.RuneError))
		logger.Debug(ctx, "skipping file with undisplayable path", zap.String("path", shown))
		s.metrics.File(ctx, domain.VerdictReadError, 0)

		return domain.ReadError(shown, errInvalidPath), nil
	}

	start := time.Now()
	sum, err := s.engine.Digest(ctx, path)
	took := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Result{}, ctx.Err()
		}
		logger.Debug(ctx, "could not digest file", zap.String("path", path), zap.Error(err))
		s.metrics.File(ctx, domain.VerdictReadError, took)

		return domain.ReadError(path, err), nil
	}

	if store.Contains(sum) {
		logger.Warn(ctx, "malware detected", zap.String("path", path), zap.String("digest", sum))
		s.metrics.File(ctx, domain.VerdictFlagged, took)

		return domain.Flagged(path, sum), nil
	}
	s.metrics.File(ctx, domain.VerdictClean, took)

	return domain.Clean(path, sum), nil
}

// ScanLines runs Scan and renders every result as a display line.
func (s *scanner) ScanLines(ctx context.Context, root string, blocklistPath string) ([]string, error) {
	results, err := s.Scan(ctx, root, blocklistPath)
	if err != nil {
		return nil, err
	}

	return domain.Lines(results), nil
}

// InvalidateBlocklist drops the cached blocklist; the next scan reads its
// source again.
func (s *scanner) InvalidateBlocklist(ctx context.Context) {
	logger.Info(ctx, "invalidating cached blocklist", zap.String("path", s.cache.Path()))
	s.cache.Invalidate()
}
