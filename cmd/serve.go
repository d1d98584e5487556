package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sigscan/internal/api"
	"sigscan/internal/api/handler/v1handler"
	"sigscan/internal/config"
	"sigscan/internal/scan"
	"sigscan/pkg/logger"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// warnUnauthenticated logs a warning when the API will accept requests
// without a bearer token.
func warnUnauthenticated(ctx context.Context, cfg *config.Config) {
	if cfg.JWT.PublicKey != "" {
		return
	}
	logger.Warn(ctx, "API authentication is disabled",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("allowedOrigin", cfg.HTTP.AllowedOrigin),
		zap.String("hint", "set jwt.publicKey to require bearer tokens"))
}

func setupServer(ctx context.Context, cfg *config.Config) (func(ctx context.Context), error) {
	mp, err := api.NewMeterProvider(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create meter provider: %w", err)
	}

	s, err := scan.NewFromConfig(newNativeFS(), cfg, mp)
	if err != nil {
		return nil, fmt.Errorf("could not create scanner: %w", err)
	}

	warnUnauthenticated(ctx, cfg)

	server, err := api.NewServer(api.Deps{Deps: v1handler.Deps{Scanner: s}}, api.NewOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("could not create webserver: %w", err)
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not stop meter provider", zap.Error(err))
		}
	}, nil
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the scan API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stopWebserver, err := setupServer(ctx, cfg)
			if err != nil {
				return err
			}

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			return nil
		},
	}

	return cmd
}
