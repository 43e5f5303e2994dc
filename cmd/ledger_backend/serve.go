package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
	rediscache "github.com/SscSPs/ledger_engine/internal/repositories/cache/redis"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

type serveOptions struct {
	skipMigrations bool
	withRelay      bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.skipMigrations, "skip-migrations", false, "do not apply pending migrations at startup")
	cmd.Flags().BoolVar(&opts.withRelay, "relay", true, "run the outbox relay in this process")
	return cmd
}

func (a *app) serve(ctx context.Context, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.skipMigrations {
		if err := runMigrations(a.cfg, a.logger, 0); err != nil {
			return err
		}
	}

	dbPool, err := a.openPool(ctx)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	redisClient, err := a.openRedis(ctx)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer a.closeQuietly("redis client", redisClient.Close)
	}

	publisher, err := a.newPublisher()
	if err != nil {
		return err
	}
	defer a.closeQuietly("event publisher", publisher.Close)

	appMetrics := metrics.New()
	serviceContainer := services.NewServiceContainer(a.cfg, pgsql.NewRepositoryProvider(dbPool), publisher,
		services.WithMetrics(appMetrics))

	rateLimiter, err := middleware.NewRateLimiter(a.cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}
	infra := handlers.Infrastructure{
		Metrics: appMetrics,
		Limiter: rateLimiter,
	}
	if a.cfg.EnableDBCheck {
		infra.DB = dbPool
	}
	if redisClient != nil {
		infra.Idempotency = rediscache.NewIdempotencyStore(redisClient)
	}

	if a.cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(a.logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, a.cfg, serviceContainer, infra)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Server starting", slog.String("port", a.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down server", slog.Duration("timeout", a.cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if opts.withRelay {
		g.Go(func() error {
			return serviceContainer.EventRelay.Run(middleware.WithLogger(gctx, a.logger.With(slog.String("component", "outbox_relay"))))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped")
	return nil
}
