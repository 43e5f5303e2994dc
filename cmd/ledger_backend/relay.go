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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

func newRelayCmd(a *app) *cobra.Command {
	var metricsAddr string
	var once bool
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Deliver pending ledger events without serving the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.relay(cmd.Context(), metricsAddr, once)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&once, "once", false, "relay a single batch and exit")
	return cmd
}

func (a *app) relay(ctx context.Context, metricsAddr string, once bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, a.logger.With(slog.String("component", "outbox_relay")))

	dbPool, err := a.openPool(ctx)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	publisher, err := a.newPublisher()
	if err != nil {
		return err
	}
	defer a.closeQuietly("event publisher", publisher.Close)

	appMetrics := metrics.New()
	repos := pgsql.NewRepositoryProvider(dbPool)
	relay := services.NewEventRelay(repos.UnitOfWork, repos.EventRepo, publisher, services.RelayConfig{
		BatchSize:    a.cfg.OutboxBatchSize,
		MaxRetries:   a.cfg.OutboxMaxRetries,
		PollInterval: a.cfg.OutboxPollInterval,
	}, services.WithMetrics(appMetrics))

	if once {
		sent, err := relay.RelayPending(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("Relayed one batch", slog.Int("sent", sent))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relay.Run(gctx) })

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", appMetrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			a.logger.Info("Metrics server starting", slog.String("addr", metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
