package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/messaging"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, a.cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	a.logger.Info("Database connection pool established.")
	return pool, nil
}

// openRedis returns a nil client when Redis is not configured.
func (a *app) openRedis(ctx context.Context) (*redis.Client, error) {
	if a.cfg.RedisURL == "" {
		return nil, nil
	}
	client, err := database.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// newPublisher returns a Kafka publisher, or a log publisher when no brokers are configured.
func (a *app) newPublisher() (portssvc.EventPublisher, error) {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.logger.Warn("No Kafka brokers configured, ledger events go to the log")
		return messaging.NewLogPublisher(), nil
	}

	producer, err := messaging.NewKafkaSyncProducer(a.cfg.KafkaBrokers, messaging.WithClientID("ledger_engine"))
	if err != nil {
		return nil, err
	}
	a.logger.Info("Kafka producer connected",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.String("topic", a.cfg.KafkaTopic))
	return messaging.NewKafkaPublisher(producer, a.cfg.KafkaTopic, messaging.DefaultMaxRetries), nil
}

func (a *app) closeQuietly(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		a.logger.Error("Failed to close "+name, slog.String("error", err.Error()))
	}
}
