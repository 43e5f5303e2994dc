package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// MetricsRecorder receives ledger counters from the services.
type MetricsRecorder interface {
	TransactionRecorded(status string)
	OutboxEvent(result string)
}

type noopMetrics struct{}

func (noopMetrics) TransactionRecorded(string) {}
func (noopMetrics) OutboxEvent(string)         {}

// BaseService provides common functionality for all services
type BaseService struct {
	Metrics MetricsRecorder
	Clock   func() time.Time
}

func newBaseService() BaseService {
	return BaseService{Metrics: noopMetrics{}, Clock: func() time.Time { return time.Now().UTC() }}
}

// Now returns the service clock reading.
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// ServiceOption configures the shared BaseService of any service.
type ServiceOption func(*BaseService)

// WithMetrics makes the service report ledger counters to recorder.
func WithMetrics(recorder MetricsRecorder) ServiceOption {
	return func(s *BaseService) {
		if recorder != nil {
			s.Metrics = recorder
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func applyOptions(base *BaseService, options []ServiceOption) {
	for _, option := range options {
		option(base)
	}
}
