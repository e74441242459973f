package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// DefaultBalanceTolerance is the rounding tolerance of aggregate balance checks.
// Posting-time balance checks are always exact.
var DefaultBalanceTolerance = decimal.New(1, -2)

// BaseService provides common functionality for all services
type BaseService struct {
	now       func() time.Time
	tolerance decimal.Decimal
}

func newBaseService() BaseService {
	return BaseService{
		now:       func() time.Time { return time.Now().UTC() },
		tolerance: DefaultBalanceTolerance,
	}
}

// Option configures the shared settings of a service.
type Option func(*BaseService)

// WithClock overrides the clock used to date reversals and audit fields.
func WithClock(now func() time.Time) Option {
	return func(s *BaseService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBalanceTolerance overrides the tolerance of aggregate balance checks.
func WithBalanceTolerance(tolerance decimal.Decimal) Option {
	return func(s *BaseService) {
		if !tolerance.IsNegative() {
			s.tolerance = tolerance
		}
	}
}

func (s *BaseService) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// withinTolerance reports whether |a - b| < tolerance.
func (s *BaseService) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(s.tolerance)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a rejected request; business-rule rejections are not errors of the service.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("reason", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
