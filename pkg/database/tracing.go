package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/tracing"
)

type slowLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueries atomic.Pointer[slowLog]

// SetSlowQueryLogging logs store operations that take at least threshold at
// warn on logger. A zero threshold or nil logger turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowLog{threshold: threshold, logger: logger})
}

// TraceOp starts a client span for one store operation against system
// ("redis", "mongodb", "file") and returns a func that ends it:
//
//	ctx, end := database.TraceOp(ctx, "redis", "GET", "cart")
//	defer func() { end(err) }()
func TraceOp(ctx context.Context, system, operation, target string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.Tracer("database").Start(ctx, system+" "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("db.collection", target),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		slow := slowQueries.Load()
		if slow == nil {
			return
		}
		elapsed := time.Since(start)
		if elapsed < slow.threshold {
			return
		}
		attrs := []any{
			slog.String("system", system),
			slog.String("operation", operation),
			slog.String("collection", target),
			slog.Duration("duration", elapsed),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		slow.logger.WarnContext(ctx, "slow store operation", attrs...)
	}
}
