// Package observability provides the metrics and tracing hooks the club
// service reports every operation through.
package observability

import (
	"context"
	"time"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span around one service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation's result.
type TraceSpan interface {
	End(err error)
}

// Noop satisfies MetricsRecorder and Tracer and discards everything.
type Noop struct{}

func (Noop) Observe(context.Context, string, bool, time.Duration) {}

func (Noop) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}
