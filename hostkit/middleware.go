package hostkit

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware returns a middleware that turns handler panics into
// string rejections instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = Reject(panicReason(r))
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs command invocations.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := CommandName(ctx)
			start := time.Now()
			resp, err := next(ctx, payload)
			if err != nil {
				logger.DebugContext(ctx, "command rejected", "command", name, "error", err, "duration", time.Since(start))
			} else {
				logger.DebugContext(ctx, "command resolved", "command", name, "duration", time.Since(start))
			}
			return resp, err
		}
	}
}

// TracingMiddleware returns a middleware that records a "hostkit.command"
// span per invocation. Rejections mark the span as failed.
func TracingMiddleware(tp trace.TracerProvider) Middleware {
	tracer := tp.Tracer("github.com/tauri-wasm/tauri-go/hostkit")
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := CommandName(ctx)
			spanCtx, span := tracer.Start(ctx, "hostkit.command",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("tauri.command", name),
					attribute.Int("tauri.payload_bytes", len(payload)),
				),
			)
			defer span.End()

			resp, err := next(withContext(ctx, spanCtx), payload)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			span.SetStatus(codes.Ok, "")
			return resp, nil
		}
	}
}

// withContext swaps the context under a CommandContext, keeping its command
// data and values.
func withContext(cmd, inner context.Context) context.Context {
	cc, ok := cmd.(*commandContext)
	if !ok {
		return inner
	}
	clone := *cc
	clone.Context = inner
	return &clone
}
