// Package wasmcontext carries context.Context state across the wasip1 host
// boundary. Deadlines, cancellation and request IDs travel as
// entities.ContextWire in every host call and every event pump.
package wasmcontext

import (
	"context"
	"sync"
	"time"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

type requestIDKey struct{}

// WithRequestID tags ctx with a request ID that crosses the boundary.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ambient is the context the host supplied to the running event pump.
var ambient struct {
	sync.RWMutex
	ctx context.Context
}

// Enter installs ctx as the ambient context until the returned func runs.
func Enter(ctx context.Context) (leave func()) {
	ambient.Lock()
	prev := ambient.ctx
	ambient.ctx = ctx
	ambient.Unlock()
	return func() {
		ambient.Lock()
		ambient.ctx = prev
		ambient.Unlock()
	}
}

// Current returns the ambient context, or context.Background outside a pump.
func Current() context.Context {
	ambient.RLock()
	defer ambient.RUnlock()
	if ambient.ctx == nil {
		return context.Background()
	}
	return ambient.ctx
}

// Inherit gives ctx the ambient deadline and request ID when it has none of
// its own. Host calls made from an event handler therefore stop when the
// pump that delivered the event does.
func Inherit(ctx context.Context) (context.Context, context.CancelFunc) {
	outer := Current()
	if RequestID(ctx) == "" {
		if id := RequestID(outer); id != "" {
			ctx = WithRequestID(ctx, id)
		}
	}
	if _, has := ctx.Deadline(); !has {
		if deadline, ok := outer.Deadline(); ok {
			return context.WithDeadline(ctx, deadline)
		}
	}
	return context.WithCancel(ctx)
}

// ContextToWire snapshots ctx for a host call.
func ContextToWire(ctx context.Context) entities.ContextWire {
	wire := entities.ContextWire{
		RequestID: RequestID(ctx),
		Canceled:  ctx.Err() != nil,
	}
	if deadline, ok := ctx.Deadline(); ok {
		wire.Deadline = &deadline
		if left := time.Until(deadline); left > 0 {
			wire.TimeoutMs = left.Milliseconds()
		}
	}
	return wire
}

// WireToContext rebuilds a context under parent. An absolute deadline wins
// over a relative timeout. A nil parent means context.Background.
func WireToContext(parent context.Context, wire entities.ContextWire) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if wire.RequestID != "" {
		parent = WithRequestID(parent, wire.RequestID)
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	switch {
	case wire.Deadline != nil:
		ctx, cancel = context.WithDeadline(parent, *wire.Deadline)
	case wire.TimeoutMs > 0:
		ctx, cancel = context.WithTimeout(parent, time.Duration(wire.TimeoutMs)*time.Millisecond)
	default:
		ctx, cancel = context.WithCancel(parent)
	}
	if wire.Canceled {
		cancel()
	}
	return ctx, cancel
}
