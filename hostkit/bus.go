package hostkit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

type listener struct {
	deliver ports.DeliveryFunc
	target  entities.EventTarget
	id      uint32
}

// bus fans events out to listeners synchronously, in registration order.
type bus struct {
	listeners map[string][]listener
	logger    *slog.Logger
	mu        sync.RWMutex
	nextID    atomic.Uint32
	unlistens atomic.Int64
}

func newBus(logger *slog.Logger) *bus {
	return &bus{
		listeners: make(map[string][]listener),
		logger:    logger,
	}
}

// subscribe registers deliver and returns its id and a remove function.
// A nil target listens to every emission of the event.
func (b *bus) subscribe(event string, target *entities.EventTarget, deliver ports.DeliveryFunc) (uint32, func() bool) {
	id := b.nextID.Add(1)
	l := listener{id: id, deliver: deliver, target: entities.AnyTarget()}
	if target != nil {
		l.target = *target
	}

	b.mu.Lock()
	b.listeners[event] = append(b.listeners[event], l)
	b.mu.Unlock()

	return id, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.listeners[event]
		for i, s := range subs {
			if s.id == id {
				b.listeners[event] = append(subs[:i:i], subs[i+1:]...)
				if len(b.listeners[event]) == 0 {
					delete(b.listeners, event)
				}
				return true
			}
		}
		return false
	}
}

// publish delivers the event to every matching listener and returns how many
// were reached. A nil target reaches every listener of the event.
func (b *bus) publish(ctx context.Context, target *entities.EventTarget, event string, payload json.RawMessage) int {
	emitTarget := entities.AnyTarget()
	if target != nil {
		emitTarget = *target
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	b.mu.RLock()
	subs := make([]listener, len(b.listeners[event]))
	copy(subs, b.listeners[event])
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if !emitTarget.Matches(sub.target) {
			continue
		}
		raw, err := json.Marshal(entities.Event{Event: event, Payload: payload, ID: sub.id})
		if err != nil {
			b.logger.ErrorContext(ctx, "failed to encode event", "event", event, "error", err)
			return delivered
		}
		b.dispatch(ctx, event, sub, raw)
		delivered++
	}
	return delivered
}

func (b *bus) dispatch(ctx context.Context, event string, sub listener, raw json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event listener panicked",
				"event", event,
				"listener", sub.id,
				"panic", r,
			)
		}
	}()
	sub.deliver(raw)
}

func (b *bus) count(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[event])
}
