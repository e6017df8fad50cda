package tauri

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tauri-wasm/tauri-go/domain/ports"
)

var errNilHandler = errors.New("handler must not be nil")

// Subscription is the handle returned by Listen.
type Subscription struct {
	unlisten  ports.UnlistenFunc
	target    *EventTarget
	logger    *slog.Logger
	event     string
	once      sync.Once
	cancelled atomic.Bool
}

// Event returns the subscribed event name.
func (s *Subscription) Event() string {
	if s == nil {
		return ""
	}
	return s.event
}

// Target returns the subscription's target, or nil when it is unscoped.
func (s *Subscription) Target() *EventTarget {
	if s == nil || s.target == nil {
		return nil
	}
	t := *s.target
	return &t
}

// Active reports whether Cancel has not been called yet.
func (s *Subscription) Active() bool {
	return s != nil && !s.cancelled.Load()
}

// Cancel stops delivery and deregisters the listener on the host.
//
// Cancel is idempotent: only the first call reaches the host, and only that
// call can return an error. No handler invocation starts after Cancel
// returns. Cancel on a nil Subscription does nothing.
func (s *Subscription) Cancel(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var err error
	s.once.Do(func() {
		s.cancelled.Store(true)
		if s.unlisten == nil {
			return
		}
		if err = s.unlisten(ctx); err != nil {
			err = translate("unlisten "+s.event, err)
			s.logger.DebugContext(ctx, "unlisten failed", "event", s.event, "error", err)
		}
	})
	return err
}
