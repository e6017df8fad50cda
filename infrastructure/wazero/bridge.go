package wazero

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/internal/wasmcontext"
)

// Adapter serves the tauri_host module from a ports.HostTransport.
//
// Deliveries produced by the transport are queued until the guest drains
// them through poll_events, so the guest is never re-entered from inside a
// host call.
type Adapter struct {
	transport      ports.HostTransport
	logger         *slog.Logger
	listeners      map[uint32]ports.UnlistenFunc
	queue          []entities.DeliveryWire
	maxQueued      int
	dropped        int
	nextEventID    uint32
	maxRequestSize uint32
	mu             sync.Mutex
}

func newAdapter(transport ports.HostTransport, cfg AdapterConfig) *Adapter {
	return &Adapter{
		transport:      transport,
		logger:         cfg.Logger,
		listeners:      make(map[uint32]ports.UnlistenFunc),
		maxQueued:      cfg.MaxQueuedEvents,
		maxRequestSize: cfg.MaxRequestSize,
	}
}

// serve answers one request/response host function. The returned bytes are
// always a JSON encoded entities.ResponseWire.
func (a *Adapter) serve(ctx context.Context, name string, request []byte) []byte {
	var resp entities.ResponseWire
	switch name {
	case FuncInvoke:
		resp = a.handleInvoke(ctx, request)
	case FuncListen:
		resp = a.handleListen(ctx, request)
	case FuncUnlisten:
		resp = a.handleUnlisten(ctx, request)
	default:
		resp = entities.ResponseWire{Error: entities.NewErrorDetail("internal", "unknown host function").WithCode(name)}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		a.logger.ErrorContext(ctx, "wazero: failed to marshal response", "function", name, "error", err)
		return errorResponse("marshal", err.Error())
	}
	return data
}

func (a *Adapter) handleInvoke(ctx context.Context, request []byte) entities.ResponseWire {
	var wire entities.InvokeWire
	if err := json.Unmarshal(request, &wire); err != nil {
		return decodeFailure("InvokeWire", err)
	}
	ctx, cancel := wasmcontext.WireToContext(ctx, wire.Context)
	defer cancel()

	result, err := a.transport.Invoke(ctx, wire.Request)
	if err != nil {
		return failure(err)
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return entities.ResponseWire{Result: result}
}

func (a *Adapter) handleListen(ctx context.Context, request []byte) entities.ResponseWire {
	var wire entities.ListenWire
	if err := json.Unmarshal(request, &wire); err != nil {
		return decodeFailure("ListenWire", err)
	}
	ctx, cancel := wasmcontext.WireToContext(ctx, wire.Context)
	defer cancel()

	handlerID := wire.HandlerID
	unlisten, err := a.transport.Listen(ctx, wire.Request, func(raw json.RawMessage) {
		a.enqueue(handlerID, raw)
	})
	if err != nil {
		return failure(err)
	}

	a.mu.Lock()
	a.nextEventID++
	eventID := a.nextEventID
	a.listeners[eventID] = unlisten
	a.mu.Unlock()

	result, _ := json.Marshal(entities.ListenResultWire{EventID: eventID})
	return entities.ResponseWire{Result: result}
}

func (a *Adapter) handleUnlisten(ctx context.Context, request []byte) entities.ResponseWire {
	var wire entities.UnlistenWire
	if err := json.Unmarshal(request, &wire); err != nil {
		return decodeFailure("UnlistenWire", err)
	}
	ctx, cancel := wasmcontext.WireToContext(ctx, wire.Context)
	defer cancel()

	a.mu.Lock()
	unlisten, ok := a.listeners[wire.EventID]
	delete(a.listeners, wire.EventID)
	a.mu.Unlock()

	// An unknown registration is already gone.
	if ok {
		if err := unlisten(ctx); err != nil {
			return failure(err)
		}
	}
	return entities.ResponseWire{Result: json.RawMessage("null")}
}

func (a *Adapter) enqueue(handlerID uint32, raw json.RawMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) >= a.maxQueued {
		a.dropped++
		a.logger.Warn("wazero: delivery queue full, dropping event", "handler_id", handlerID)
		return
	}
	a.queue = append(a.queue, entities.DeliveryWire{
		HandlerID: handlerID,
		Event:     append(json.RawMessage(nil), raw...),
	})
}

// poll drains the delivery queue. It returns nil when nothing is queued.
func (a *Adapter) poll() []byte {
	a.mu.Lock()
	pending := a.queue
	a.queue = nil
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	data, err := json.Marshal(entities.PollResponseWire{Deliveries: pending})
	if err != nil {
		a.logger.Error("wazero: failed to marshal deliveries", "count", len(pending), "error", err)
		return nil
	}
	return data
}

// Pending returns the number of deliveries waiting for the guest.
func (a *Adapter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Dropped returns the number of deliveries discarded because the queue was full.
func (a *Adapter) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Listeners returns the number of live guest registrations.
func (a *Adapter) Listeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}

// Close drops every registration the guest left behind and discards queued
// deliveries.
func (a *Adapter) Close(ctx context.Context) error {
	a.mu.Lock()
	listeners := a.listeners
	a.listeners = make(map[uint32]ports.UnlistenFunc)
	a.queue = nil
	a.mu.Unlock()

	var errs []error
	for id, unlisten := range listeners {
		if err := unlisten(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unlisten %d: %w", id, err))
		}
	}
	return stdErrors.Join(errs...)
}

// failure maps a transport error onto the wire. Rejections keep the host's
// reason verbatim; a missing reason is sent as null so the field survives.
func failure(err error) entities.ResponseWire {
	var rejection *entities.Rejection
	if stdErrors.As(err, &rejection) {
		reason := rejection.Reason
		if len(reason) == 0 {
			reason = json.RawMessage("null")
		}
		return entities.ResponseWire{Rejection: reason}
	}
	return entities.ResponseWire{Error: domainerrors.ToErrorDetail(err)}
}

func decodeFailure(wireType string, err error) entities.ResponseWire {
	return failure(&domainerrors.MarshalError{Operation: "decode", Type: wireType, Err: err})
}
