package hostkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tauri-wasm/tauri-go/application/validation"
	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// Call records one command invocation received by the host.
type Call struct {
	Headers map[string]string
	Command string
	Args    json.RawMessage
	Binary  []byte
}

// Host is an in-memory host runtime. Its command set is fixed at
// construction; listeners come and go at runtime.
type Host struct {
	handlers map[string]ByteHandler
	schemas  map[string]CommandSchema
	bus      *bus
	logger   *slog.Logger
	names    []string // sorted for consistent iteration
	calls    []Call
	listens  []entities.ListenRequest
	mu       sync.Mutex
	present  atomic.Bool
}

var _ ports.HostTransport = (*Host)(nil)

// New creates a Host with the given options.
// Returns an error if any command name is registered twice.
//
// Example usage:
//
//	host, err := hostkit.New(
//	    hostkit.WithMiddleware(hostkit.PanicRecoveryMiddleware()),
//	    hostkit.WithCommand("greet", greet),
//	    hostkit.WithHandler("hello", hostkit.Resolve("message from backend")),
//	)
func New(opts ...Option) (*Host, error) {
	b := defaultBuilder()
	for _, opt := range opts {
		opt(b)
	}

	h := &Host{
		schemas: b.schemas,
		bus:     newBus(b.logger),
		logger:  b.logger,
	}
	h.present.Store(!b.absent)

	WithHandler(entities.EmitCommand, NewJSONHandler(h.handleEmit))(b)
	WithHandler(entities.EmitToCommand, NewJSONHandler(h.handleEmitTo))(b)
	if b.logSink != nil {
		WithHandler(entities.LogCommand, NewJSONHandler(logSinkHandler(b.logSink)))(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	wrapped := make(map[string]ByteHandler, len(b.handlers))
	for name, handler := range b.handlers {
		if s, ok := b.schemas[name]; ok && b.validate {
			mw, err := schemaValidator(name, s.Args)
			if err != nil {
				return nil, err
			}
			handler = mw(handler)
		}
		// Apply middleware in reverse order so first middleware wraps outermost
		for i := len(b.middleware) - 1; i >= 0; i-- {
			handler = b.middleware[i](handler)
		}
		wrapped[name] = handler
	}

	h.handlers = wrapped
	h.names = names
	return h, nil
}

// Present reports whether the host is running.
func (h *Host) Present() bool {
	return h.present.Load()
}

// SetPresent starts or stops the host. A stopped host answers every call
// with an environment error, as if the guest ran outside the host runtime.
func (h *Host) SetPresent(present bool) {
	h.present.Store(present)
}

// Invoke dispatches a command by name. Unknown commands are rejected with
// {"message":"command not found"}.
func (h *Host) Invoke(ctx context.Context, req entities.InvokeRequest) (json.RawMessage, error) {
	if !h.Present() {
		return nil, &domainerrors.EnvironmentError{Operation: "invoke", Reason: "host runtime is not running"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.calls = append(h.calls, Call{
		Command: req.Command,
		Args:    append(json.RawMessage(nil), req.Args...),
		Binary:  append([]byte(nil), req.Binary...),
		Headers: req.Headers,
	})
	h.mu.Unlock()

	handler, ok := h.handlers[req.Command]
	if !ok {
		h.logger.DebugContext(ctx, "unknown command", "command", req.Command)
		return nil, notFound(req.Command)
	}

	payload := []byte(req.Args)
	if req.Binary != nil {
		payload = byteArray(req.Binary)
	}

	cctx := &commandContext{
		Context: ctx,
		name:    req.Command,
		headers: req.Headers,
		binary:  req.Binary != nil,
		values:  make(map[any]any),
	}
	resp, err := handler(cctx, payload)
	if err != nil {
		return nil, rejectionOf(err)
	}
	if len(resp) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(resp), nil
}

// Listen registers deliver for req.Event. The returned function removes the
// registration; every call to it is counted by UnlistenCalls.
func (h *Host) Listen(ctx context.Context, req entities.ListenRequest, deliver ports.DeliveryFunc) (ports.UnlistenFunc, error) {
	if !h.Present() {
		return nil, &domainerrors.EnvironmentError{Operation: "listen", Reason: "host runtime is not running"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deliver == nil {
		return nil, Reject("listen requires a handler")
	}
	if err := validation.Struct(req); err != nil {
		return nil, Reject(err.Error())
	}

	recorded := entities.ListenRequest{Event: req.Event}
	if req.Target != nil {
		t := *req.Target
		recorded.Target = &t
	}
	h.mu.Lock()
	h.listens = append(h.listens, recorded)
	h.mu.Unlock()

	id, remove := h.bus.subscribe(req.Event, recorded.Target, deliver)
	h.logger.DebugContext(ctx, "listener registered", "event", req.Event, "id", id)

	return func(ctx context.Context) error {
		h.bus.unlistens.Add(1)
		if !h.Present() {
			return &domainerrors.EnvironmentError{Operation: "unlisten", Reason: "host runtime is not running"}
		}
		if remove() {
			h.logger.DebugContext(ctx, "listener removed", "event", req.Event, "id", id)
		}
		return nil
	}, nil
}

// Emit broadcasts an event to every listener of it. payload is marshalled
// with encoding/json; a json.RawMessage is sent unchanged.
func (h *Host) Emit(ctx context.Context, event string, payload any) error {
	return h.emit(ctx, entities.EventDescriptor{Event: event}, payload)
}

// EmitTo sends an event to the listeners matching target.
func (h *Host) EmitTo(ctx context.Context, target entities.EventTarget, event string, payload any) error {
	return h.emit(ctx, entities.EventDescriptor{Event: event, Target: &target}, payload)
}

func (h *Host) emit(ctx context.Context, d entities.EventDescriptor, payload any) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	d.Payload = raw
	if err := validation.Struct(d); err != nil {
		return err
	}
	h.bus.publish(ctx, d.Target, d.Event, d.Payload)
	return nil
}

func (h *Host) handleEmit(ctx context.Context, d entities.EventDescriptor) (any, error) {
	if err := validation.Struct(d); err != nil {
		return nil, Reject(err.Error())
	}
	h.bus.publish(ctx, nil, d.Event, d.Payload)
	return nil, nil
}

func (h *Host) handleEmitTo(ctx context.Context, d entities.EventDescriptor) (any, error) {
	if d.Target == nil {
		return nil, Reject("emit_to requires a target")
	}
	if err := validation.Struct(d); err != nil {
		return nil, Reject(err.Error())
	}
	h.bus.publish(ctx, d.Target, d.Event, d.Payload)
	return nil, nil
}

// Has returns true if a command with the given name is registered.
func (h *Host) Has(name string) bool {
	_, ok := h.handlers[name]
	return ok
}

// Names returns a sorted list of all registered command names.
func (h *Host) Names() []string {
	result := make([]string, len(h.names))
	copy(result, h.names)
	return result
}

// Schemas returns the reflected schemas of commands registered with WithCommand.
func (h *Host) Schemas() map[string]CommandSchema {
	result := make(map[string]CommandSchema, len(h.schemas))
	for k, v := range h.schemas {
		result[k] = v
	}
	return result
}

// Calls returns the invocations received so far, oldest first.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]Call, len(h.calls))
	copy(result, h.calls)
	return result
}

// ListenRequests returns the listen requests received so far, oldest first.
func (h *Host) ListenRequests() []entities.ListenRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]entities.ListenRequest, len(h.listens))
	copy(result, h.listens)
	return result
}

// Listeners returns the number of live listeners for event.
func (h *Host) Listeners(event string) int {
	return h.bus.count(event)
}

// UnlistenCalls returns how many times any unlisten function was called.
func (h *Host) UnlistenCalls() int {
	return int(h.bus.unlistens.Load())
}

func marshalPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if !json.Valid(p) {
			return nil, &domainerrors.MarshalError{Operation: "encode", Type: "json.RawMessage", Err: errors.New("invalid JSON")}
		}
		return p, nil
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, &domainerrors.MarshalError{Operation: "encode", Type: fmt.Sprintf("%T", p), Err: err}
		}
		return raw, nil
	}
}

// byteArray renders a binary body the way the host hands it to commands:
// as a JSON array of byte values.
func byteArray(data []byte) []byte {
	out := make([]byte, 0, 2+len(data)*4)
	out = append(out, '[')
	for i, b := range data {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(b), 10)
	}
	return append(out, ']')
}
