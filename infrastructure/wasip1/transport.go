//go:build wasip1

package wasip1

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/internal/abi"
	"github.com/tauri-wasm/tauri-go/internal/wasmcontext"
)

// Compile-time interface compliance check
var _ ports.HostTransport = (*Transport)(nil)

var handlers = newHandlerTable()

// Transport implements ports.HostTransport over the tauri_host imports.
type Transport struct {
	logger *slog.Logger
}

// NewTransport creates the wasip1 transport.
func NewTransport() *Transport {
	return &Transport{logger: slog.Default()}
}

// Present asks the host whether it is attached.
func (t *Transport) Present() bool {
	return host_is_present() != 0
}

// Invoke submits a command and dispatches any deliveries it caused.
func (t *Transport) Invoke(ctx context.Context, req entities.InvokeRequest) (json.RawMessage, error) {
	ctx, cancel := wasmcontext.Inherit(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := roundTrip(host_invoke, entities.InvokeWire{
		Request: req,
		Context: wasmcontext.ContextToWire(ctx),
	})
	t.pump()
	if err != nil {
		return nil, err
	}
	return settle(resp)
}

// Listen registers deliver with the host under a fresh handler ID.
func (t *Transport) Listen(ctx context.Context, req entities.ListenRequest, deliver ports.DeliveryFunc) (ports.UnlistenFunc, error) {
	ctx, cancel := wasmcontext.Inherit(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := handlers.add(deliver)
	eventID, err := register(ctx, req, id)
	if err != nil {
		handlers.remove(id)
		return nil, err
	}
	t.pump()
	return t.unlistenFunc(req.Event, id, eventID), nil
}

func register(ctx context.Context, req entities.ListenRequest, handlerID uint32) (uint32, error) {
	resp, err := roundTrip(host_listen, entities.ListenWire{
		Request:   req,
		Context:   wasmcontext.ContextToWire(ctx),
		HandlerID: handlerID,
	})
	if err != nil {
		return 0, err
	}
	raw, err := settle(resp)
	if err != nil {
		return 0, err
	}
	var result entities.ListenResultWire
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, &domainerrors.MarshalError{Operation: "decode", Type: "ListenResultWire", Err: err}
	}
	return result.EventID, nil
}

func (t *Transport) unlistenFunc(event string, handlerID, eventID uint32) ports.UnlistenFunc {
	return func(ctx context.Context) error {
		handlers.remove(handlerID)
		ctx, cancel := wasmcontext.Inherit(ctx)
		defer cancel()
		resp, err := roundTrip(host_unlisten, entities.UnlistenWire{
			Event:   event,
			EventID: eventID,
			Context: wasmcontext.ContextToWire(ctx),
		})
		if err != nil {
			return err
		}
		_, err = settle(resp)
		return err
	}
}

func (t *Transport) pump() {
	if _, err := Pump(); err != nil {
		t.logger.Warn("dropping event batch", "error", err)
	}
}

// Pump dispatches every delivery the host has queued and returns how many
// reached a handler. Handlers that emit events are served in the same call.
func Pump() (int, error) {
	total := 0
	for {
		data := abi.Take(host_poll_events())
		if len(data) == 0 {
			return total, nil
		}
		n, err := handlers.dispatch(data)
		total += n
		if err != nil {
			return total, err
		}
	}
}

// pumpEvents lets the host push queued deliveries into an idle guest.
// contextPacked carries an optional ContextWire for handlers' host calls.
//
//go:wasmexport _pump_events
func pumpEvents(contextPacked uint64) uint32 {
	if data := abi.Take(contextPacked); len(data) > 0 {
		var wire entities.ContextWire
		if err := json.Unmarshal(data, &wire); err == nil {
			ctx, cancel := wasmcontext.WireToContext(context.Background(), wire)
			defer cancel()
			defer wasmcontext.Enter(ctx)()
		}
	}
	n, err := Pump()
	if err != nil {
		slog.Warn("dropping event batch", "error", err)
	}
	return uint32(n)
}

func roundTrip(fn func(uint64) uint64, request any) (*entities.ResponseWire, error) {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, &domainerrors.MarshalError{Operation: "encode", Type: "request", Err: err}
	}

	requestPacked, err := abi.Write(requestBytes)
	if err != nil {
		return nil, &domainerrors.MarshalError{Operation: "encode", Type: "request", Err: err}
	}
	defer abi.Free(requestPacked)

	responseBytes := abi.Take(fn(requestPacked))
	if len(responseBytes) == 0 {
		return nil, &domainerrors.EnvironmentError{Operation: "host call", Reason: "empty response from host"}
	}

	var response entities.ResponseWire
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return nil, &domainerrors.MarshalError{Operation: "decode", Type: "ResponseWire", Err: err}
	}
	return &response, nil
}
