//go:build js && wasm

package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"syscall/js"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// Compile-time interface compliance check
var _ ports.HostTransport = (*Transport)(nil)

// Transport implements ports.HostTransport over syscall/js.
type Transport struct {
	logger    *slog.Logger
	namespace string
}

// NewTransport creates a transport bound to the page's host globals.
func NewTransport(opts ...TransportOption) *Transport {
	cfg := defaultTransportConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Transport{logger: cfg.logger, namespace: cfg.namespace}
}

// Present reports whether globalThis.isTauri is set and truthy.
func (t *Transport) Present() bool {
	return js.Global().Get("isTauri").Truthy()
}

// Invoke calls window.__TAURI__.core.invoke and waits for the promise.
func (t *Transport) Invoke(ctx context.Context, req entities.InvokeRequest) (json.RawMessage, error) {
	core, err := t.api("core", "invoke")
	if err != nil {
		return nil, err
	}

	args := js.Undefined()
	switch {
	case req.Binary != nil:
		args = js.Global().Get("Uint8Array").New(len(req.Binary))
		js.CopyBytesToJS(args, req.Binary)
	case len(req.Args) > 0:
		if args, err = parse(req.Args); err != nil {
			return nil, err
		}
	}

	options := js.Undefined()
	if len(req.Headers) > 0 {
		headers := js.Global().Get("Object").New()
		for k, v := range req.Headers {
			headers.Set(k, v)
		}
		options = js.Global().Get("Object").New()
		options.Set("headers", headers)
	}

	promise, err := call(core, "invoke", req.Command, args, options)
	if err != nil {
		return nil, err
	}
	value, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}
	return stringify(value)
}

// Listen calls window.__TAURI__.event.listen and returns the host's unlisten
// function. deliver receives each event object serialized to JSON, in order,
// on a goroutine of its own rather than inside the JS callback.
func (t *Transport) Listen(ctx context.Context, req entities.ListenRequest, deliver ports.DeliveryFunc) (ports.UnlistenFunc, error) {
	eventAPI, err := t.api("event", "listen")
	if err != nil {
		return nil, err
	}

	options := js.Undefined()
	if req.Target != nil {
		target, err := json.Marshal(req.Target)
		if err != nil {
			return nil, &domainerrors.MarshalError{Operation: "encode", Type: "EventTarget", Err: err}
		}
		jsTarget, err := parse(target)
		if err != nil {
			return nil, err
		}
		options = js.Global().Get("Object").New()
		options.Set("target", jsTarget)
	}

	queue := newDeliveryQueue(deliver)
	callback := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		raw, err := stringify(args[0])
		if err != nil {
			t.logger.Warn("event could not be serialized", "event", req.Event, "error", err)
		}
		queue.push(raw)
		return nil
	})
	abandon := func() {
		queue.stop()
		callback.Release()
	}

	promise, err := call(eventAPI, "listen", req.Event, callback, options)
	if err != nil {
		abandon()
		return nil, err
	}
	unlisten, err := await(ctx, promise)
	if err != nil {
		abandon()
		return nil, err
	}
	if unlisten.Type() != js.TypeFunction {
		abandon()
		return nil, fmt.Errorf("listen %s: host returned %s instead of an unlisten function", req.Event, unlisten.Type())
	}

	return func(ctx context.Context) error {
		defer abandon()
		result, err := invokeFunc(unlisten)
		if err != nil {
			return err
		}
		if isThenable(result) {
			_, err = await(ctx, result)
		}
		return err
	}, nil
}

// api resolves window.<namespace>.<module> and checks that it exposes fn.
func (t *Transport) api(module, fn string) (js.Value, error) {
	root := js.Global().Get(t.namespace)
	if root.IsUndefined() || root.IsNull() {
		return js.Value{}, &domainerrors.EnvironmentError{Operation: module + "." + fn, Reason: "window." + t.namespace + " is not defined"}
	}
	mod := root.Get(module)
	if mod.IsUndefined() || mod.IsNull() || mod.Get(fn).Type() != js.TypeFunction {
		return js.Value{}, &domainerrors.EnvironmentError{Operation: module + "." + fn, Reason: fmt.Sprintf("window.%s.%s.%s is not a function", t.namespace, module, fn)}
	}
	return mod, nil
}
