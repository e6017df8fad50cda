//go:build !(js && wasm)

package wasm

import (
	"context"
	"encoding/json"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// Compile-time interface compliance check
var _ ports.HostTransport = (*Transport)(nil)

const unavailable = "not running in a js/wasm webview"

// Transport stub for builds without syscall/js. The host is never present.
type Transport struct{}

// NewTransport returns a transport that reports no host.
func NewTransport(opts ...TransportOption) *Transport {
	return &Transport{}
}

func (t *Transport) Present() bool {
	return false
}

func (t *Transport) Invoke(ctx context.Context, req entities.InvokeRequest) (json.RawMessage, error) {
	return nil, &domainerrors.EnvironmentError{Operation: "invoke " + req.Command, Reason: unavailable}
}

func (t *Transport) Listen(ctx context.Context, req entities.ListenRequest, deliver ports.DeliveryFunc) (ports.UnlistenFunc, error) {
	return nil, &domainerrors.EnvironmentError{Operation: "listen " + req.Event, Reason: unavailable}
}
