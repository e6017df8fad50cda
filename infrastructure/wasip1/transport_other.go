//go:build !wasip1

package wasip1

import (
	"context"
	"encoding/json"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// Compile-time interface compliance check
var _ ports.HostTransport = (*Transport)(nil)

const unavailable = "not running as a wasip1 guest"

// Transport stub for native builds. The host is never present.
type Transport struct{}

// NewTransport returns a transport that reports no host.
func NewTransport() *Transport {
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

// Pump has nothing to dispatch outside a wasip1 guest.
func Pump() (int, error) {
	return 0, nil
}
