package ports

import (
	"context"
	"encoding/json"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

// DeliveryFunc receives one raw event envelope ({event, payload, id}).
// Transports call it in the order the host delivers events.
type DeliveryFunc func(raw json.RawMessage)

// UnlistenFunc drops a listener registration on the host.
type UnlistenFunc func(ctx context.Context) error

// HostTransport is the guest's view of the host runtime.
//
// Implementations report a missing host as *errors.EnvironmentError and a
// host rejection as *entities.Rejection carrying the raw reason. Both calls
// block until the host settles them or ctx is done.
type HostTransport interface {
	// Present reports whether the host runtime is reachable. It must be
	// cheap and side-effect free; it is re-evaluated on every call.
	Present() bool

	// Invoke submits a command and waits for its settlement.
	Invoke(ctx context.Context, req entities.InvokeRequest) (json.RawMessage, error)

	// Listen registers deliver for the event and returns the host's
	// deregistration function.
	Listen(ctx context.Context, req entities.ListenRequest, deliver DeliveryFunc) (UnlistenFunc, error)
}
