package entities

import (
	"encoding/json"
	"time"
)

// ContextWire is the JSON wire format for context.Context propagation.
type ContextWire struct {
	Deadline  *time.Time `json:"deadline,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	TimeoutMs int64      `json:"timeout_ms,omitempty"`
	Canceled  bool       `json:"canceled,omitempty"`
}

// InvokeWire is the wasip1 ABI request for a command call.
type InvokeWire struct {
	Request InvokeRequest `json:"request"`
	Context ContextWire   `json:"context"`
}

// ListenWire is the wasip1 ABI request for an event registration.
// HandlerID is chosen by the guest and echoed back in every delivery.
type ListenWire struct {
	Request   ListenRequest `json:"request"`
	Context   ContextWire   `json:"context"`
	HandlerID uint32        `json:"handler_id"`
}

// UnlistenWire is the wasip1 ABI request to drop a registration.
type UnlistenWire struct {
	Event   string      `json:"event"`
	Context ContextWire `json:"context"`
	EventID uint32      `json:"event_id"`
}

// ListenResultWire is the Result of a successful ListenWire call.
type ListenResultWire struct {
	EventID uint32 `json:"event_id"`
}

// ResponseWire is the wasip1 ABI response to every guest request.
// Exactly one of Result, Rejection or Error is meaningful.
type ResponseWire struct {
	Error     *ErrorDetail    `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Rejection json.RawMessage `json:"rejection,omitempty"`
}

// DeliveryWire carries one queued event envelope to a guest handler.
type DeliveryWire struct {
	Event     json.RawMessage `json:"event"`
	HandlerID uint32          `json:"handler_id"`
}

// PollResponseWire is returned when the guest drains queued deliveries.
type PollResponseWire struct {
	Deliveries []DeliveryWire `json:"deliveries,omitempty"`
}
