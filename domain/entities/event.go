package entities

import "encoding/json"

// EventDescriptor is an emission request. Target is omitted from the wire
// form when nil so the host applies its default scope.
type EventDescriptor struct {
	Target  *EventTarget    `json:"target,omitempty"`
	Event   string          `json:"event" validate:"required,event_name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ListenRequest registers interest in an event, optionally scoped to a target.
type ListenRequest struct {
	Target *EventTarget `json:"target,omitempty"`
	Event  string       `json:"event" validate:"required,event_name"`
}

// Event is the envelope the host delivers to a listener.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	ID      uint32          `json:"id"`
}

// Commands the host event plugin answers to.
const (
	EmitCommand   = "plugin:event|emit"
	EmitToCommand = "plugin:event|emit_to"
)
