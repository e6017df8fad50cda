package entities

import "encoding/json"

// InvokeRequest is a single command call. Args and Binary are mutually
// exclusive; with neither set the host receives no payload.
type InvokeRequest struct {
	Headers map[string]string `json:"headers,omitempty"`
	Command string            `json:"cmd" validate:"required"`
	Args    json.RawMessage   `json:"args,omitempty"`
	Binary  []byte            `json:"binary,omitempty" validate:"excluded_with=Args"`
}
