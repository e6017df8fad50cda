// Package errors provides domain-specific error types for the bridge.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrHostUnavailable is wrapped by every EnvironmentError.
var ErrHostUnavailable = stdErrors.New("host runtime not available")

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail. New error types only need to implement this
// interface without modifying ToErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	// If the error is already a *ErrorDetail (entity), use it directly.
	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	// Generic error - categorize as internal
	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// FromErrorDetail rebuilds a domain error from its wire form.
func FromErrorDetail(d *entities.ErrorDetail) error {
	if d == nil {
		return nil
	}
	switch d.Type {
	case "environment":
		return &EnvironmentError{Operation: d.Code, Reason: d.Message}
	case "host":
		return &HostError{Operation: d.Code, Message: d.Message, Data: d.Data}
	case "validation":
		return &ValidationError{Field: d.Code, Err: stdErrors.New(d.Message)}
	default:
		return d
	}
}

// EnvironmentError reports that the host runtime is missing or went away.
// It is raised before any round trip is attempted.
type EnvironmentError struct {
	Operation string
	Reason    string
}

func (e *EnvironmentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: no host runtime: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s: no host runtime", e.Operation)
}

func (e *EnvironmentError) Unwrap() error {
	return ErrHostUnavailable
}

// ToErrorDetail implements DetailedError.
func (e *EnvironmentError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("environment", e.Reason).WithCode(e.Operation)
}

// MarshalError represents a local encode/decode failure of a guest value.
// It never reaches the host.
type MarshalError struct {
	Err       error
	Operation string // "encode" or "decode"
	Type      string
}

func (e *MarshalError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s %s failed: %v", e.Operation, e.Type, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *MarshalError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *MarshalError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("marshal", e.Error()).WithCode(e.Operation)
}

// ValidationError represents a malformed request built by the caller.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ValidationError) ToErrorDetail() *entities.ErrorDetail {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return entities.NewErrorDetail("validation", msg).WithCode(e.Field)
}

// HostError is a rejection produced by the host. When the host supplied
// structured data it is kept in Data exactly as received.
type HostError struct {
	Operation string
	Message   string
	Data      json.RawMessage
}

func (e *HostError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return e.Message
}

// Structured reports whether the host attached structured data.
func (e *HostError) Structured() bool {
	return len(e.Data) > 0
}

// DecodeData unmarshals the structured rejection data into v.
func (e *HostError) DecodeData(v any) error {
	if !e.Structured() {
		return fmt.Errorf("host error carries no structured data")
	}
	return json.Unmarshal(e.Data, v)
}

// ToErrorDetail implements DetailedError.
func (e *HostError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("host", e.Message).WithCode(e.Operation).WithData(e.Data)
}

// FromRejection translates a raw rejection reason into a HostError.
//
// String reasons become the message. Objects and arrays are kept verbatim in
// Data; the message comes from a string "message" field when there is one and
// from the raw text otherwise.
func FromRejection(operation string, reason json.RawMessage) *HostError {
	trimmed := bytes.TrimSpace(reason)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &HostError{Operation: operation, Message: "host rejected the call without a reason"}
	}

	switch trimmed[0] {
	case '"':
		var msg string
		if err := json.Unmarshal(trimmed, &msg); err == nil {
			return &HostError{Operation: operation, Message: msg}
		}
	case '{':
		var obj struct {
			Message *string `json:"message"`
		}
		data := append(json.RawMessage(nil), reason...)
		if err := json.Unmarshal(trimmed, &obj); err == nil && obj.Message != nil {
			return &HostError{Operation: operation, Message: *obj.Message, Data: data}
		}
		return &HostError{Operation: operation, Message: string(trimmed), Data: data}
	case '[':
		return &HostError{Operation: operation, Message: string(trimmed), Data: append(json.RawMessage(nil), reason...)}
	}

	return &HostError{Operation: operation, Message: string(trimmed)}
}

// DecodeError reports an event delivery whose envelope or payload could not
// be decoded. It is handed to the affected subscription only.
type DecodeError struct {
	Err   error
	Event string
	Raw   json.RawMessage
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event %q failed: %v", e.Event, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("decode", e.Error()).WithCode(e.Event)
}
