package entities

import (
	"encoding/json"
	"fmt"
)

// ErrorDetail provides structured error information.
// Used as the wire error format of the wasip1 host ABI.
// Error Types: "environment", "marshal", "validation", "host", "decode", "internal"
type ErrorDetail struct {
	// Wrapped contains a wrapped error for error chains.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// Data is structured detail supplied by the host, kept verbatim.
	Data json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithCode returns the ErrorDetail with the given code attached.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// WithData returns the ErrorDetail with the given structured data attached.
func (e *ErrorDetail) WithData(data json.RawMessage) *ErrorDetail {
	e.Data = data
	return e
}

// Rejection is returned by a transport when the host settled a call by
// rejecting it. Reason is the rejection value exactly as the host produced it.
type Rejection struct {
	Reason json.RawMessage
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("host rejected call: %s", r.Reason)
}
