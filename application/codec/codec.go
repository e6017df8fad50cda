// Package codec provides the marshalling layer between guest values and the
// JSON documents exchanged with the host.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// Compile-time interface compliance checks
var (
	_ ports.Codec = JSON{}
	_ ports.Codec = Raw{}
)

// ErrStructuredDisabled is returned by Raw for anything but a json.RawMessage.
var ErrStructuredDisabled = errors.New("structured values are disabled; pass json.RawMessage")

// JSON is the structured layer: any value encoding/json understands is
// accepted, and json.RawMessage passes through unchanged.
type JSON struct{}

// Encode implements ports.Codec.
func (JSON) Encode(v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return passthrough(raw)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &domainerrors.MarshalError{Operation: "encode", Type: typeName(v), Err: err}
	}
	return data, nil
}

// Decode implements ports.Codec.
func (JSON) Decode(raw json.RawMessage, v any) error {
	if dst, ok := v.(*json.RawMessage); ok {
		*dst = append((*dst)[:0], raw...)
		return nil
	}
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &domainerrors.MarshalError{Operation: "decode", Type: typeName(v), Err: err}
	}
	return nil
}

// Raw is the codec used when the structured layer is disabled. Callers pass
// and receive json.RawMessage values only.
type Raw struct{}

// Encode implements ports.Codec.
func (Raw) Encode(v any) (json.RawMessage, error) {
	raw, ok := v.(json.RawMessage)
	if !ok {
		return nil, &domainerrors.MarshalError{Operation: "encode", Type: typeName(v), Err: ErrStructuredDisabled}
	}
	return passthrough(raw)
}

// Decode implements ports.Codec.
func (Raw) Decode(raw json.RawMessage, v any) error {
	dst, ok := v.(*json.RawMessage)
	if !ok {
		return &domainerrors.MarshalError{Operation: "decode", Type: typeName(v), Err: ErrStructuredDisabled}
	}
	*dst = append((*dst)[:0], raw...)
	return nil
}

func passthrough(raw json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(raw) {
		return nil, &domainerrors.MarshalError{Operation: "encode", Type: "json.RawMessage", Err: errors.New("not a valid JSON document")}
	}
	return raw, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
