package ports

import "encoding/json"

// Codec converts guest domain values to and from marshalled values.
type Codec interface {
	// Encode converts v into a JSON document.
	Encode(v any) (json.RawMessage, error)

	// Decode converts a JSON document into v, which must be a pointer.
	Decode(raw json.RawMessage, v any) error
}
