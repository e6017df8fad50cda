package hostkit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

// Reject returns an error that settles the invocation with a string rejection.
func Reject(message string) error {
	reason, err := json.Marshal(message)
	if err != nil {
		reason = []byte(`"rejected"`)
	}
	return &entities.Rejection{Reason: reason}
}

// Rejectf is Reject with fmt.Sprintf formatting.
func Rejectf(format string, args ...any) error {
	return Reject(fmt.Sprintf(format, args...))
}

// RejectWith returns an error that settles the invocation with a structured
// rejection. A json.RawMessage reason is sent exactly as given.
func RejectWith(reason any) error {
	if raw, ok := reason.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return Reject(string(raw))
		}
		return &entities.Rejection{Reason: append(json.RawMessage(nil), raw...)}
	}
	data, err := json.Marshal(reason)
	if err != nil {
		return Reject(fmt.Sprint(reason))
	}
	return &entities.Rejection{Reason: data}
}

// rejectionOf converts a handler error into the reason the guest receives.
// Plain errors become their message, as the desktop host does for
// Result<_, String> commands.
func rejectionOf(err error) *entities.Rejection {
	var rej *entities.Rejection
	if errors.As(err, &rej) {
		return rej
	}
	var out *entities.Rejection
	errors.As(Reject(err.Error()), &out)
	return out
}

func notFound(name string) *entities.Rejection {
	return &entities.Rejection{Reason: json.RawMessage(`{"message":"command not found","command":` + quote(name) + `}`)}
}

func panicReason(panicValue any) string {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return "panic: " + msg
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
