package hostkit

import (
	"context"
	"encoding/json"
)

// CommandFunc is a typed command implementation. Returning an error rejects
// the invocation; use RejectWith for structured rejection reasons.
type CommandFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// ByteHandler accepts the raw JSON arguments and returns the raw JSON result.
// An empty payload means the guest sent no arguments. Binary bodies arrive as
// a JSON array of byte values.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed CommandFunc into a ByteHandler.
// It handles the JSON unmarshalling of the arguments and marshalling of the
// result. Arguments that do not decode reject the call.
//
// Usage:
//
//	greet := hostkit.NewJSONHandler(func(ctx context.Context, args GreetArgs) (string, error) {
//	    return "Hello, " + args.Name, nil
//	})
func NewJSONHandler[Req any, Resp any](fn CommandFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, Rejectf("invalid args for command %s: %v", CommandName(ctx), err)
			}
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, Rejectf("failed to serialize response of %s: %v", CommandName(ctx), err)
		}

		return respBytes, nil
	}
}

// Resolve returns a handler that always resolves with value.
func Resolve(value any) ByteHandler {
	data, err := json.Marshal(value)
	return func(context.Context, []byte) ([]byte, error) {
		if err != nil {
			return nil, Rejectf("failed to serialize response: %v", err)
		}
		return data, nil
	}
}

// Fail returns a handler that always rejects with err.
func Fail(err error) ByteHandler {
	return func(context.Context, []byte) ([]byte, error) {
		return nil, err
	}
}
