package hostkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CommandSchema holds the reflected JSON schemas of a typed command.
type CommandSchema struct {
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result"`
}

// schemaValidator compiles the args schema of a command into a handler
// wrapper that rejects non-conforming arguments.
func schemaValidator(name string, raw json.RawMessage) (Middleware, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource for %q: %w", name, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", name, err)
	}

	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if len(payload) == 0 {
				return next(ctx, payload)
			}
			var v interface{}
			if err := json.Unmarshal(payload, &v); err != nil {
				return nil, Rejectf("invalid args for command %s: %v", name, err)
			}
			if err := compiled.Validate(v); err != nil {
				return nil, RejectWith(map[string]string{
					"message": fmt.Sprintf("invalid args for command %s", name),
					"details": err.Error(),
				})
			}
			return next(ctx, payload)
		}
	}, nil
}
