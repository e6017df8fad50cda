package hostkit

import (
	"fmt"
	"log/slog"

	"github.com/tauri-wasm/tauri-go/application/schema"
)

// Option configures a Host during construction.
type Option func(*builder)

// builder accumulates configuration during host construction.
type builder struct {
	handlers   map[string]ByteHandler
	schemas    map[string]CommandSchema
	logger     *slog.Logger
	logSink    *slog.Logger
	middleware []Middleware
	errors     []error
	absent     bool
	validate   bool
}

func defaultBuilder() *builder {
	return &builder{
		handlers: make(map[string]ByteHandler),
		schemas:  make(map[string]CommandSchema),
		logger:   slog.Default(),
	}
}

// addHandler registers a handler with the given name.
// Returns an error if the name is empty or already registered.
func (b *builder) addHandler(name string, handler ByteHandler) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("command %q has a nil handler", name)
	}
	if _, exists := b.handlers[name]; exists {
		return fmt.Errorf("duplicate command name: %q", name)
	}
	b.handlers[name] = handler
	return nil
}

// WithHandler registers a raw ByteHandler under the given command name.
// Use WithCommand for type-safe registration with automatic JSON handling.
func WithHandler(name string, handler ByteHandler) Option {
	return func(b *builder) {
		if err := b.addHandler(name, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithCommand registers a typed command. The argument and result schemas are
// reflected from Req and Resp and reported by Host.Schemas.
func WithCommand[Req any, Resp any](name string, fn CommandFunc[Req, Resp]) Option {
	return func(b *builder) {
		if fn == nil {
			b.errors = append(b.errors, fmt.Errorf("command %q has a nil handler", name))
			return
		}
		if err := b.addHandler(name, NewJSONHandler(fn)); err != nil {
			b.errors = append(b.errors, err)
			return
		}
		args, err := schema.GenerateSchemaFor[Req]()
		if err != nil {
			b.errors = append(b.errors, fmt.Errorf("args schema for %q: %w", name, err))
			return
		}
		result, err := schema.GenerateSchemaFor[Resp]()
		if err != nil {
			b.errors = append(b.errors, fmt.Errorf("result schema for %q: %w", name, err))
			return
		}
		b.schemas[name] = CommandSchema{Args: args, Result: result}
	}
}

// WithMiddleware adds middleware to every command.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) Option {
	return func(b *builder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithLogger sets the logger used for host diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLogSink answers the host log command by writing guest records to logger.
func WithLogSink(logger *slog.Logger) Option {
	return func(b *builder) {
		b.logSink = logger
	}
}

// WithSchemaValidation validates the arguments of commands registered with
// WithCommand against their reflected schema before the handler runs.
func WithSchemaValidation() Option {
	return func(b *builder) {
		b.validate = true
	}
}

// WithAbsent starts the host in the stopped state, as if no host runtime
// were attached. See Host.SetPresent.
func WithAbsent() Option {
	return func(b *builder) {
		b.absent = true
	}
}
