package hostkit

import (
	"context"
)

// CommandContext wraps a standard context.Context with command-specific helpers.
// It exposes the invoked command name and the request headers, and allows
// middleware to store request-scoped values without polluting the standard
// context.
type CommandContext interface {
	context.Context

	// CommandName returns the name of the command being invoked.
	CommandName() string

	// Headers returns the headers sent with the invocation.
	Headers() map[string]string

	// Binary reports whether the payload was sent as a raw byte body.
	Binary() bool

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing CommandContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type commandContext struct {
	context.Context
	values  map[any]any
	headers map[string]string
	name    string
	binary  bool
}

// NewCommandContext creates a new CommandContext wrapping the given context.
func NewCommandContext(ctx context.Context, name string, headers map[string]string) CommandContext {
	return &commandContext{
		Context: ctx,
		name:    name,
		headers: headers,
		values:  make(map[any]any),
	}
}

func (c *commandContext) CommandName() string {
	return c.name
}

func (c *commandContext) Headers() map[string]string {
	return c.headers
}

func (c *commandContext) Binary() bool {
	return c.binary
}

func (c *commandContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *commandContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// CommandContextFrom extracts a CommandContext from a context.Context.
// If the context is already a CommandContext, it is returned directly.
func CommandContextFrom(ctx context.Context, name string) CommandContext {
	if cc, ok := ctx.(CommandContext); ok {
		return cc
	}
	return NewCommandContext(ctx, name, nil)
}

// CommandName returns the command name carried by ctx, or "unknown".
func CommandName(ctx context.Context) string {
	if cc, ok := ctx.(CommandContext); ok {
		return cc.CommandName()
	}
	return "unknown"
}
