package tauri

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tauri-wasm/tauri-go/application/validation"
	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
)

// EventHandler receives one delivery. It runs on the host's callback, in
// delivery order, and must not block on host calls; start a goroutine for
// that.
type EventHandler func(Event)

// ErrorHandler receives delivery failures of a subscription. The
// subscription keeps running after it returns.
type ErrorHandler func(error)

// ListenOption configures a subscription.
type ListenOption func(*listenConfig)

type listenConfig struct {
	target  *EventTarget
	onError ErrorHandler
}

// WithTarget scopes the subscription to target.
func WithTarget(target EventTarget) ListenOption {
	return func(c *listenConfig) {
		c.target = &target
	}
}

// WithErrorHandler sets the handler for deliveries that cannot be decoded.
// By default they are logged as warnings.
func WithErrorHandler(fn ErrorHandler) ListenOption {
	return func(c *listenConfig) {
		c.onError = fn
	}
}

func (c *Client) listenConfig(event string, opts []ListenOption) listenConfig {
	cfg := listenConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.onError == nil {
		logger := c.logger
		cfg.onError = func(err error) {
			logger.Warn("dropping undecodable event", "event", event, "error", err)
		}
	}
	return cfg
}

// Listen registers handler for event and returns the subscription handle.
//
// A malformed delivery goes to the error handler and never stops the
// subscription. Deliveries arriving after Cancel returns are dropped.
func (c *Client) Listen(ctx context.Context, event string, handler EventHandler, opts ...ListenOption) (*Subscription, error) {
	ctx, span := c.tracer.Start(ctx, "tauri.listen",
		trace.WithAttributes(attribute.String("tauri.event", event)),
	)
	defer span.End()

	sub, err := c.listen(ctx, event, handler, c.listenConfig(event, opts))
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if sub.target != nil {
		span.SetAttributes(attribute.String("tauri.target", sub.target.String()))
	}
	span.SetStatus(codes.Ok, "")
	return sub, nil
}

func (c *Client) listen(ctx context.Context, event string, handler EventHandler, cfg listenConfig) (*Subscription, error) {
	if handler == nil {
		return nil, &domainerrors.ValidationError{Field: "handler", Err: errNilHandler}
	}

	req := entities.ListenRequest{Event: event, Target: cfg.target}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !c.transport.Present() {
		return nil, &domainerrors.EnvironmentError{Operation: "listen " + event}
	}

	sub := &Subscription{event: event, target: cfg.target, logger: c.logger}
	deliver := func(raw json.RawMessage) {
		if sub.cancelled.Load() {
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			cfg.onError(&domainerrors.DecodeError{Event: event, Raw: raw, Err: err})
			return
		}
		if ev.Event == "" {
			ev.Event = event
		}
		handler(ev)
	}

	unlisten, err := c.transport.Listen(ctx, req, deliver)
	if err != nil {
		return nil, translate("listen "+event, err)
	}
	sub.unlisten = unlisten
	c.logger.DebugContext(ctx, "listening", "event", event, "target", targetAttr(cfg.target))
	return sub, nil
}

// ListenAs registers a handler that receives payloads decoded into T with
// the client's codec. Payloads that fail to decode go to the error handler
// as *errors.DecodeError. A nil client means Default().
func ListenAs[T any](ctx context.Context, c *Client, event string, handler func(T), opts ...ListenOption) (*Subscription, error) {
	c = orDefault(c)
	if handler == nil {
		return nil, &domainerrors.ValidationError{Field: "handler", Err: errNilHandler}
	}
	cfg := c.listenConfig(event, opts)
	return c.Listen(ctx, event, func(ev Event) {
		var payload T
		if err := c.codec.Decode(ev.Payload, &payload); err != nil {
			cfg.onError(&domainerrors.DecodeError{Event: event, Raw: ev.Payload, Err: err})
			return
		}
		handler(payload)
	}, opts...)
}

// Listen registers handler through the default client.
func Listen(ctx context.Context, event string, handler EventHandler, opts ...ListenOption) (*Subscription, error) {
	return Default().Listen(ctx, event, handler, opts...)
}

// Emit broadcasts an event to every listener, in the guest and in the host.
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	return c.emit(ctx, entities.EventDescriptor{Event: event}, payload)
}

// EmitTo sends an event to the listeners matching target.
func (c *Client) EmitTo(ctx context.Context, target EventTarget, event string, payload any) error {
	return c.emit(ctx, entities.EventDescriptor{Event: event, Target: &target}, payload)
}

func (c *Client) emit(ctx context.Context, d entities.EventDescriptor, payload any) error {
	ctx, span := c.tracer.Start(ctx, "tauri.emit",
		trace.WithAttributes(attribute.String("tauri.event", d.Event)),
	)
	defer span.End()

	err := func() error {
		raw, err := c.encode(payload)
		if err != nil {
			return err
		}
		d.Payload = raw
		if err := validation.Struct(d); err != nil {
			return err
		}

		cmd := entities.EmitCommand
		if d.Target != nil {
			cmd = entities.EmitToCommand
			span.SetAttributes(attribute.String("tauri.target", d.Target.String()))
		}
		args, err := json.Marshal(d)
		if err != nil {
			return &domainerrors.MarshalError{Operation: "encode", Type: "EventDescriptor", Err: err}
		}
		_, err = c.Invoke(ctx, cmd, json.RawMessage(args))
		return err
	}()
	if err != nil {
		recordError(span, err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Emit broadcasts an event through the default client.
func Emit(ctx context.Context, event string, payload any) error {
	return Default().Emit(ctx, event, payload)
}

// EmitTo sends a targeted event through the default client.
func EmitTo(ctx context.Context, target EventTarget, event string, payload any) error {
	return Default().EmitTo(ctx, target, event, payload)
}

func targetAttr(t *EventTarget) slog.Value {
	if t == nil {
		return slog.StringValue("none")
	}
	return slog.StringValue(t.String())
}
