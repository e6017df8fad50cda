package tauri

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tauri-wasm/tauri-go/application/validation"
	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
)

// Bytes is sent to the host as a raw binary body instead of a JSON document.
type Bytes []byte

// InvokeOption configures a single invocation.
type InvokeOption func(*invokeConfig)

type invokeConfig struct {
	headers map[string]string
}

// WithHeaders adds request headers to the invocation. Later values win.
func WithHeaders(headers map[string]string) InvokeOption {
	return func(c *invokeConfig) {
		if len(headers) == 0 {
			return
		}
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		maps.Copy(c.headers, headers)
	}
}

// WithHeader adds a single request header.
func WithHeader(key, value string) InvokeOption {
	return WithHeaders(map[string]string{key: value})
}

// Invoke calls a host command and waits for it to settle.
//
// args may be nil (no payload), a json.RawMessage (sent unchanged), Bytes
// (binary body) or any value the client's codec can encode. A resolution is
// returned exactly as the host produced it. A rejection is returned as an
// *errors.HostError, a missing host as an *errors.EnvironmentError. There is
// no retry and no timeout beyond ctx.
func (c *Client) Invoke(ctx context.Context, cmd string, args any, opts ...InvokeOption) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "tauri.invoke",
		trace.WithAttributes(attribute.String("tauri.command", cmd)),
	)
	defer span.End()

	result, err := c.invoke(ctx, cmd, args, opts)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (c *Client) invoke(ctx context.Context, cmd string, args any, opts []InvokeOption) (json.RawMessage, error) {
	var cfg invokeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req := entities.InvokeRequest{Command: cmd, Headers: cfg.headers}
	if b, ok := args.(Bytes); ok {
		req.Binary = []byte(b)
		if req.Binary == nil {
			req.Binary = []byte{}
		}
	} else {
		raw, err := c.encode(args)
		if err != nil {
			return nil, err
		}
		req.Args = raw
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if !c.transport.Present() {
		return nil, &domainerrors.EnvironmentError{Operation: "invoke " + cmd}
	}

	result, err := c.transport.Invoke(ctx, req)
	if err != nil {
		return nil, translate("invoke "+cmd, err)
	}
	c.logger.DebugContext(ctx, "command resolved", "command", cmd, "args", describeArgs(args), "bytes", len(result))
	return result, nil
}

// InvokeAs calls a host command and decodes the resolution into T with the
// client's codec. A nil client means Default().
func InvokeAs[T any](ctx context.Context, c *Client, cmd string, args any, opts ...InvokeOption) (T, error) {
	var out T
	c = orDefault(c)
	raw, err := c.Invoke(ctx, cmd, args, opts...)
	if err != nil {
		return out, err
	}
	if err := c.codec.Decode(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Invoke calls a host command through the default client.
func Invoke(ctx context.Context, cmd string, args any, opts ...InvokeOption) (json.RawMessage, error) {
	return Default().Invoke(ctx, cmd, args, opts...)
}

// encode turns a caller value into a marshalled value. nil and an empty
// json.RawMessage mean no payload.
func (c *Client) encode(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok && len(raw) == 0 {
		return nil, nil
	}
	return c.codec.Encode(v)
}

// translate maps transport failures onto the domain error taxonomy.
func translate(operation string, err error) error {
	var rej *entities.Rejection
	if errors.As(err, &rej) {
		return domainerrors.FromRejection(operation, rej.Reason)
	}
	var detail *entities.ErrorDetail
	if errors.As(err, &detail) {
		return domainerrors.FromErrorDetail(detail)
	}
	return err
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// describeArgs is used in debug logs only.
func describeArgs(args any) string {
	switch a := args.(type) {
	case nil:
		return "none"
	case Bytes:
		return fmt.Sprintf("%d bytes", len(a))
	case json.RawMessage:
		return "raw"
	default:
		return fmt.Sprintf("%T", a)
	}
}
