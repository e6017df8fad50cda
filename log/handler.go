// Package log provides structured logging (slog) that forwards guest records
// to the host log sink.
package log

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// DefaultLocation is the log target reported when a record has no source.
const DefaultLocation = "wasm"

// Handler implements slog.Handler by invoking the host's plugin:log|log
// command. Records fall back to a local text handler whenever the host is
// absent or refuses them.
type Handler struct {
	transport ports.HostTransport
	fallback  slog.Handler
	inflight  *sync.WaitGroup
	kv        map[string]string // attrs from WithAttrs, already flattened
	groups    []string
	opts      handlerConfig
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	fallback  io.Writer
	location  string
	level     slog.Level
	addSource bool
	async     bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:    slog.LevelInfo,
		location: DefaultLocation,
		fallback: os.Stderr,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level will be filtered on the guest side.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithAsync sends records without waiting for the host to acknowledge them.
// Call Flush before exiting to wait for outstanding records.
func WithAsync(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.async = enabled
	}
}

// WithLocation sets the log target reported to the host.
func WithLocation(location string) HandlerOption {
	return func(c *handlerConfig) {
		c.location = location
	}
}

// WithFallback sets where records go when the host cannot take them.
func WithFallback(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		if w != nil {
			c.fallback = w
		}
	}
}

// NewHandler creates a new Handler with the given options.
func NewHandler(transport ports.HostTransport, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{
		transport: transport,
		fallback:  slog.NewTextHandler(cfg.fallback, &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}),
		inflight:  &sync.WaitGroup{},
		opts:      cfg,
	}
}

// New returns a logger backed by a Handler.
func New(transport ports.HostTransport, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(transport, opts...))
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle forwards record to the host log sink.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if h.transport == nil || !h.transport.Present() {
		return h.fallback.Handle(ctx, record)
	}

	args := h.toLogRecord(record)
	if !h.opts.async {
		return h.send(ctx, args, record)
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		_ = h.send(context.WithoutCancel(ctx), args, record)
	}()
	return nil
}

// Flush waits for records sent with WithAsync.
func (h *Handler) Flush() {
	h.inflight.Wait()
}

func (h *Handler) send(ctx context.Context, args entities.LogRecord, record slog.Record) error {
	_, err := invokeLog(ctx, h.transport, args)
	if err != nil {
		record = record.Clone()
		record.AddAttrs(slog.String("log_error", err.Error()))
		return h.fallback.Handle(ctx, record)
	}
	return nil
}

func (h *Handler) toLogRecord(record slog.Record) entities.LogRecord {
	rec := entities.LogRecord{
		Level:    toLogLevel(record.Level),
		Message:  record.Message,
		Location: h.opts.location,
	}

	kv := maps.Clone(h.kv)
	if kv == nil {
		kv = make(map[string]string, record.NumAttrs())
	}
	prefix := groupPrefix(h.groups)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(kv, prefix, attr)
		return true // Continue iterating
	})
	if len(kv) > 0 {
		rec.KeyValues = kv
	}

	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		rec.File = frame.File
		rec.Line = frame.Line
		if frame.Function != "" {
			rec.Location = frame.Function
		}
	}
	return rec
}

// WithAttrs returns a new Handler that includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newHandler := *h
	newHandler.kv = maps.Clone(h.kv)
	if newHandler.kv == nil {
		newHandler.kv = make(map[string]string, len(attrs))
	}
	prefix := groupPrefix(h.groups)
	for _, attr := range attrs {
		flattenAttr(newHandler.kv, prefix, attr)
	}
	newHandler.fallback = h.fallback.WithAttrs(attrs)
	return &newHandler
}

// WithGroup returns a new Handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	newHandler.groups = append(slices.Clip(h.groups), name)
	newHandler.fallback = h.fallback.WithGroup(name)
	return &newHandler
}

// toLogLevel maps slog levels onto the host's five levels.
func toLogLevel(level slog.Level) entities.LogLevel {
	switch {
	case level < slog.LevelDebug:
		return entities.LogTrace
	case level < slog.LevelInfo:
		return entities.LogDebug
	case level < slog.LevelWarn:
		return entities.LogInfo
	case level < slog.LevelError:
		return entities.LogWarn
	default:
		return entities.LogError
	}
}
