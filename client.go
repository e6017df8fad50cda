package tauri

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tauri-wasm/tauri-go/application/codec"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

const tracerName = "github.com/tauri-wasm/tauri-go"

// Client reaches the host through a ports.HostTransport. A Client holds no
// per-call state and is safe for concurrent use.
type Client struct {
	transport ports.HostTransport
	codec     ports.Codec
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	transport      ports.HostTransport
	codec          ports.Codec
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		codec:  codec.JSON{},
		logger: slog.Default(),
	}
}

// WithTransport sets the host transport. The default talks to the webview
// host through syscall/js, or to the wasip1 host imports in wasip1 builds.
func WithTransport(t ports.HostTransport) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}

// WithCodec sets the codec used for arguments, results and event payloads.
// codec.Raw restricts the client to json.RawMessage values.
func WithCodec(cd ports.Codec) Option {
	return func(c *clientConfig) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// WithLogger sets the logger for client diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the provider for client spans. The global provider
// is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracerProvider = tp
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.transport == nil {
		cfg.transport = defaultTransport()
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	return &Client{
		transport: cfg.transport,
		codec:     cfg.codec,
		logger:    cfg.logger,
		tracer:    cfg.tracerProvider.Tracer(tracerName),
	}
}

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// Default returns the client used by the package-level functions, creating
// it on first use.
func Default() *Client {
	defaultMu.RLock()
	c := defaultClient
	defaultMu.RUnlock()
	if c != nil {
		return c
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New()
	}
	return defaultClient
}

// SetDefault replaces the client used by the package-level functions.
// Passing nil restores a fresh default on next use.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

func orDefault(c *Client) *Client {
	if c == nil {
		return Default()
	}
	return c
}
