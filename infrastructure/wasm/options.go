// Package wasm provides the transport that reaches a Tauri host from Go code
// running inside the host's webview.
package wasm

import "log/slog"

// DefaultNamespace is the global object the host injects into the webview.
const DefaultNamespace = "__TAURI__"

// TransportOption configures a Transport.
type TransportOption func(*transportConfig)

type transportConfig struct {
	logger    *slog.Logger
	namespace string
}

func defaultTransportConfig() transportConfig {
	return transportConfig{
		logger:    slog.Default(),
		namespace: DefaultNamespace,
	}
}

// WithLogger sets the logger for transport diagnostics.
func WithLogger(logger *slog.Logger) TransportOption {
	return func(c *transportConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNamespace sets the name of the host global that carries the core and
// event APIs.
func WithNamespace(name string) TransportOption {
	return func(c *transportConfig) {
		if name != "" {
			c.namespace = name
		}
	}
}
