package host

import (
	"io"
	"log/slog"

	"github.com/tauri-wasm/tauri-go/domain/ports"
	wazeroadapter "github.com/tauri-wasm/tauri-go/infrastructure/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithHost configures the transport served to guests.
func WithHost(transport ports.HostTransport) Option {
	return func(e *Executor) {
		e.transport = transport
	}
}

// WithAdapterOptions forwards options to the tauri_host module adapter.
func WithAdapterOptions(opts ...wazeroadapter.AdapterOption) Option {
	return func(e *Executor) {
		e.adapterOpts = append(e.adapterOpts, opts...)
	}
}

// WithLogger sets the executor logger. It is also handed to the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithGuestOutput connects guest stdout and stderr. Output is discarded by default.
func WithGuestOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}
