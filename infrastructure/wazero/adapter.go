package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/internal/abi"
)

// Defaults for the adapter configuration.
const (
	DefaultModuleName      = "tauri_host"
	DefaultMaxRequestSize  = 1 << 20 // 1MB
	DefaultMaxQueuedEvents = 1024
)

// Names of the functions exported to the guest.
const (
	FuncIsPresent  = "is_present"
	FuncInvoke     = "invoke"
	FuncListen     = "listen"
	FuncUnlisten   = "unlisten"
	FuncPollEvents = "poll_events"
)

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives adapter diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "tauri_host").
	ModuleName string

	// MaxQueuedEvents bounds the deliveries waiting for the guest to poll.
	// Deliveries beyond it are dropped and counted.
	MaxQueuedEvents int

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "tauri_host").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithMaxQueuedEvents bounds the delivery queue.
func WithMaxQueuedEvents(n int) AdapterOption {
	return func(c *AdapterConfig) {
		if n > 0 {
			c.MaxQueuedEvents = n
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:      DefaultModuleName,
		MaxRequestSize:  DefaultMaxRequestSize,
		MaxQueuedEvents: DefaultMaxQueuedEvents,
		Logger:          slog.Default(),
	}
}

// RegisterWithRuntime exports transport to guests of runtime as a host
// module with the configured name (default: "tauri_host").
//
// Each request/response function is wrapped to:
//   - Read request bytes from guest memory using the packed i64 ptr+len format
//   - Serve the request from the transport
//   - Allocate response memory in the guest through its allocate export
//   - Write response bytes to guest memory
//   - Return packed i64 ptr+len of the response
//
// Example:
//
//	host, _ := hostkit.New(hostkit.WithCommand("greet", greet))
//	adapter, err := wazero.RegisterWithRuntime(ctx, runtime, host,
//	    wazero.WithMaxQueuedEvents(256),
//	)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, transport ports.HostTransport, opts ...AdapterOption) (*Adapter, error) {
	if transport == nil {
		return nil, fmt.Errorf("wazero: transport is required")
	}
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := newAdapter(transport, cfg)
	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = 0
			if a.transport.Present() {
				stack[0] = 1
			}
		}), nil, []api.ValueType{api.ValueTypeI32}).
		Export(FuncIsPresent)

	for _, name := range []string{FuncInvoke, FuncListen, FuncUnlisten} {
		funcName := name // capture for closure
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				a.handleCall(ctx, mod, stack, funcName)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = 0
			if data := a.poll(); data != nil {
				stack[0] = a.writeResponse(ctx, mod, data)
			}
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export(FuncPollEvents)

	// Instantiate the host module
	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// handleCall reads a packed request from guest memory, serves it and writes
// the packed response back through the guest allocator.
func (a *Adapter) handleCall(ctx context.Context, mod api.Module, stack []uint64, name string) {
	logger := a.logger.With("function", name, "guest", GetGuestName(ctx, mod))

	ptr, length, ok := abi.Unpack(stack[0])
	switch {
	case !ok:
		logger.WarnContext(ctx, "wazero: null request pointer")
		stack[0] = a.writeResponse(ctx, mod, errorResponse("validation", "null request pointer"))
		return
	case length > a.maxRequestSize:
		msg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, a.maxRequestSize)
		logger.WarnContext(ctx, "wazero: "+msg)
		stack[0] = a.writeResponse(ctx, mod, errorResponse("validation", msg))
		return
	}

	request, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.ErrorContext(ctx, "wazero: request out of guest memory bounds", "ptr", ptr, "len", length)
		stack[0] = a.writeResponse(ctx, mod, errorResponse("internal", "failed to read request from guest memory"))
		return
	}

	stack[0] = a.writeResponse(ctx, mod, a.serve(ctx, name, request))
}

// writeResponse copies data into a guest-allocated buffer. Zero means the
// guest could not take the response.
func (a *Adapter) writeResponse(ctx context.Context, mod api.Module, data []byte) uint64 {
	alloc := mod.ExportedFunction(abi.AllocateExport)
	if alloc == nil {
		a.logger.ErrorContext(ctx, "wazero: guest does not export "+abi.AllocateExport)
		return 0
	}

	results, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		a.logger.ErrorContext(ctx, "wazero: guest allocate failed", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: wasm32 pointer
	if ptr == 0 {
		a.logger.ErrorContext(ctx, "wazero: guest refused allocation", "bytes", len(data))
		return 0
	}

	if !mod.Memory().Write(ptr, data) {
		a.logger.ErrorContext(ctx, "wazero: response out of guest memory bounds", "ptr", ptr)
		return 0
	}
	return abi.Pack(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest allocation
}

func errorResponse(kind, message string) []byte {
	data, _ := json.Marshal(entities.ResponseWire{Error: entities.NewErrorDetail(kind, message)})
	return data
}
