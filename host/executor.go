package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/hostkit"
	wazeroadapter "github.com/tauri-wasm/tauri-go/infrastructure/wazero"
)

// PumpExport is the guest export that drains queued event deliveries.
const PumpExport = "_pump_events"

// Executor manages the lifecycle of wasip1 guests.
type Executor struct {
	runtime     wazero.Runtime
	transport   ports.HostTransport
	adapter     *wazeroadapter.Adapter
	logger      *slog.Logger
	stdout      io.Writer
	stderr      io.Writer
	adapterOpts []wazeroadapter.AdapterOption
}

// NewExecutor creates a new executor with the given options.
// Without WithHost it serves an empty hostkit.Host.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	// Default host if not provided
	if e.transport == nil {
		h, err := hostkit.New(hostkit.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create default host: %w", err)
		}
		e.transport = h
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	adapterOpts := append([]wazeroadapter.AdapterOption{wazeroadapter.WithLogger(e.logger)}, e.adapterOpts...)
	adapter, err := wazeroadapter.RegisterWithRuntime(ctx, rt, e.transport, adapterOpts...)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}
	e.adapter = adapter

	return e, nil
}

// Transport returns the transport served to guests.
func (e *Executor) Transport() ports.HostTransport {
	return e.transport
}

// Adapter returns the tauri_host module adapter.
func (e *Executor) Adapter() *wazeroadapter.Adapter {
	return e.adapter
}

// Close drops guest registrations and releases the runtime.
func (e *Executor) Close(ctx context.Context) error {
	if err := e.adapter.Close(ctx); err != nil {
		e.logger.WarnContext(ctx, "failed to drop guest listeners", "error", err)
	}
	return e.runtime.Close(ctx)
}

// GuestInstance represents an instantiated guest module.
type GuestInstance struct {
	module  api.Module
	adapter *wazeroadapter.Adapter
	name    string
}

// LoadGuest instantiates a WASM module under name.
func (e *Executor) LoadGuest(ctx context.Context, name string, wasmBytes []byte) (*GuestInstance, error) {
	cfg := wazero.NewModuleConfig().WithName(name).WithStartFunctions()
	if e.stdout != nil {
		cfg = cfg.WithStdout(e.stdout)
	}
	if e.stderr != nil {
		cfg = cfg.WithStderr(e.stderr)
	}
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	g := &GuestInstance{module: mod, adapter: e.adapter, name: name}

	// Reactors export _initialize, commands export _start.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(g.context(ctx)); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return g, nil
}

// Name returns the module name of the guest.
func (g *GuestInstance) Name() string {
	return g.name
}

// Pending returns the number of deliveries waiting for the guest.
func (g *GuestInstance) Pending() int {
	return g.adapter.Pending()
}

// PumpEvents hands queued deliveries to the guest's handlers and returns how
// many were dispatched. ctx travels to the guest as the context of any host
// call a handler makes.
func (g *GuestInstance) PumpEvents(ctx context.Context) (int, error) {
	if g.module.ExportedFunction(PumpExport) == nil {
		return 0, fmt.Errorf("guest %q does not export %q", g.name, PumpExport)
	}
	if g.adapter.Pending() == 0 {
		return 0, nil
	}

	wire, err := encodeContext(ctx)
	if err != nil {
		return 0, err
	}
	results, err := g.callRaw(ctx, PumpExport, wire)
	if err != nil {
		return 0, err
	}
	return int(uint32(results)), nil //nolint:gosec // G115: _pump_events returns an i32 count
}

// Call invokes an export that takes and returns packed ptr+len byte buffers.
// A nil input passes 0. The returned bytes are copied out of guest memory.
func (g *GuestInstance) Call(ctx context.Context, export string, input []byte) ([]byte, error) {
	packed, err := g.callRaw(ctx, export, input)
	if err != nil {
		return nil, err
	}
	return g.readPacked(ctx, packed)
}

// Run calls the guest's _start export, the entry point of command modules.
// A zero exit code is not an error.
func (g *GuestInstance) Run(ctx context.Context) error {
	start := g.module.ExportedFunction("_start")
	if start == nil {
		return fmt.Errorf("guest %q does not export _start", g.name)
	}
	_, err := start.Call(g.context(ctx))
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
		return nil
	}
	return err
}

// Close releases the guest module.
func (g *GuestInstance) Close(ctx context.Context) error {
	return g.module.Close(ctx)
}

func (g *GuestInstance) context(ctx context.Context) context.Context {
	return wazeroadapter.WithGuestName(ctx, g.name)
}
