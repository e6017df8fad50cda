package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tauri-wasm/tauri-go/internal/abi"
	"github.com/tauri-wasm/tauri-go/internal/wasmcontext"
)

func encodeContext(ctx context.Context) ([]byte, error) {
	data, err := json.Marshal(wasmcontext.ContextToWire(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to encode context: %w", err)
	}
	return data, nil
}

// callRaw writes input into guest memory and calls export with its packed
// ptr+len. The guest owns the input buffer once the call starts.
func (g *GuestInstance) callRaw(ctx context.Context, name string, input []byte) (uint64, error) {
	f := g.module.ExportedFunction(name)
	if f == nil {
		return 0, fmt.Errorf("export %q not found", name)
	}
	ctx = g.context(ctx)

	var packed uint64
	if len(input) > 0 {
		alloc := g.module.ExportedFunction(abi.AllocateExport)
		if alloc == nil {
			return 0, fmt.Errorf("guest does not export %q", abi.AllocateExport)
		}
		res, err := alloc.Call(ctx, uint64(len(input)))
		if err != nil {
			return 0, fmt.Errorf("allocate %d bytes in guest: %w", len(input), err)
		}
		if len(res) == 0 || uint32(res[0]) == 0 { //nolint:gosec // G115: wasm32 pointer
			return 0, fmt.Errorf("guest refused to allocate %d bytes", len(input))
		}
		ptr := uint32(res[0]) //nolint:gosec // G115: wasm32 pointer
		if !g.module.Memory().Write(ptr, input) {
			return 0, fmt.Errorf("input out of guest memory bounds")
		}
		packed = abi.Pack(ptr, uint32(len(input))) //nolint:gosec // G115: bounded by guest allocation
	}

	var results []uint64
	var err error
	if len(f.Definition().ParamTypes()) == 0 {
		results, err = f.Call(ctx)
	} else {
		results, err = f.Call(ctx, packed)
	}
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

// readPacked copies a guest-owned buffer and frees it in the guest.
func (g *GuestInstance) readPacked(ctx context.Context, packed uint64) ([]byte, error) {
	ptr, length, ok := abi.Unpack(packed)
	if !ok {
		return nil, fmt.Errorf("guest returned a null pointer with length %d", length)
	}
	if length == 0 {
		return nil, nil
	}
	data, ok := g.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("response out of guest memory bounds")
	}
	out := make([]byte, length)
	copy(out, data)

	if dealloc := g.module.ExportedFunction(abi.DeallocateExport); dealloc != nil {
		if _, err := dealloc.Call(g.context(ctx), uint64(ptr), uint64(length)); err != nil {
			return out, fmt.Errorf("free guest buffer: %w", err)
		}
	}
	return out, nil
}
