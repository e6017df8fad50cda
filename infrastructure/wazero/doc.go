// Package wazero serves a ports.HostTransport to wasip1 guests running in the
// wazero runtime.
//
// The adapter exports the tauri_host module the guest transport imports:
//
//   - is_present() i32
//   - invoke(i64) i64, listen(i64) i64, unlisten(i64) i64
//   - poll_events() i64
//
// Requests and responses are JSON documents in guest memory addressed by a
// packed i64 (pointer in the upper 32 bits, length in the lower 32 bits).
// Responses are written into memory obtained from the guest's "allocate"
// export. Event deliveries are queued until the guest polls for them.
//
// # Basic Usage
//
//	host, err := hostkit.New(hostkit.WithCommand("greet", greet))
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)
//
//	adapter, err := wazeroadapter.RegisterWithRuntime(ctx, runtime, host)
package wazero
