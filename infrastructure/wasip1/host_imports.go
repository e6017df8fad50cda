//go:build wasip1

package wasip1

// Reports whether the host runtime is attached (non-zero).
//
//go:wasmimport tauri_host is_present
func host_is_present() uint32

// Submits an InvokeWire request; returns a packed ResponseWire.
//
//go:wasmimport tauri_host invoke
func host_invoke(requestPacked uint64) uint64

// Registers a ListenWire request; returns a packed ResponseWire.
//
//go:wasmimport tauri_host listen
func host_listen(requestPacked uint64) uint64

// Drops a registration described by an UnlistenWire request.
//
//go:wasmimport tauri_host unlisten
func host_unlisten(requestPacked uint64) uint64

// Drains queued deliveries; returns a packed PollResponseWire or 0.
//
//go:wasmimport tauri_host poll_events
func host_poll_events() uint64
