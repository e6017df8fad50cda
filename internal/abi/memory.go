//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultLimit caps the bytes the guest keeps pinned for in-flight buffers.
const DefaultLimit = 64 << 20

// arena keeps every buffer handed across the boundary reachable until it is
// freed, so the Go collector never reclaims memory the host still reads.
type arena struct {
	mu     sync.Mutex
	live   map[uint32][]byte
	pinned int
	limit  int
}

var guest = &arena{live: make(map[uint32][]byte), limit: DefaultLimit}

func (a *arena) alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pinned+int(size) > a.limit {
		return 0
	}
	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0]))) //nolint:gosec // G103,G115: wasm32 linear memory address
	a.live[ptr] = buf
	a.pinned += len(buf)
	return ptr
}

// free releases ptr. Unknown pointers are ignored and the accounting uses
// the recorded size, not the caller's.
func (a *arena) free(ptr uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.live[ptr]
	if !ok {
		return
	}
	delete(a.live, ptr)
	a.pinned -= len(buf)
}

func (a *arena) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.live)
	a.pinned = 0
}

//go:wasmexport allocate
func allocate(size uint32) uint32 {
	return guest.alloc(size)
}

//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	guest.free(ptr)
}

// SetLimit changes the pinning cap. Non-positive values are ignored.
func SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	guest.mu.Lock()
	guest.limit = limit
	guest.mu.Unlock()
}

// Stats reports the live buffer count and the bytes they pin.
func Stats() (buffers, bytes int) {
	guest.mu.Lock()
	defer guest.mu.Unlock()
	return len(guest.live), guest.pinned
}

// Reset forgets every pinned buffer.
func Reset() {
	guest.reset()
}

// Write copies data into a fresh pinned buffer for the host to read.
// Empty data packs to zero.
func Write(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	ptr := guest.alloc(uint32(len(data))) //nolint:gosec // G115: bounded by the arena limit
	if ptr == 0 {
		return 0, fmt.Errorf("abi: cannot pin %d bytes: limit reached", len(data))
	}
	copy(view(ptr, uint32(len(data))), data) //nolint:gosec // G115: bounded by the arena limit
	return Pack(ptr, uint32(len(data))), nil  //nolint:gosec // G115: bounded by the arena limit
}

// Free releases the buffer behind packed.
func Free(packed uint64) {
	if ptr, _, ok := Unpack(packed); ok && ptr != 0 {
		guest.free(ptr)
	}
}

// Take copies the bytes behind a host-written packed value and frees the
// buffer. Zero and malformed values yield nil.
func Take(packed uint64) []byte {
	ptr, length, ok := Unpack(packed)
	if !ok || ptr == 0 || length == 0 {
		return nil
	}
	out := make([]byte, length)
	copy(out, view(ptr, length))
	guest.free(ptr)
	return out
}

func view(ptr, length uint32) []byte {
	//nolint:gosec // G103: wasm32 linear memory access
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}
