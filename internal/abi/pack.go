// Package abi defines how guest and host pass buffers across the wasm
// boundary: a 32-bit pointer and a 32-bit length packed into one i64, plus
// the allocate/deallocate exports the guest provides for host-written data.
package abi

// Names of the memory exports every guest provides.
const (
	AllocateExport   = "allocate"
	DeallocateExport = "deallocate"
)

// Pack stores ptr in the high half and length in the low half.
func Pack(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// Unpack splits a packed value. ok is false for a non-empty span at the null
// pointer, which no allocator hands out.
func Unpack(packed uint64) (ptr, length uint32, ok bool) {
	ptr = uint32(packed >> 32) //nolint:gosec // G115: high half is a wasm32 pointer
	length = uint32(packed)    //nolint:gosec // G115: low half is the length
	return ptr, length, ptr != 0 || length == 0
}
