package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
		ok     bool
	}{
		{name: "zero", want: 0, ok: true},
		{name: "buffer", ptr: 0x1000, length: 42, want: 0x000010000000002A, ok: true},
		{name: "max", ptr: 0xFFFFFFFF, length: 0xFFFFFFFF, want: 0xFFFFFFFFFFFFFFFF, ok: true},
		{name: "pointer without bytes", ptr: 0x10, want: 0x0000001000000000, ok: true},
		{name: "bytes at null", length: 3, want: 3, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := Pack(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed)

			ptr, length, ok := Unpack(packed)
			assert.Equal(t, tt.ptr, ptr)
			assert.Equal(t, tt.length, length)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func BenchmarkPackUnpack(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p, l, _ := Unpack(Pack(uint32(i), 128)) //nolint:gosec // G115: benchmark counter
		_, _ = p, l
	}
}
