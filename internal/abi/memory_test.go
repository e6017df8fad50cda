//go:build wasip1

package abi

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

func TestWriteTake(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	packed, err := Write([]byte(`{"result":"ok"}`))
	require.NoError(t, err)
	buffers, bytes := Stats()
	assert.Equal(t, 1, buffers)
	assert.Equal(t, 15, bytes)

	assert.Equal(t, `{"result":"ok"}`, string(Take(packed)))
	buffers, bytes = Stats()
	assert.Zero(t, buffers)
	assert.Zero(t, bytes)
}

func TestWrite_Empty(t *testing.T) {
	packed, err := Write(nil)
	require.NoError(t, err)
	assert.Zero(t, packed)
	assert.Nil(t, Take(0))
}

func TestTake_Malformed(t *testing.T) {
	assert.Nil(t, Take(Pack(0, 9)))
}

func TestFree(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	packed, err := Write([]byte("abc"))
	require.NoError(t, err)
	Free(packed)
	Free(packed)
	Free(0)

	buffers, _ := Stats()
	assert.Zero(t, buffers)
}

func TestAllocate_Limit(t *testing.T) {
	t.Cleanup(func() {
		Reset()
		SetLimit(DefaultLimit)
	})
	Reset()
	SetLimit(8)
	SetLimit(0)

	assert.Zero(t, allocate(0))
	ptr := allocate(8)
	require.NotZero(t, ptr)
	assert.Zero(t, allocate(1), "over the cap")

	_, err := Write([]byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit reached")

	deallocate(ptr, 999)
	_, bytes := Stats()
	assert.Zero(t, bytes, "accounting uses the recorded size")
	assert.NotZero(t, allocate(1))
}

func TestConcurrentWrites(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			packed, err := Write([]byte("payload"))
			if err == nil {
				Take(packed)
			}
		}()
	}
	wg.Wait()

	buffers, _ := Stats()
	assert.Zero(t, buffers)
}

func BenchmarkResponseRoundTrip(b *testing.B) {
	data, err := json.Marshal(entities.ResponseWire{Result: json.RawMessage(`{"greeting":"hi"}`)})
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		packed, _ := Write(data)
		var resp entities.ResponseWire
		_ = json.Unmarshal(Take(packed), &resp)
	}
}
