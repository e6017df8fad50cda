package wazero

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/hostkit"
	"github.com/tauri-wasm/tauri-go/internal/abi"
)

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := defaultAdapterConfig()

	if cfg.ModuleName != "tauri_host" {
		t.Errorf("ModuleName = %q, want %q", cfg.ModuleName, "tauri_host")
	}
	if cfg.MaxRequestSize != DefaultMaxRequestSize {
		t.Errorf("MaxRequestSize = %d, want %d", cfg.MaxRequestSize, DefaultMaxRequestSize)
	}
	if cfg.MaxQueuedEvents != DefaultMaxQueuedEvents {
		t.Errorf("MaxQueuedEvents = %d, want %d", cfg.MaxQueuedEvents, DefaultMaxQueuedEvents)
	}
}

func TestWithModuleName(t *testing.T) {
	cfg := defaultAdapterConfig()
	WithModuleName("custom_module")(&cfg)

	if cfg.ModuleName != "custom_module" {
		t.Errorf("ModuleName = %q, want %q", cfg.ModuleName, "custom_module")
	}
}

func TestWithMaxRequestSize(t *testing.T) {
	cfg := defaultAdapterConfig()
	WithMaxRequestSize(2048)(&cfg)

	if cfg.MaxRequestSize != 2048 {
		t.Errorf("MaxRequestSize = %d, want %d", cfg.MaxRequestSize, 2048)
	}
}

func TestWithMaxQueuedEvents(t *testing.T) {
	cfg := defaultAdapterConfig()
	WithMaxQueuedEvents(0)(&cfg)
	assert.Equal(t, DefaultMaxQueuedEvents, cfg.MaxQueuedEvents)

	WithMaxQueuedEvents(8)(&cfg)
	assert.Equal(t, 8, cfg.MaxQueuedEvents)
}

func newTestAdapter(t *testing.T, opts ...AdapterOption) (*Adapter, *hostkit.Host) {
	t.Helper()
	host, err := hostkit.New(
		hostkit.WithHandler("hello", hostkit.Resolve("message from backend")),
		hostkit.WithHandler("fail", hostkit.Fail(hostkit.RejectWith(map[string]any{"message": "boom", "code": 7}))),
	)
	require.NoError(t, err)

	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newAdapter(host, cfg), host
}

func serveWire(t *testing.T, a *Adapter, name string, request any) entities.ResponseWire {
	t.Helper()
	data, err := json.Marshal(request)
	require.NoError(t, err)

	var resp entities.ResponseWire
	require.NoError(t, json.Unmarshal(a.serve(context.Background(), name, data), &resp))
	return resp
}

func TestAdapter_Invoke(t *testing.T) {
	tests := []struct {
		name          string
		command       string
		wantResult    string
		wantRejection string
	}{
		{
			name:       "resolves",
			command:    "hello",
			wantResult: `"message from backend"`,
		},
		{
			name:          "unknown command",
			command:       "missing_cmd",
			wantRejection: `{"message":"command not found","command":"missing_cmd"}`,
		},
		{
			name:          "structured rejection",
			command:       "fail",
			wantRejection: `{"code":7,"message":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAdapter(t)
			resp := serveWire(t, a, FuncInvoke, entities.InvokeWire{
				Request: entities.InvokeRequest{Command: tt.command},
			})

			assert.Nil(t, resp.Error)
			if tt.wantResult != "" {
				assert.JSONEq(t, tt.wantResult, string(resp.Result))
				assert.Empty(t, resp.Rejection)
				return
			}
			assert.JSONEq(t, tt.wantRejection, string(resp.Rejection))
			assert.Empty(t, resp.Result)
		})
	}
}

func TestAdapter_InvokeAbsentHost(t *testing.T) {
	a, host := newTestAdapter(t)
	host.SetPresent(false)

	resp := serveWire(t, a, FuncInvoke, entities.InvokeWire{
		Request: entities.InvokeRequest{Command: "hello"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "environment", resp.Error.Type)
	assert.Empty(t, resp.Rejection)
}

func TestAdapter_MalformedRequest(t *testing.T) {
	a, _ := newTestAdapter(t)

	for _, name := range []string{FuncInvoke, FuncListen, FuncUnlisten} {
		t.Run(name, func(t *testing.T) {
			var resp entities.ResponseWire
			require.NoError(t, json.Unmarshal(a.serve(context.Background(), name, []byte("{not json")), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "marshal", resp.Error.Type)
		})
	}
}

func TestAdapter_UnknownFunction(t *testing.T) {
	a, _ := newTestAdapter(t)

	var resp entities.ResponseWire
	require.NoError(t, json.Unmarshal(a.serve(context.Background(), "nope", nil), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal", resp.Error.Type)
	assert.Equal(t, "nope", resp.Error.Code)
}

func TestFailure_EmptyRejectionIsNull(t *testing.T) {
	resp := failure(&entities.Rejection{})
	assert.Equal(t, "null", string(resp.Rejection))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rejection":null}`, string(data))
}

func listen(t *testing.T, a *Adapter, event string, handlerID uint32) uint32 {
	t.Helper()
	resp := serveWire(t, a, FuncListen, entities.ListenWire{
		Request:   entities.ListenRequest{Event: event},
		HandlerID: handlerID,
	})
	require.Nil(t, resp.Error)
	require.Empty(t, resp.Rejection)

	var result entities.ListenResultWire
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.NotZero(t, result.EventID)
	return result.EventID
}

func TestAdapter_ListenQueuesUntilPolled(t *testing.T) {
	ctx := context.Background()
	a, host := newTestAdapter(t)
	listen(t, a, "ping", 7)

	assert.Nil(t, a.poll())

	require.NoError(t, host.Emit(ctx, "ping", 1))
	require.NoError(t, host.Emit(ctx, "ping", 2))
	assert.Equal(t, 2, a.Pending())

	var batch entities.PollResponseWire
	require.NoError(t, json.Unmarshal(a.poll(), &batch))
	require.Len(t, batch.Deliveries, 2)

	for i, d := range batch.Deliveries {
		assert.Equal(t, uint32(7), d.HandlerID)
		var ev entities.Event
		require.NoError(t, json.Unmarshal(d.Event, &ev))
		assert.Equal(t, "ping", ev.Event)
		assert.JSONEq(t, []string{"1", "2"}[i], string(ev.Payload))
	}

	assert.Zero(t, a.Pending())
	assert.Nil(t, a.poll())
}

func TestAdapter_Unlisten(t *testing.T) {
	ctx := context.Background()
	a, host := newTestAdapter(t)
	eventID := listen(t, a, "ping", 1)
	assert.Equal(t, 1, a.Listeners())

	resp := serveWire(t, a, FuncUnlisten, entities.UnlistenWire{Event: "ping", EventID: eventID})
	assert.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))
	assert.Equal(t, 1, host.UnlistenCalls())
	assert.Zero(t, a.Listeners())

	// Unknown registrations are already gone.
	resp = serveWire(t, a, FuncUnlisten, entities.UnlistenWire{Event: "ping", EventID: eventID})
	assert.Nil(t, resp.Error)
	assert.Equal(t, 1, host.UnlistenCalls())

	require.NoError(t, host.Emit(ctx, "ping", nil))
	assert.Zero(t, a.Pending())
}

func TestAdapter_QueueBound(t *testing.T) {
	ctx := context.Background()
	a, host := newTestAdapter(t, WithMaxQueuedEvents(1))
	listen(t, a, "ping", 1)

	require.NoError(t, host.Emit(ctx, "ping", 1))
	require.NoError(t, host.Emit(ctx, "ping", 2))

	assert.Equal(t, 1, a.Pending())
	assert.Equal(t, 1, a.Dropped())
}

func TestAdapter_Close(t *testing.T) {
	ctx := context.Background()
	a, host := newTestAdapter(t)
	listen(t, a, "ping", 1)
	listen(t, a, "pong", 2)
	require.NoError(t, host.Emit(ctx, "ping", nil))

	require.NoError(t, a.Close(ctx))
	assert.Equal(t, 2, host.UnlistenCalls())
	assert.Zero(t, a.Listeners())
	assert.Zero(t, a.Pending())
}

// bridgeGuest is a minimal guest that imports tauri_host and re-exports it:
//
//	(import "tauri_host" "is_present" (func (result i32)))
//	(import "tauri_host" "poll_events" (func (result i64)))
//	(import "tauri_host" "invoke" (func (param i64) (result i64)))
//	(memory (export "memory") 1)
//	(func (export "present") (result i32) call 0)
//	(func (export "poll") (result i64) call 1)
//	(func (export "call_invoke") (param i64) (result i64) local.get 0 call 2)
//	(func (export "allocate") (param i32) (result i32) i32.const 4096)
var bridgeGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// types
	0x01, 0x13, 0x04,
	0x60, 0x00, 0x01, 0x7f,
	0x60, 0x01, 0x7e, 0x01, 0x7e,
	0x60, 0x00, 0x01, 0x7e,
	0x60, 0x01, 0x7f, 0x01, 0x7f,
	// imports
	0x02, 0x46, 0x03,
	0x0a, 't', 'a', 'u', 'r', 'i', '_', 'h', 'o', 's', 't',
	0x0a, 'i', 's', '_', 'p', 'r', 'e', 's', 'e', 'n', 't', 0x00, 0x00,
	0x0a, 't', 'a', 'u', 'r', 'i', '_', 'h', 'o', 's', 't',
	0x0b, 'p', 'o', 'l', 'l', '_', 'e', 'v', 'e', 'n', 't', 's', 0x00, 0x02,
	0x0a, 't', 'a', 'u', 'r', 'i', '_', 'h', 'o', 's', 't',
	0x06, 'i', 'n', 'v', 'o', 'k', 'e', 0x00, 0x01,
	// functions
	0x03, 0x05, 0x04, 0x00, 0x02, 0x01, 0x03,
	// memory
	0x05, 0x03, 0x01, 0x00, 0x01,
	// exports
	0x07, 0x34, 0x05,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x07, 'p', 'r', 'e', 's', 'e', 'n', 't', 0x00, 0x03,
	0x04, 'p', 'o', 'l', 'l', 0x00, 0x04,
	0x0b, 'c', 'a', 'l', 'l', '_', 'i', 'n', 'v', 'o', 'k', 'e', 0x00, 0x05,
	0x08, 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x06,
	// code
	0x0a, 0x18, 0x04,
	0x04, 0x00, 0x10, 0x00, 0x0b,
	0x04, 0x00, 0x10, 0x01, 0x0b,
	0x06, 0x00, 0x20, 0x00, 0x10, 0x02, 0x0b,
	0x05, 0x00, 0x41, 0x80, 0x20, 0x0b,
}

const guestResponseAt = 4096

func callGuest(t *testing.T, ctx context.Context, mod api.Module, name string, params ...uint64) uint64 {
	t.Helper()
	fn := mod.ExportedFunction(name)
	require.NotNil(t, fn, name)
	results, err := fn.Call(ctx, params...)
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func readGuest(t *testing.T, mod api.Module, packed uint64) []byte {
	t.Helper()
	ptr, length, ok := abi.Unpack(packed)
	require.True(t, ok)
	require.Equal(t, uint32(guestResponseAt), ptr)
	data, ok := mod.Memory().Read(ptr, length)
	require.True(t, ok)
	return data
}

func TestRegisterWithRuntime(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	defer func() { _ = runtime.Close(ctx) }()

	host, err := hostkit.New(hostkit.WithHandler("hello", hostkit.Resolve("message from backend")))
	require.NoError(t, err)

	a, err := RegisterWithRuntime(ctx, runtime, host, WithMaxQueuedEvents(4))
	require.NoError(t, err)
	require.NotNil(t, runtime.Module(DefaultModuleName))

	guest, err := runtime.Instantiate(ctx, bridgeGuest)
	require.NoError(t, err)

	t.Run("is_present", func(t *testing.T) {
		assert.Equal(t, uint64(1), callGuest(t, ctx, guest, "present"))
		host.SetPresent(false)
		assert.Equal(t, uint64(0), callGuest(t, ctx, guest, "present"))
		host.SetPresent(true)
	})

	t.Run("invoke", func(t *testing.T) {
		request, err := json.Marshal(entities.InvokeWire{Request: entities.InvokeRequest{Command: "hello"}})
		require.NoError(t, err)
		const requestAt = 16
		require.True(t, guest.Memory().Write(requestAt, request))

		packed := callGuest(t, ctx, guest, "call_invoke", abi.Pack(requestAt, uint32(len(request))))

		var resp entities.ResponseWire
		require.NoError(t, json.Unmarshal(readGuest(t, guest, packed), &resp))
		assert.JSONEq(t, `"message from backend"`, string(resp.Result))
	})

	t.Run("null request pointer", func(t *testing.T) {
		packed := callGuest(t, ctx, guest, "call_invoke", abi.Pack(0, 8))

		var resp entities.ResponseWire
		require.NoError(t, json.Unmarshal(readGuest(t, guest, packed), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "validation", resp.Error.Type)
	})

	t.Run("poll_events", func(t *testing.T) {
		assert.Equal(t, uint64(0), callGuest(t, ctx, guest, "poll"))

		listen(t, a, "ping", 3)
		require.NoError(t, host.Emit(ctx, "ping", "pong"))

		var batch entities.PollResponseWire
		require.NoError(t, json.Unmarshal(readGuest(t, guest, callGuest(t, ctx, guest, "poll")), &batch))
		require.Len(t, batch.Deliveries, 1)
		assert.Equal(t, uint32(3), batch.Deliveries[0].HandlerID)
		assert.Equal(t, uint64(0), callGuest(t, ctx, guest, "poll"))
	})
}

func TestRegisterWithRuntime_NilTransport(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	defer func() { _ = runtime.Close(ctx) }()

	_, err := RegisterWithRuntime(ctx, runtime, nil)
	assert.Error(t, err)
}
