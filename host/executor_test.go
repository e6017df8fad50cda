package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauri-wasm/tauri-go/hostkit"
	wazeroadapter "github.com/tauri-wasm/tauri-go/infrastructure/wazero"
)

// emptyModule is the smallest valid WASM binary: magic and version only.
var emptyModule = []byte("\x00asm\x01\x00\x00\x00")

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, e)
	if e != nil {
		assert.NotNil(t, e.Transport())
		assert.NotNil(t, e.Adapter())
		err := e.Close(ctx)
		assert.NoError(t, err)
	}
}

func TestNewExecutor_WithHost(t *testing.T) {
	ctx := context.Background()
	h, err := hostkit.New(hostkit.WithHandler("hello", hostkit.Resolve("message from backend")))
	require.NoError(t, err)

	e, err := NewExecutor(ctx,
		WithHost(h),
		WithAdapterOptions(wazeroadapter.WithMaxQueuedEvents(16)),
	)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	assert.Same(t, h, e.Transport())
}

func TestNewExecutor_DuplicateModuleName(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithAdapterOptions(
		wazeroadapter.WithModuleName("wasi_snapshot_preview1"),
	))
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestLoadGuest(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	g, err := e.LoadGuest(ctx, "app", emptyModule)
	require.NoError(t, err)
	assert.Equal(t, "app", g.Name())
	assert.Zero(t, g.Pending())

	_, err = g.Call(ctx, "run", nil)
	assert.ErrorContains(t, err, `export "run" not found`)

	_, err = g.PumpEvents(ctx)
	assert.ErrorContains(t, err, PumpExport)

	assert.ErrorContains(t, g.Run(ctx), "_start")

	assert.NoError(t, g.Close(ctx))
}

func TestLoadGuest_InvalidModule(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	_, err = e.LoadGuest(ctx, "broken", []byte("not wasm"))
	assert.ErrorContains(t, err, "failed to instantiate module")
}

func TestEncodeContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := encodeContext(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"canceled":true}`, string(data))
}
