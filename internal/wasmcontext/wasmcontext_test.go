package wasmcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Equal(t, "req-1", RequestID(WithRequestID(context.Background(), "req-1")))
}

func TestContextToWire(t *testing.T) {
	deadline := time.Now().Add(time.Minute)
	withDeadline, cancelDeadline := context.WithDeadline(context.Background(), deadline)
	defer cancelDeadline()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name         string
		ctx          context.Context
		wantID       string
		wantCanceled bool
		wantDeadline bool
	}{
		{name: "background", ctx: context.Background()},
		{name: "request id", ctx: WithRequestID(context.Background(), "req-9"), wantID: "req-9"},
		{name: "canceled", ctx: canceled, wantCanceled: true},
		{name: "deadline", ctx: withDeadline, wantDeadline: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := ContextToWire(tt.ctx)
			assert.Equal(t, tt.wantID, wire.RequestID)
			assert.Equal(t, tt.wantCanceled, wire.Canceled)
			if !tt.wantDeadline {
				assert.Nil(t, wire.Deadline)
				assert.Zero(t, wire.TimeoutMs)
				return
			}
			require.NotNil(t, wire.Deadline)
			assert.True(t, wire.Deadline.Equal(deadline))
			assert.Positive(t, wire.TimeoutMs)
		})
	}
}

func TestWireToContext(t *testing.T) {
	t.Run("deadline wins over timeout", func(t *testing.T) {
		deadline := time.Now().Add(time.Hour)
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{Deadline: &deadline, TimeoutMs: 5})
		defer cancel()
		got, ok := ctx.Deadline()
		require.True(t, ok)
		assert.True(t, got.Equal(deadline))
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{TimeoutMs: 60_000})
		defer cancel()
		got, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), got, 5*time.Second)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := WireToContext(context.Background(), entities.ContextWire{Canceled: true})
		defer cancel()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("request id and nil parent", func(t *testing.T) {
		//nolint:staticcheck // SA1012: nil parent is accepted
		ctx, cancel := WireToContext(nil, entities.ContextWire{RequestID: "req-2"})
		defer cancel()
		assert.Equal(t, "req-2", RequestID(ctx))
		assert.NoError(t, ctx.Err())
	})
}

func TestEnterCurrent(t *testing.T) {
	assert.Equal(t, context.Background(), Current())

	outer := WithRequestID(context.Background(), "outer")
	leaveOuter := Enter(outer)
	assert.Equal(t, "outer", RequestID(Current()))

	leaveInner := Enter(WithRequestID(context.Background(), "inner"))
	assert.Equal(t, "inner", RequestID(Current()))
	leaveInner()
	assert.Equal(t, "outer", RequestID(Current()))

	leaveOuter()
	assert.Equal(t, context.Background(), Current())
}

func TestInherit(t *testing.T) {
	deadline := time.Now().Add(time.Minute)
	pump, cancelPump := context.WithDeadline(WithRequestID(context.Background(), "pump"), deadline)
	defer cancelPump()
	leave := Enter(pump)
	defer leave()

	t.Run("takes ambient deadline and id", func(t *testing.T) {
		ctx, cancel := Inherit(context.Background())
		defer cancel()
		got, ok := ctx.Deadline()
		require.True(t, ok)
		assert.True(t, got.Equal(deadline))
		assert.Equal(t, "pump", RequestID(ctx))
	})

	t.Run("keeps its own", func(t *testing.T) {
		own := time.Now().Add(time.Hour)
		base, cancelBase := context.WithDeadline(WithRequestID(context.Background(), "mine"), own)
		defer cancelBase()
		ctx, cancel := Inherit(base)
		defer cancel()
		got, _ := ctx.Deadline()
		assert.True(t, got.Equal(own))
		assert.Equal(t, "mine", RequestID(ctx))
	})
}
