// Package testutil provides common test utilities and assertions for client tests
package testutil

import (
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
	"github.com/tauri-wasm/tauri-go/hostkit"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// RequireHostError asserts that err is a host rejection and returns it.
func RequireHostError(t *testing.T, err error) *domainerrors.HostError {
	t.Helper()
	var hostErr *domainerrors.HostError
	require.True(t, stderrors.As(err, &hostErr), "expected *errors.HostError, got %T: %v", err, err)
	return hostErr
}

// RequireValidationError asserts that err is a local validation failure and returns it.
func RequireValidationError(t *testing.T, err error) *domainerrors.ValidationError {
	t.Helper()
	var validationErr *domainerrors.ValidationError
	require.True(t, stderrors.As(err, &validationErr), "expected *errors.ValidationError, got %T: %v", err, err)
	return validationErr
}

// RequireEnvironmentError asserts that err reports a missing host.
func RequireEnvironmentError(t *testing.T, err error) *domainerrors.EnvironmentError {
	t.Helper()
	var envErr *domainerrors.EnvironmentError
	require.True(t, stderrors.As(err, &envErr), "expected *errors.EnvironmentError, got %T: %v", err, err)
	assert.ErrorIs(t, err, domainerrors.ErrHostUnavailable)
	return envErr
}

// NewHost builds an in-memory host or fails the test.
func NewHost(t *testing.T, opts ...hostkit.Option) *hostkit.Host {
	t.Helper()
	host, err := hostkit.New(opts...)
	require.NoError(t, err)
	return host
}

// Recorder collects values handed to a callback.
type Recorder[T any] struct {
	items []T
	mu    sync.Mutex
}

// Record appends v. Its method value is usable as a handler.
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, v)
}

// Items returns a copy of everything recorded so far.
func (r *Recorder[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
