package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSend = errors.New("smtp: connection refused")

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	failing := func() error { return errSend }

	for i := 0; i < 3; i++ {
		assert.Equal(t, CBClosed, cb.State())
		err := cb.Execute(failing)
		assert.ErrorIs(t, err, errSend)
	}
	assert.Equal(t, CBOpen, cb.State())

	// While open, calls fast-fail without invoking fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	require.Error(t, cb.Execute(func() error { return errSend }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errSend }))

	// One failure, success, one failure: never two consecutive, stays closed.
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(func() error { return errSend }))
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// First probe succeeds but the success threshold is 2: still half-open.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(func() error { return errSend }))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errSend }))
	assert.Equal(t, CBOpen, cb.State())
}
