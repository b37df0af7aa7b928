package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStartsClosedAndAllows(t *testing.T) {
	b := New(Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})
	assert.Equal(t, Closed, b.GetState())
	assert.True(t, b.Allow())
}

func TestBreakerOpensAfterFailureThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, SuccessThreshold: 1, Timeout: time.Minute})

	b.Record(false)
	b.Record(false)
	assert.Equal(t, Closed, b.GetState())

	b.Record(false)
	assert.Equal(t, Open, b.GetState())
	assert.False(t, b.Allow())
}

func TestBreakerMovesToHalfOpenAfterTimeout(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond})

	b.Record(false)
	require.Equal(t, Open, b.GetState())
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, HalfOpen, b.GetState())
}

func TestBreakerClosesAfterSuccessThresholdInHalfOpen(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	b.Record(false)
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Allow()) // transitions to half-open

	b.Record(true)
	assert.Equal(t, HalfOpen, b.GetState())

	b.Record(true)
	assert.Equal(t, Closed, b.GetState())
}

func TestBreakerReopensOnFailureInHalfOpen(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	b.Record(false)
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Allow())

	b.Record(false)
	assert.Equal(t, Open, b.GetState())
}

func TestBreakerResetReturnsToClosed(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute})

	b.Record(false)
	require.Equal(t, Open, b.GetState())

	b.Reset()
	assert.Equal(t, Closed, b.GetState())
	assert.True(t, b.Allow())
}

func TestErrorMessageNamesState(t *testing.T) {
	err := &Error{State: Open}
	assert.Contains(t, err.Error(), "OPEN")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", Closed.String())
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "HALF_OPEN", HalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}
