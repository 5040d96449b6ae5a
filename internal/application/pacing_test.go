package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomPacerRejectsBadBounds(t *testing.T) {
	t.Parallel()

	_, err := NewRandomPacer(-time.Second, time.Second)
	assert.ErrorContains(t, err, "must not be negative")

	_, err = NewRandomPacer(9*time.Second, 4*time.Second)
	assert.ErrorContains(t, err, "exceeds max")
}

func TestRandomPacerNextStaysWithinBounds(t *testing.T) {
	t.Parallel()

	pacer, err := NewRandomPacer(4*time.Second, 9*time.Second)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		d := pacer.Next()
		assert.GreaterOrEqual(t, d, 4*time.Second)
		assert.LessOrEqual(t, d, 9*time.Second)
	}
}

func TestRandomPacerDrawsInclusiveUpperBound(t *testing.T) {
	t.Parallel()

	pacer, err := NewRandomPacer(time.Second, 2*time.Second)
	require.NoError(t, err)
	pacer.draw = func(n int64) int64 { return n - 1 }

	assert.Equal(t, 2*time.Second, pacer.Next())
}

func TestRandomPacerPauseSleepsDrawnDelay(t *testing.T) {
	t.Parallel()

	pacer, err := NewRandomPacer(3*time.Second, 3*time.Second)
	require.NoError(t, err)

	var slept time.Duration
	pacer.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	require.NoError(t, pacer.Pause(context.Background()))
	assert.Equal(t, 3*time.Second, slept)
}

func TestRandomPacerPauseReturnsOnCancel(t *testing.T) {
	t.Parallel()

	pacer, err := NewRandomPacer(time.Hour, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pacer.Pause(ctx), context.Canceled)
}
