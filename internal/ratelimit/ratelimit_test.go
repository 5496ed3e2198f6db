package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitterPacerWaitsWithinWindow(t *testing.T) {
	pacer := NewJitterPacer(10*time.Millisecond, 30*time.Millisecond)

	start := time.Now()
	err := pacer.Wait(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestJitterPacerEqualBoundsUsesMin(t *testing.T) {
	pacer := NewJitterPacer(5*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, pacer.sampleDelay())
}

func TestJitterPacerCancelled(t *testing.T) {
	pacer := NewJitterPacer(10*time.Second, 20*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pacer.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetDelay(t *testing.T) {
	pacer := NewJitterPacer(time.Second, 2*time.Second)
	pacer.SetDelay(time.Millisecond, time.Millisecond)
	assert.Equal(t, time.Millisecond, pacer.sampleDelay())
}
