package clock

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachableDefaultsToZero(t *testing.T) {
	a := NewAttachable()
	assert.False(t, a.Attached())
	assert.Equal(t, 0.0, a.Seconds())
}

func TestAttachableFollowsAttachedClock(t *testing.T) {
	a := NewAttachable()
	m := NewManual(12.5)

	a.Attach(m)
	assert.True(t, a.Attached())
	assert.Equal(t, 12.5, a.Seconds())

	m.Advance(500 * time.Millisecond)
	assert.InDelta(t, 13.0, a.Seconds(), 1e-9)

	a.Detach()
	assert.Equal(t, 0.0, a.Seconds())

	a.Attach(m)
	a.Attach(nil)
	assert.False(t, a.Attached())
}

func TestAttachableSanitizesForeignValues(t *testing.T) {
	a := NewAttachable()
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3} {
		a.Attach(PositionFunc(func() float64 { return v }))
		assert.Equal(t, 0.0, a.Seconds(), "value %v", v)
	}
}

func TestManualSetAllowsBackwardSeek(t *testing.T) {
	m := NewManual(0)
	m.Set(40)
	assert.Equal(t, 40.0, m.Seconds())
	m.Set(10)
	assert.Equal(t, 10.0, m.Seconds())
}

func TestAttachWhenReady(t *testing.T) {
	a := NewAttachable()
	var calls atomic.Int32
	m := NewManual(3)

	find := func() (Positioner, bool) {
		if calls.Add(1) < 3 {
			return nil, false
		}
		return m, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, AttachWhenReady(ctx, a, find, time.Millisecond))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3.0, a.Seconds())
}

func TestAttachWhenReadyHonoursContext(t *testing.T) {
	a := NewAttachable()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := AttachWhenReady(ctx, a, func() (Positioner, bool) { return nil, false }, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.Attached())
}
