package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Stepped, m)

	m, err = ParseMode(" Direct ")
	require.NoError(t, err)
	assert.Equal(t, Direct, m)

	_, err = ParseMode("frames")
	assert.Error(t, err)
}

func TestAnimatorStepsUpOneAtATime(t *testing.T) {
	a := NewAnimator(Stepped)

	assert.False(t, a.Retarget(5))
	assert.Equal(t, 0, a.Displayed())

	for want := 1; want <= 5; want++ {
		require.True(t, a.Step())
		assert.Equal(t, want, a.Displayed())
	}

	// Converged: further steps do not overshoot.
	assert.False(t, a.Step())
	assert.Equal(t, 5, a.Displayed())
}

func TestAnimatorNeverDecreasesWhileTargetGrows(t *testing.T) {
	a := NewAnimator(Stepped)

	prev := 0
	for target := 0; target <= 30; target += 3 {
		a.Retarget(target)
		a.Step()
		require.GreaterOrEqual(t, a.Displayed(), prev)
		require.LessOrEqual(t, a.Displayed(), target)
		prev = a.Displayed()
	}
}

func TestAnimatorSnapsDownOnBackwardSeek(t *testing.T) {
	a := NewAnimator(Stepped)
	a.Retarget(17)
	for a.Step() {
	}
	require.Equal(t, 17, a.Displayed())

	assert.True(t, a.Retarget(4))
	assert.Equal(t, 4, a.Displayed())

	assert.True(t, a.Retarget(0))
	assert.Equal(t, 0, a.Displayed())
}

func TestAnimatorDirectMode(t *testing.T) {
	a := NewAnimator(Direct)

	assert.True(t, a.Retarget(9))
	assert.Equal(t, 9, a.Displayed())
	assert.False(t, a.Retarget(9))
	assert.False(t, a.Step())
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "", Prefix("October", 0))
	assert.Equal(t, "Oct", Prefix("October", 3))
	assert.Equal(t, "October", Prefix("October", 99))
	assert.Equal(t, "ün", Prefix("ünïcödé", 2))
	assert.Equal(t, "", Prefix("abc", -1))
}
