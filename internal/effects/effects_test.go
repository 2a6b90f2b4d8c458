package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFadeFilters(t *testing.T) {
	f := Fade{In: 0.5, Out: 2}
	assert.Equal(t, "fade=t=in:st=0:d=0.500,fade=t=out:st=268.000:d=2.000", f.VideoFilter(270))
	assert.Equal(t, "afade=t=in:st=0:d=0.500,afade=t=out:st=268.000:d=2.000", f.AudioFilter(270))
}

func TestFadeOnlyOut(t *testing.T) {
	assert.Equal(t, "fade=t=out:st=9.000:d=1.000", Fade{Out: 1}.VideoFilter(10))
}

func TestFadeNone(t *testing.T) {
	assert.Empty(t, Fade{}.VideoFilter(10))
	assert.Empty(t, Fade{In: 1, Out: 1}.AudioFilter(0))
	assert.Empty(t, Fade{In: -1}.VideoFilter(10))
}

func TestFadeShrinksToFit(t *testing.T) {
	assert.Equal(t, "fade=t=in:st=0:d=1.000,fade=t=out:st=1.000:d=3.000", Fade{In: 2, Out: 6}.VideoFilter(4))
}
