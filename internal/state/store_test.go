package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuesheet/internal/director"
)

func newTestStore() *Store {
	return NewStore(director.DefaultScenario().Reveals)
}

func TestStoreWritesOnlyOnChange(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.SetVisual("cube"))
	assert.False(t, s.SetVisual("cube"))
	assert.True(t, s.SetPalette("rose"))
	assert.False(t, s.SetPalette("rose"))
	assert.True(t, s.SetVisible("date", true))
	assert.False(t, s.SetVisible("date", true))
	assert.True(t, s.SetRevealed("date", 3))
	assert.False(t, s.SetRevealed("date", 3))

	assert.Equal(t, uint64(4), s.Revision())
}

func TestStoreIgnoresUnknownBlocks(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.SetVisible("nope", true))
	assert.False(t, s.SetRevealed("nope", 2))
	_, ok := s.Block("nope")
	assert.False(t, ok)
	assert.Zero(t, s.Revision())
}

func TestStoreImageVisibilityNeedsImage(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.SetImageVisible("date", true))
	assert.True(t, s.SetImageVisible("event", true))

	b, ok := s.Block("event")
	require.True(t, ok)
	assert.True(t, b.HasImage)
	assert.True(t, b.ImageVisible)
}

func TestStoreInertAfterClose(t *testing.T) {
	s := newTestStore()
	s.SetVisual("cube")
	s.Close()

	assert.True(t, s.Closed())
	assert.False(t, s.SetVisual("grid"))
	assert.False(t, s.SetRevealed("date", 5))
	assert.Equal(t, 0, s.IncrementAttempts())
	assert.Equal(t, "cube", s.VisualID())
	assert.Equal(t, uint64(1), s.Revision())
}

func TestStoreAttemptsAndButton(t *testing.T) {
	s := newTestStore()

	assert.Equal(t, 1, s.IncrementAttempts())
	assert.Equal(t, 2, s.IncrementAttempts())
	assert.True(t, s.SetButton(Point{X: 10, Y: 20}))
	assert.False(t, s.SetButton(Point{X: 10, Y: 20}))

	v := s.View()
	assert.Equal(t, 2, v.Attempts())
	assert.Equal(t, Point{X: 10, Y: 20}, v.Button())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore()
	s.SetRevealed("date", 7)

	snap := s.Snapshot()
	snap.Blocks[0].Revealed = 0

	b, _ := s.Block("date")
	assert.Equal(t, 7, b.Revealed)

	blk, ok := s.Snapshot().Block("date")
	require.True(t, ok)
	assert.Equal(t, "October", blk.RevealedText())
}

func TestChangedCoalesces(t *testing.T) {
	s := newTestStore()
	v := s.View()

	s.SetVisual("cube")
	s.SetPalette("mint")

	select {
	case <-v.Changed():
	default:
		t.Fatal("expected change notification")
	}
	select {
	case <-v.Changed():
		t.Fatal("notifications should coalesce")
	default:
	}
}

func TestViewIsReadOnly(t *testing.T) {
	v := newTestStore().View()
	_, isStore := v.(*Store)
	assert.False(t, isStore)
}
