// Package state holds the shared presentation state read by renderers.
//
// Store is the writer handle, owned by the engine and the interaction
// handlers. Everything else gets a View. Each write replaces a single field
// and only lands when the value actually changes; a write that lands bumps
// Revision and signals Changed.
package state

import (
	"sync"

	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/reveal"
)

// Point is a position in viewport pixels.
type Point struct {
	X float64
	Y float64
}

// Block is the rendered state of one reveal block.
type Block struct {
	Name         string
	Text         string
	Visible      bool
	Revealed     int // Characters shown
	HasImage     bool
	ImageVisible bool
}

// RevealedText is the visible prefix of the block's text.
func (b Block) RevealedText() string {
	return reveal.Prefix(b.Text, b.Revealed)
}

// Snapshot is a consistent copy of the whole state.
type Snapshot struct {
	VisualID string
	Palette  string
	Blocks   []Block
	Attempts int
	Button   Point
	Revision uint64
}

// Block looks up a block by name.
func (s Snapshot) Block(name string) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// View is the read-only side of the store.
type View interface {
	Snapshot() Snapshot
	VisualID() string
	Palette() string
	Block(name string) (Block, bool)
	Attempts() int
	Button() Point
	Revision() uint64
	// Changed receives a value after writes land. Notifications coalesce.
	Changed() <-chan struct{}
}

// Store is the writable presentation state.
type Store struct {
	mu       sync.RWMutex
	closed   bool
	visual   string
	palette  string
	blocks   []Block
	index    map[string]int
	attempts int
	button   Point
	rev      uint64
	changed  chan struct{}
}

// NewStore creates a store with one hidden block per reveal.
func NewStore(reveals []director.Reveal) *Store {
	s := &Store{
		blocks:  make([]Block, 0, len(reveals)),
		index:   make(map[string]int, len(reveals)),
		changed: make(chan struct{}, 1),
	}
	for _, r := range reveals {
		s.index[r.Name] = len(s.blocks)
		s.blocks = append(s.blocks, Block{Name: r.Name, Text: r.Text, HasImage: r.Image != nil})
	}
	return s
}

// View returns a read-only handle on the store.
func (s *Store) View() View {
	return view{s: s}
}

// update applies fn under the write lock; fn reports whether it changed
// anything. Writes after Close are dropped.
func (s *Store) update(fn func() bool) bool {
	s.mu.Lock()
	if s.closed || !fn() {
		s.mu.Unlock()
		return false
	}
	s.rev++
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
	return true
}

// SetVisual replaces the active visual id.
func (s *Store) SetVisual(id string) bool {
	return s.update(func() bool {
		if s.visual == id {
			return false
		}
		s.visual = id
		return true
	})
}

// SetPalette replaces the active palette.
func (s *Store) SetPalette(palette string) bool {
	return s.update(func() bool {
		if s.palette == palette {
			return false
		}
		s.palette = palette
		return true
	})
}

// SetVisible replaces a block's visibility. Unknown names are ignored.
func (s *Store) SetVisible(name string, visible bool) bool {
	return s.updateBlock(name, func(b *Block) bool {
		if b.Visible == visible {
			return false
		}
		b.Visible = visible
		return true
	})
}

// SetRevealed replaces a block's shown character count.
func (s *Store) SetRevealed(name string, n int) bool {
	return s.updateBlock(name, func(b *Block) bool {
		if b.Revealed == n {
			return false
		}
		b.Revealed = n
		return true
	})
}

// SetImageVisible replaces the visibility of a block's image.
func (s *Store) SetImageVisible(name string, visible bool) bool {
	return s.updateBlock(name, func(b *Block) bool {
		if !b.HasImage || b.ImageVisible == visible {
			return false
		}
		b.ImageVisible = visible
		return true
	})
}

func (s *Store) updateBlock(name string, fn func(b *Block) bool) bool {
	return s.update(func() bool {
		i, ok := s.index[name]
		if !ok {
			return false
		}
		return fn(&s.blocks[i])
	})
}

// IncrementAttempts bumps the interaction counter and returns the new value.
func (s *Store) IncrementAttempts() int {
	n := 0
	landed := s.update(func() bool {
		s.attempts++
		n = s.attempts
		return true
	})
	if !landed {
		return s.Attempts()
	}
	return n
}

// SetButton replaces the dodging button position.
func (s *Store) SetButton(p Point) bool {
	return s.update(func() bool {
		if s.button == p {
			return false
		}
		s.button = p
		return true
	})
}

// Close makes the store inert: later writes are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		VisualID: s.visual,
		Palette:  s.palette,
		Blocks:   append([]Block(nil), s.blocks...),
		Attempts: s.attempts,
		Button:   s.button,
		Revision: s.rev,
	}
}

func (s *Store) VisualID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visual
}

func (s *Store) Palette() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.palette
}

func (s *Store) Block(name string) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return Block{}, false
	}
	return s.blocks[i], true
}

func (s *Store) Attempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts
}

func (s *Store) Button() Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.button
}

// Revision counts the writes that landed.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// view hides the Store's write methods.
type view struct {
	s *Store
}

func (v view) Snapshot() Snapshot { return v.s.Snapshot() }
func (v view) VisualID() string { return v.s.VisualID() }
func (v view) Palette() string { return v.s.Palette() }
func (v view) Block(name string) (Block, bool) { return v.s.Block(name) }
func (v view) Attempts() int { return v.s.Attempts() }
func (v view) Button() Point { return v.s.Button() }
func (v view) Revision() uint64 { return v.s.Revision() }
func (v view) Changed() <-chan struct{} { return v.s.Changed() }
