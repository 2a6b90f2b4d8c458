package renderer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ivlev/cuesheet/internal/state"
	"github.com/ivlev/cuesheet/internal/transport"
)

// Line renders a snapshot as a single status line.
func Line(snap state.Snapshot, elapsed float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | %s", transport.FormatTime(elapsed), snap.VisualID, snap.Palette)
	for _, blk := range snap.Blocks {
		if !blk.Visible {
			continue
		}
		fmt.Fprintf(&b, " | %s: %q", blk.Name, blk.RevealedText())
		if blk.ImageVisible {
			b.WriteString(" [image]")
		}
	}
	if snap.Attempts > 0 {
		fmt.Fprintf(&b, " | attempts: %d", snap.Attempts)
	}
	return b.String()
}

// Console prints a status line whenever the state changes.
type Console struct {
	w       io.Writer
	view    state.View
	elapsed func() float64
}

func NewConsole(w io.Writer, view state.View, elapsed func() float64) *Console {
	return &Console{w: w, view: view, elapsed: elapsed}
}

// Run prints until ctx ends. Repeated identical lines are skipped.
func (c *Console) Run(ctx context.Context) error {
	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.view.Changed():
			line := Line(c.view.Snapshot(), c.elapsed())
			if line == last {
				continue
			}
			last = line
			if _, err := fmt.Fprintln(c.w, line); err != nil {
				return err
			}
		}
	}
}
