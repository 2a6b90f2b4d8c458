// Package source loads backdrop images for visuals. A deck holds one page
// per schedule cue, in cue order.
package source

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/cuesheet/internal/director"
)

type Source interface {
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a PDF deck or an image folder by path.
func Open(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() && strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFDeck(path)
	}
	return NewImageDeck(path)
}

type PDFDeck struct {
	mu   sync.Mutex
	doc  *fitz.Document
	path string
}

func NewPDFDeck(path string) (*PDFDeck, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFDeck{doc: doc, path: path}, nil
}

func (d *PDFDeck) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterises one page. MuPDF documents are not safe for
// concurrent use, so renders are serialised.
func (d *PDFDeck) RenderPage(index int, dpi int) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.ImageDPI(index, float64(dpi))
}

func (d *PDFDeck) Close() error {
	return d.doc.Close()
}

// Backdrops maps visual ids to deck pages and caches rendered pages.
type Backdrops struct {
	src   Source
	dpi   int
	index map[string]int

	mu    sync.Mutex
	cache map[int]image.Image
}

// NewBackdrops assigns page i to cue i. Cues beyond the last page get no
// backdrop.
func NewBackdrops(src Source, cues []director.Cue, dpi int) *Backdrops {
	b := &Backdrops{
		src:   src,
		dpi:   dpi,
		index: make(map[string]int, len(cues)),
		cache: make(map[int]image.Image),
	}
	for i, c := range cues {
		if i < src.PageCount() {
			b.index[c.ID] = i
		}
	}
	return b
}

// For returns the backdrop of a visual, or nil if it has none.
func (b *Backdrops) For(visualID string) (image.Image, error) {
	i, ok := b.index[visualID]
	if !ok {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if img, ok := b.cache[i]; ok {
		return img, nil
	}
	img, err := b.src.RenderPage(i, b.dpi)
	if err != nil {
		return nil, fmt.Errorf("render backdrop %q (page %d): %w", visualID, i, err)
	}
	b.cache[i] = img
	return img, nil
}
