package system

import (
	"image"
	"sync"
)

// ImagePool recycles frame buffers by size so the export loop does not
// allocate a full RGBA frame per tick.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

var globalPool = NewImagePool()

func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a buffer with bounds rect. Its contents are whatever the last
// user left in it.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put hands a buffer back. Buffers of a size never requested are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
