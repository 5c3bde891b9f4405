package system

import (
	"image"
	"sync"
)

// FramePool reuses canvas-sized image.RGBA buffers across clips to
// keep frame synthesis from hammering the garbage collector. Buffers
// are pooled per canvas size.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var framePool = &FramePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame returns an RGBA buffer of the given size from the pool, or
// a new one if none is available. The contents are undefined; callers
// overwrite every pixel.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return framePool.Get(rect)
}

// PutFrame returns a buffer to the pool for reuse.
func PutFrame(img *image.RGBA) {
	framePool.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
