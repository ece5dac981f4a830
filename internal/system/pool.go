package system

import (
	"image"
	"sync"
)

// FramePool reuses *image.RGBA frame buffers across renders to keep GC
// pressure flat while thousands of frames stream through the pipeline.
// Buffers are pooled per bounds so a job with a single composition size hits
// one pool.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &FramePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame returns a zeroed *image.RGBA for rect from the shared pool.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutFrame returns a frame buffer to the shared pool.
func PutFrame(img *image.RGBA) {
	globalPool.Put(img)
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

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
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
