package sim

import "sync"

// BufferPool recycles render buffers between frames.
type BufferPool struct {
	pool sync.Pool
	size int
}

func NewBufferPool(capacity int) *BufferPool {
	return &BufferPool{
		size: capacity,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float32, 0, capacity)
				return &buf
			},
		},
	}
}

func (p *BufferPool) Get() []float32 {
	return (*p.pool.Get().(*[]float32))[:0]
}

func (p *BufferPool) Put(buf []float32) {
	if cap(buf) >= p.size {
		buf = buf[:0]
		p.pool.Put(&buf)
	}
}
