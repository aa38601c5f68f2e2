package buffer

import (
	"sync"
	"sync/atomic"
)

// Pool provides sync.Pool-based Buffer reuse with lease accounting.
type Pool struct {
	pool        sync.Pool
	mu          sync.Mutex
	outstanding atomic.Int64
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return &Buffer{pool: p}
	}
	return p
}

// Get leases a zeroed Buffer with the requested length.
// Callers must hand it back via Put or Buffer.Release when done.
func (p *Pool) Get(length int) *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Resize(length)
	b.Zero()

	p.mu.Lock()
	b.leased = true
	p.mu.Unlock()

	p.outstanding.Add(1)
	return b
}

// Put returns a leased Buffer to the pool. Buffers that are nil, foreign or
// already returned are ignored. The caller must not use the buffer afterwards.
func (p *Pool) Put(b *Buffer) {
	if b == nil || b.pool != p {
		return
	}
	p.release(b)
}

func (p *Pool) release(b *Buffer) bool {
	p.mu.Lock()
	if !b.leased {
		p.mu.Unlock()
		return false
	}
	b.leased = false
	p.mu.Unlock()

	p.outstanding.Add(-1)
	p.pool.Put(b)
	return true
}

// Outstanding returns the number of buffers currently leased.
func (p *Pool) Outstanding() int {
	return int(p.outstanding.Load())
}
