package buffer

// Buffer wraps a float64 slice with reuse-friendly semantics.
// DSP functions accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64

	pool   *Pool
	leased bool
}

// New returns a zero-filled Buffer of the given length that belongs to no pool.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{samples: make([]float64, length)}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// New elements beyond the previous length are zeroed.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}
	for i := oldLen; i < n; i++ {
		b.samples[i] = 0
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// Leased reports whether the buffer is currently checked out of a pool.
func (b *Buffer) Leased() bool {
	if b.pool == nil {
		return false
	}
	b.pool.mu.Lock()
	defer b.pool.mu.Unlock()
	return b.leased
}

// Release returns a leased buffer to its pool and reports whether it was
// still leased. Releasing twice is a no-op.
func (b *Buffer) Release() bool {
	if b == nil || b.pool == nil {
		return false
	}
	return b.pool.release(b)
}
