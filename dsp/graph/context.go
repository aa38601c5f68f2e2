package graph

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-soundscape/dsp/core"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateSuspended renders silence and does not advance time.
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Context owns a render graph and its clock. A new Context starts suspended,
// like a browser audio context created before any user gesture.
//
// All topology changes and rendering are serialized by the context lock.
// Parameter automation is safe to schedule from any goroutine.
type Context struct {
	mu sync.Mutex

	cfg     core.ProcessorConfig
	state   State
	frame   int64
	quantum uint64

	destination *Gain
	tap         func(Block)
}

// NewContext creates a suspended context with a unity-gain destination.
func NewContext(opts ...core.ProcessorOption) (*Context, error) {
	cfg := core.ApplyProcessorOptions(opts...)
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("graph sample rate must be > 0: %f", cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("graph block size must be > 0: %d", cfg.BlockSize)
	}

	c := &Context{cfg: cfg}
	c.destination = c.NewGain(1)
	return c, nil
}

// SampleRate returns the render sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.cfg.SampleRate }

// BlockSize returns the render quantum in frames.
func (c *Context) BlockSize() int { return c.cfg.BlockSize }

// Destination returns the final mixer every audible path ends in.
func (c *Context) Destination() *Gain { return c.destination }

// CurrentTime returns the render clock in seconds.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return float64(c.frame) / c.cfg.SampleRate
}

// State returns the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Resume starts rendering. It reports an error only for a closed context.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return fmt.Errorf("graph: resume of closed context")
	}
	c.state = StateRunning
	return nil
}

// Suspend pauses rendering; Render outputs silence until Resume.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return fmt.Errorf("graph: suspend of closed context")
	}
	c.state = StateSuspended
	return nil
}

// Close stops rendering permanently.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateClosed
}

// SetTap installs fn to observe every rendered destination block. fn runs on
// the render goroutine with the context locked and must not call back into
// the context.
func (c *Context) SetTap(fn func(Block)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tap = fn
}

// Render fills dst with interleaved stereo float32 frames in [-1, 1].
// A context that is not running renders silence without advancing time.
func (c *Context) Render(dst []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frames := len(dst) / 2
	if c.state != StateRunning {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	for off := 0; off < frames; {
		n := c.cfg.BlockSize
		if frames-off < n {
			n = frames - off
		}

		c.quantum++
		q := Quantum{
			Index:      c.quantum,
			Time:       float64(c.frame) / c.cfg.SampleRate,
			Frames:     n,
			SampleRate: c.cfg.SampleRate,
		}
		b := c.destination.Process(q)
		for i := 0; i < n; i++ {
			dst[2*(off+i)] = float32(core.Clamp(b.L[i], -1, 1))
			dst[2*(off+i)+1] = float32(core.Clamp(b.R[i], -1, 1))
		}
		if c.tap != nil {
			c.tap(b)
		}

		c.frame += int64(n)
		off += n
	}
	for i := 2 * frames; i < len(dst); i++ {
		dst[i] = 0
	}
}

// RenderSeconds renders and discards d seconds of audio. Used to advance the
// graph without a device, e.g. in offline previews and tests.
func (c *Context) RenderSeconds(d float64) {
	frames := int(math.Round(d * c.cfg.SampleRate))
	if frames <= 0 {
		return
	}
	buf := make([]float32, 2*c.cfg.BlockSize)
	for frames > 0 {
		n := c.cfg.BlockSize
		if frames < n {
			n = frames
		}
		c.Render(buf[:2*n])
		frames -= n
	}
}
