package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-soundscape/dsp/graph"
)

const defaultBufferSize = 40 * time.Millisecond

// ErrAlreadyOpen is returned when Open is called twice. oto allows a single
// context per process.
var ErrAlreadyOpen = errors.New("device: already open")

// Option configures an Output.
type Option func(*Output)

// WithBufferSize sets the device buffer length.
func WithBufferSize(d time.Duration) Option {
	return func(o *Output) {
		if d > 0 {
			o.bufferSize = d
		}
	}
}

// Output is a stereo float32 device fed by a graph context.
type Output struct {
	mu         sync.Mutex
	bufferSize time.Duration

	otoCtx *oto.Context
	player *oto.Player

	src *source
}

// New returns an unopened Output.
func New(opts ...Option) *Output {
	o := &Output{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Open creates the device context at the graph's sample rate and starts
// pulling frames from ctx.
func (o *Output) Open(ctx *graph.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		return ErrAlreadyOpen
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(ctx.SampleRate()),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   o.bufferSize,
	})
	if err != nil {
		return fmt.Errorf("device: %w", err)
	}
	<-ready

	o.src = &source{}
	o.src.ctx.Store(ctx)
	o.otoCtx = otoCtx
	o.player = otoCtx.NewPlayer(o.src)
	o.player.Play()
	return nil
}

// Resume restarts a suspended device.
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return nil
	}
	return o.otoCtx.Resume()
}

// Suspend pauses the device.
func (o *Output) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return nil
	}
	return o.otoCtx.Suspend()
}

// Close stops playback. The oto context itself lives until process exit.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.src != nil {
		o.src.ctx.Store(nil)
	}
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// source adapts a graph context to the io.Reader oto pulls from.
type source struct {
	ctx     atomic.Pointer[graph.Context]
	samples []float32
}

// Read renders len(p)/8 stereo frames as little-endian float32.
func (s *source) Read(p []byte) (int, error) {
	n := len(p) / 4
	ctx := s.ctx.Load()
	if ctx == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	if cap(s.samples) < n {
		s.samples = make([]float32, n)
	}
	samples := s.samples[:n]
	// Render needs whole frames; an odd trailing sample stays silent.
	ctx.Render(samples[:n&^1])
	if n&1 == 1 {
		samples[n-1] = 0
	}

	for i, x := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(x))
	}
	for i := 4 * n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
