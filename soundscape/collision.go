package soundscape

import (
	"sync"
	"time"

	"github.com/cwbudde/algo-soundscape/dsp/core"
)

const (
	minCollisionRate = 0.3  // Hz at density 0
	maxCollisionRate = 12.0 // Hz at density >= saturationDensity

	saturationDensity = 1000.0
)

// CollisionIntensity normalises a density to [0, 1].
func CollisionIntensity(density float64) float64 {
	return core.Clamp(density/saturationDensity, 0, 1)
}

// CollisionRate returns the mean click rate in Hz for a density.
func CollisionRate(density float64) float64 {
	return minCollisionRate + CollisionIntensity(density)*(maxCollisionRate-minCollisionRate)
}

// CollisionBaseInterval returns the un-jittered time between clicks.
func CollisionBaseInterval(density float64) time.Duration {
	return time.Duration(float64(time.Second) / CollisionRate(density))
}

// collisionLoop is a cancellable self-rescheduling task. At most one timer
// is outstanding. armed is checked before each click and again before
// rescheduling, so a tick racing a cancel never re-arms.
type collisionLoop struct {
	mu    sync.Mutex
	clock Clock
	timer Timer
	armed bool

	base      time.Duration
	intensity float64

	// fire emits one click and returns the delay to the next, or false if
	// the loop no longer belongs to the active session.
	fire func(l *collisionLoop) (time.Duration, bool)
}

func newCollisionLoop(clock Clock, density float64, fire func(*collisionLoop) (time.Duration, bool)) *collisionLoop {
	return &collisionLoop{
		clock:     clock,
		base:      CollisionBaseInterval(density),
		intensity: CollisionIntensity(density),
		fire:      fire,
	}
}

// start arms the timer for the next iteration. The caller plays the
// click of the current one.
func (l *collisionLoop) start(first time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.armed = true
	l.timer = l.clock.AfterFunc(first, l.tick)
}

// cancel disarms the loop and stops the outstanding timer. Idempotent.
func (l *collisionLoop) cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.armed = false
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *collisionLoop) active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.armed
}

// pending reports whether a timer is outstanding.
func (l *collisionLoop) pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.armed && l.timer != nil
}

func (l *collisionLoop) tick() {
	l.mu.Lock()
	if !l.armed {
		l.mu.Unlock()
		return
	}
	l.timer = nil
	l.mu.Unlock()

	next, ok := l.fire(l)
	if !ok {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.armed && l.timer == nil {
		l.timer = l.clock.AfterFunc(next, l.tick)
	}
}
