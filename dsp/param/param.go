// Package param provides sample-accurate parameter automation.
//
// A [Param] holds a value plus a timeline of scheduled events. Control code
// schedules events (set, linear ramp, exponential ramp) against an absolute
// time in seconds; render code reads the resulting curve block by block with
// [Param.Fill]. Control and render sides may run on different goroutines.
package param

import (
	"math"
	"sort"
	"sync"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventLinear
	eventExponential
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is an automatable scalar.
type Param struct {
	mu sync.Mutex

	// value is the value held at baseTime; events after baseTime move it.
	value    float64
	baseTime float64
	events   []event
}

// New returns a Param holding initial.
func New(initial float64) *Param {
	return &Param{value: initial}
}

// Set cancels all scheduled events and jumps to v immediately.
func (p *Param) Set(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = v
	p.baseTime = 0
	p.events = p.events[:0]
}

// SetValueAtTime schedules a step to v at time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(event{kind: eventSet, time: t, value: v})
}

// LinearRampToValueAtTime schedules a linear ramp from the previous event
// (or the held value) to v, arriving at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(event{kind: eventLinear, time: t, value: v})
}

// ExponentialRampToValueAtTime schedules an exponential ramp to v arriving at
// time t. Both endpoints must be non-zero and share a sign; otherwise the
// previous value is held until t and then v is set.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(event{kind: eventExponential, time: t, value: v})
}

// CancelScheduledValues removes every event scheduled at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked(t)
}

// RampTo anchors the curve at its current value at time now and ramps
// linearly to target over duration seconds. Later events are discarded.
func (p *Param) RampTo(target, now, duration float64) {
	p.rampTo(eventLinear, target, now, duration)
}

// ExponentialRampTo is the exponential variant of RampTo.
func (p *Param) ExponentialRampTo(target, now, duration float64) {
	p.rampTo(eventExponential, target, now, duration)
}

// ValueAt returns the automation value at time t without consuming events.
func (p *Param) ValueAt(t float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.valueAtLocked(t)
}

// Value returns the value held at the last rendered time.
func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.value
}

// Target returns the value the timeline settles on once every scheduled
// event has elapsed.
func (p *Param) Target() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		return p.value
	}
	return p.events[len(p.events)-1].value
}

// Pending reports the number of scheduled events not yet elapsed.
func (p *Param) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.events)
}

// Fill writes the curve for len(dst) samples starting at t0 with step dt,
// then drops events that lie entirely in the past.
func (p *Param) Fill(dst []float64, t0, dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		for i := range dst {
			dst[i] = p.value
		}
		return
	}

	for i := range dst {
		dst[i] = p.valueAtLocked(t0 + float64(i)*dt)
	}
	p.advanceLocked(t0 + float64(len(dst))*dt)
}

// Advance drops events that have elapsed by time t. Used by k-rate readers
// that sample ValueAt once per block.
func (p *Param) Advance(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advanceLocked(t)
}

func (p *Param) rampTo(kind eventKind, target, now, duration float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.valueAtLocked(now)
	p.cancelLocked(now)
	p.events = append(p.events,
		event{kind: eventSet, time: now, value: current},
		event{kind: kind, time: now + duration, value: target},
	)
}

func (p *Param) insert(e event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Events at equal times keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) cancelLocked(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
}

func (p *Param) valueAtLocked(t float64) float64 {
	v, tv := p.value, p.baseTime
	for _, e := range p.events {
		if e.time > t {
			switch e.kind {
			case eventLinear:
				return linear(v, e.value, tv, e.time, t)
			case eventExponential:
				return exponential(v, e.value, tv, e.time, t)
			default:
				return v
			}
		}
		v, tv = e.value, e.time
	}
	return v
}

func (p *Param) advanceLocked(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	if i == 0 {
		return
	}
	last := p.events[i-1]
	p.value = last.value
	p.baseTime = last.time
	p.events = append(p.events[:0], p.events[i:]...)
}

func linear(v0, v1, t0, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	if t <= t0 {
		return v0
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

func exponential(v0, v1, t0, t1, t float64) float64 {
	if v0 == 0 || v1 == 0 || math.Signbit(v0) != math.Signbit(v1) {
		return v0
	}
	if t1 <= t0 {
		return v1
	}
	if t <= t0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}
