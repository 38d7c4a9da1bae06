// Package debounce delays propagation of a fast-changing value until it has
// been stable for a fixed interval. Only the final value of a burst is ever
// published; intermediate values are dropped.
package debounce

import (
	"sync"
	"time"
)

type Debouncer[T any] struct {
	delay   time.Duration
	publish func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New returns a debouncer that calls publish with the most recent value once
// no new value has arrived for delay. publish runs on a timer goroutine and
// must not call back into the debouncer.
func New[T any](delay time.Duration, publish func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, publish: publish}
}

// Set records a new candidate value and restarts the quiet-period timer. Any
// previously pending value is discarded unpublished.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen, value)
	})
}

// Stop cancels any pending publication. Nothing is published after Stop
// returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64, value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A newer Set or a Stop superseded this timer while it was firing.
	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil
	d.publish(value)
}
