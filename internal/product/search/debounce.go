package search

import (
	"strings"
	"sync"
	"time"
)

// Debouncer delivers the most recent query once no newer query arrived for
// the wait period. A query equal, after trimming, to the previously delivered
// one is dropped.
type Debouncer struct {
	wait time.Duration
	fn   func(query string)

	emitMu sync.Mutex // keeps deliveries in push order

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	last    string
	emitted bool
	stopped bool
}

// NewDebouncer creates a Debouncer calling fn on its own goroutine.
func NewDebouncer(wait time.Duration, fn func(query string)) *Debouncer {
	return &Debouncer{wait: wait, fn: fn}
}

// Push records query and restarts the quiet period.
func (d *Debouncer) Push(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(seq, query) })
}

// Stop cancels a pending delivery. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Deliver cancels any pending query and calls fn with query right away.
// Later pushes are compared against it.
func (d *Debouncer) Deliver(query string) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.markLocked(query)
	d.mu.Unlock()

	d.fn(query)
}

// Mark records query as delivered by another path without calling fn.
// A pending push of the same query is then dropped as a repeat.
func (d *Debouncer) Mark(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markLocked(query)
}

func (d *Debouncer) markLocked(query string) {
	d.emitted = true
	d.last = strings.TrimSpace(query)
}

func (d *Debouncer) fire(seq uint64, query string) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	// a newer push superseded this timer
	if seq != d.seq || d.stopped {
		d.mu.Unlock()
		return
	}
	trimmed := strings.TrimSpace(query)
	if d.emitted && trimmed == d.last {
		d.mu.Unlock()
		return
	}
	d.markLocked(query)
	d.mu.Unlock()

	d.fn(query)
}
