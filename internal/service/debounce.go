package service

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into one deferred execution
// after a quiet period. Used to keep rapid session-state saves from hitting
// the database on every keystroke.
type Debouncer struct {
	quiet time.Duration

	mu      sync.Mutex
	pending map[string]*debounced
	closed  bool
}

type debounced struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = 1500 * time.Millisecond
	}
	return &Debouncer{
		quiet:   quiet,
		pending: map[string]*debounced{},
	}
}

// Trigger schedules fn to run after the quiet period. A newer trigger for the
// same key replaces the pending one, so only the last fn of a burst runs.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	p := &debounced{fn: fn}
	p.timer = time.AfterFunc(d.quiet, func() {
		d.fire(key, p)
	})
	d.pending[key] = p
}

// fire runs an elapsed entry, unless it was replaced, cancelled, or already
// claimed by Close. Removal from the map under the lock is the claim; the fn
// runs exactly once whichever side wins.
func (d *Debouncer) fire(key string, p *debounced) {
	d.mu.Lock()
	cur, ok := d.pending[key]
	if !ok || cur != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	p.fn()
}

// Cancel drops any pending execution for the key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Close flushes all pending executions synchronously and rejects further
// triggers. Work queued behind a quiet period must not be lost to shutdown.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	flush := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
		flush = append(flush, p.fn)
	}
	d.mu.Unlock()

	for _, fn := range flush {
		fn()
	}
}
