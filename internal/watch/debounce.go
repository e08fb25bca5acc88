package watch

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of triggers into a single signal on C, delivered
// once the burst has been quiet for the configured delay.
type Debouncer struct {
	delay time.Duration
	c     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, c: make(chan struct{}, 1)}
}

// C delivers at most one pending signal.
func (d *Debouncer) C() <-chan struct{} {
	return d.c
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.c <- struct{}{}:
		default:
		}
	})
}

// Stop cancels a pending signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
