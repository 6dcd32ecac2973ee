package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
)

// DefaultInterval is the display refresh cadence
const DefaultInterval = time.Second

// TickFunc is called on every tick. Returning false stops the driver.
type TickFunc func(now time.Time) bool

// Driver runs a TickFunc periodically on its own goroutine. At most one run
// is active: Start stops the previous one first. fn must not call Stop.
type Driver struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewDriver creates a driver. A non-positive interval uses DefaultInterval.
func NewDriver(interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		interval: interval,
		now:      time.Now,
	}
}

// Start evaluates fn once synchronously. If that first call returns false no
// timer is scheduled and Start returns false. Otherwise fn runs every interval
// until it returns false, Stop is called or ctx is cancelled.
func (d *Driver) Start(ctx context.Context, fn TickFunc) bool {
	d.Stop()

	if !fn(d.now()) {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	d.mu.Lock()
	d.cancel = cancel
	d.done = done
	d.running = true
	d.mu.Unlock()

	metrics.CountdownTimers.Inc()
	go d.run(runCtx, fn, done)
	return true
}

func (d *Driver) run(ctx context.Context, fn TickFunc, done chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer func() {
		ticker.Stop()
		metrics.CountdownTimers.Dec()

		d.mu.Lock()
		if d.done == done {
			d.running = false
		}
		d.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !fn(d.now()) {
				return
			}
		}
	}
}

// Stop cancels the active run, if any, and waits for it to finish
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.done = nil
	d.running = false
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether a timer is scheduled
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}
