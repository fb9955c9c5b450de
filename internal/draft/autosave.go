package draft

import (
	"alcyxob/team-workouts/internal/clock"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period before an automatic save.
const DefaultAutoSaveDelay = 3 * time.Second

// AutoSaver debounces change notifications and calls fire once the draft has
// been quiet for the configured delay. Every Touch restarts the countdown.
//
// Cancelling always stops the underlying timer. A generation counter also
// guards against a callback that was already running when Stop was called.
type AutoSaver struct {
	mu      sync.Mutex
	clock   clock.Clock
	delay   time.Duration
	fire    func()
	enabled bool
	stopped bool
	timer   clock.Timer
	gen     uint64
}

func NewAutoSaver(clk clock.Clock, delay time.Duration, enabled bool, fire func()) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{clock: clk, delay: delay, enabled: enabled, fire: fire}
}

// Touch (re)starts the debounce timer. It does nothing while disabled or stopped.
func (a *AutoSaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled || a.stopped {
		return
	}
	a.cancelLocked()
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.delay, func() { a.elapsed(gen) })
}

func (a *AutoSaver) elapsed(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.enabled || a.stopped {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()
	a.fire()
}

// Cancel drops the pending timer, if any.
func (a *AutoSaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

func (a *AutoSaver) cancelLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *AutoSaver) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = true
}

// Disable turns automatic saving off and cancels the pending timer.
func (a *AutoSaver) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = false
	a.cancelLocked()
}

// Stop is the teardown path: the timer is cancelled and Touch becomes a no-op for good.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.cancelLocked()
}

func (a *AutoSaver) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled && !a.stopped
}

// Pending reports whether a countdown is running.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *AutoSaver) Delay() time.Duration { return a.delay }
