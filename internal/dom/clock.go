package dom

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts timer creation so every delay in the synchronizer (locate
// poll, debounce, rebind delay, watchdog poll) is injectable and deterministic
// under test. The zero default is the wall clock.
type Clock interface {
	// AfterFunc runs fn once after d. The returned subscription cancels the
	// timer if it has not fired yet.
	AfterFunc(d time.Duration, fn func()) Subscription

	// Every runs fn repeatedly with period d until the subscription closes.
	Every(d time.Duration, fn func()) Subscription
}

// WallClock returns the real-time clock.
func WallClock() Clock { return wallClock{} }

type wallClock struct{}

type wallTimer struct{ t *time.Timer }

func (w wallTimer) Close() { w.t.Stop() }

func (wallClock) AfterFunc(d time.Duration, fn func()) Subscription {
	return wallTimer{t: time.AfterFunc(d, fn)}
}

type wallTicker struct {
	stop chan struct{}
	once sync.Once
}

func (w *wallTicker) Close() {
	w.once.Do(func() { close(w.stop) })
}

func (wallClock) Every(d time.Duration, fn func()) Subscription {
	wt := &wallTicker{stop: make(chan struct{})}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-wt.stop:
				return
			}
		}
	}()
	return wt
}

// ManualClock is a test clock. Callbacks fire on the goroutine that calls
// Advance, in deadline order, so interleavings are reproducible.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Duration
	seq  int
	wait []*manualEntry
}

type manualEntry struct {
	clock  *ManualClock
	due    time.Duration
	period time.Duration // 0 for one-shot
	seq    int
	fn     func()
	closed bool
}

func (e *manualEntry) Close() {
	e.clock.mu.Lock()
	e.closed = true
	e.clock.mu.Unlock()
}

// NewManualClock returns a clock that only moves via Advance.
func NewManualClock() *ManualClock { return &ManualClock{} }

func (c *ManualClock) schedule(d, period time.Duration, fn func()) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &manualEntry{clock: c, due: c.now + d, period: period, seq: c.seq, fn: fn}
	c.seq++
	c.wait = append(c.wait, e)
	return e
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Subscription {
	return c.schedule(d, 0, fn)
}

// Every implements Clock.
func (c *ManualClock) Every(d time.Duration, fn func()) Subscription {
	return c.schedule(d, d, fn)
}

// Advance moves the clock forward by d, firing due callbacks in deadline
// order. Callbacks that schedule new timers within the advanced window are
// honored, matching an event loop draining its timer queue.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		e := c.nextDueLocked(target)
		if e == nil {
			break
		}
		c.now = e.due
		if e.period > 0 {
			e.due += e.period
		} else {
			e.closed = true
		}
		fn := e.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.compactLocked()
	c.mu.Unlock()
}

func (c *ManualClock) nextDueLocked(target time.Duration) *manualEntry {
	var due *manualEntry
	for _, e := range c.wait {
		if e.closed || e.due > target {
			continue
		}
		if due == nil || e.due < due.due || (e.due == due.due && e.seq < due.seq) {
			due = e
		}
	}
	return due
}

func (c *ManualClock) compactLocked() {
	kept := c.wait[:0]
	for _, e := range c.wait {
		if !e.closed {
			kept = append(kept, e)
		}
	}
	c.wait = kept
	sort.SliceStable(c.wait, func(i, j int) bool { return c.wait[i].due < c.wait[j].due })
}

// Pending returns the number of armed timers, for leak assertions in tests.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.wait {
		if !e.closed {
			n++
		}
	}
	return n
}
