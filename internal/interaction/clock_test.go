package interaction

import (
	"sort"
	"sync"
	"time"
)

// manualClock fires callbacks synchronously from Advance, in due order.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, due: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward by d, running every timer that comes due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		pending := c.timers[:0]
		for _, t := range c.timers {
			if !t.stopped && !t.fired {
				pending = append(pending, t)
			}
		}
		c.timers = pending
		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].due == c.timers[j].due {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].due < c.timers[j].due
		})
		if len(c.timers) > 0 && c.timers[0].due <= target {
			next = c.timers[0]
			next.fired = true
			c.now = next.due
		} else {
			c.now = target
		}
		c.mu.Unlock()

		if next == nil {
			return
		}
		next.f()
	}
}

func (c *manualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
