// Package clocktest provides a manually driven heatmap.Clock for tests.
package clocktest

import (
	"sync"
	"time"

	"github.com/gogpu/heatmap"
)

// Clock is a heatmap.Clock whose tickers fire only when Tick is called.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
}

// New returns a clock set to a fixed instant.
func New() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now implements heatmap.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d without firing tickers.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewTicker implements heatmap.Clock. The period is recorded but ignored.
func (c *Clock) NewTicker(d time.Duration) heatmap.Ticker {
	t := &Ticker{
		Period:  d,
		c:       make(chan time.Time),
		handled: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tickers returns how many tickers have been created, stopped or not.
func (c *Clock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Live returns how many tickers have not been stopped.
func (c *Clock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.Stopped() {
			n++
		}
	}
	return n
}

// Tick delivers one tick to every live ticker, one ticker at a time. For
// each it returns only once the receiver has handled the tick (reported
// through heatmap.TickHandled) or stopped the ticker, so state changed after
// Tick returns is seen no earlier than the next Tick.
func (c *Clock) Tick() {
	c.mu.Lock()
	now := c.now
	tickers := append([]*Ticker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		select {
		case t.c <- now:
		case <-t.stopped:
			continue
		}
		select {
		case <-t.handled:
		case <-t.stopped:
		}
	}
}

// Ticker is a ticker created by Clock.
type Ticker struct {
	Period time.Duration

	c       chan time.Time
	handled chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// C implements heatmap.Ticker.
func (t *Ticker) C() <-chan time.Time { return t.c }

// Stop implements heatmap.Ticker.
func (t *Ticker) Stop() { t.once.Do(func() { close(t.stopped) }) }

// Handled acknowledges the tick last received from C.
func (t *Ticker) Handled() {
	select {
	case t.handled <- struct{}{}:
	default:
	}
}

// Stopped reports whether Stop has been called.
func (t *Ticker) Stopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}
