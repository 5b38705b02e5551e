package heatmap

import "time"

// Clock is the time source of watchers, frame loops and transitions.
// Tests substitute a manual clock to drive ticks deterministically.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (t systemTicker) C() <-chan time.Time { return t.t.C }
func (t systemTicker) Stop()               { t.t.Stop() }

// TickHandled reports to t that the tick last received from it has been
// fully handled. Tick consumers call it once per tick before waiting for
// the next one. It does nothing for the system clock; a manual clock uses
// it to block until the consumer has settled.
func TickHandled(t Ticker) {
	if h, ok := t.(interface{ Handled() }); ok {
		h.Handled()
	}
}
