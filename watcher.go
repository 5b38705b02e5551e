package heatmap

import (
	"sync"
	"time"
)

// DefaultWatchInterval is how often a Watcher re-measures its surface.
const DefaultWatchInterval = 500 * time.Millisecond

// Watcher polls a surface size on a fixed interval and re-renders when it
// changes.
//
// The watcher goroutine is the only caller of render between Watch and Stop.
// It exits on its own once the surface detaches.
type Watcher struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts polling s every interval. last is the size the surface was
// last rendered at; render is called with no arguments whenever the measured
// size differs from the previous one. A render error is logged and polling
// continues.
func Watch(s Surface, last Size, interval time.Duration, clock Clock, render func() error) *Watcher {
	if clock == nil {
		clock = SystemClock
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	w := &Watcher{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := clock.NewTicker(interval)
	go w.run(s, last, ticker, render)
	return w
}

func (w *Watcher) run(s Surface, last Size, ticker Ticker, render func() error) {
	defer close(w.done)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C():
		}

		if !w.poll(s, &last, render) {
			return
		}
		TickHandled(ticker)
	}
}

// poll handles one tick. It reports false when the watcher should exit.
func (w *Watcher) poll(s Surface, last *Size, render func() error) bool {
	// Stop may have raced with the tick.
	select {
	case <-w.stop:
		return false
	default:
	}

	if !Live(s) {
		Logger().Debug("heatmap: watcher surface detached")
		return false
	}
	size := s.Size()
	if size == *last {
		return true
	}
	*last = size
	Logger().Debug("heatmap: surface resized", "width", size.X, "height", size.Y)
	if err := render(); err != nil {
		Logger().Warn("heatmap: resize render failed", "err", err)
	}
	return true
}

// Stop cancels the watcher and waits for an in-flight render to finish.
// No render starts after Stop returns. Stop is idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Done is closed when the watcher goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
