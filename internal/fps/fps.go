// Package fps measures frame rate and its recent low.
package fps

import (
	"fmt"
	"math"
	"time"
)

// lowWindow is how many frames a low value is held before it resets.
const lowWindow = 60

// Meter tracks frames per second from successive frame timestamps.
// The zero value is ready to use. A Meter is not safe for concurrent use.
type Meter struct {
	last      time.Time
	fps       int
	low       int
	lowFrames int
}

// Tick records a frame at t and returns the current and low fps.
// The first call only sets the reference time.
func (m *Meter) Tick(t time.Time) (fps, low int) {
	if m.last.IsZero() {
		m.last = t
		return m.fps, m.low
	}
	dt := t.Sub(m.last)
	m.last = t
	if dt <= 0 {
		return m.fps, m.low
	}
	m.fps = int(math.Round(float64(time.Second) / float64(dt)))
	if m.fps < m.low || m.lowFrames > lowWindow || m.low == 0 {
		m.low = m.fps
		m.lowFrames = 0
	}
	m.lowFrames++
	return m.fps, m.low
}

// FPS returns the most recent frame rate.
func (m *Meter) FPS() int { return m.fps }

// Low returns the lowest frame rate of the current window.
func (m *Meter) Low() int { return m.low }

// String formats the meter as "fps: N low: M".
func (m *Meter) String() string {
	return fmt.Sprintf("fps: %d low: %d", m.fps, m.low)
}
