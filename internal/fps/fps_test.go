package fps

import (
	"testing"
	"time"
)

func TestMeter(t *testing.T) {
	var m Meter
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if fps, low := m.Tick(t0); fps != 0 || low != 0 {
		t.Fatalf("first Tick = %d, %d; want 0, 0", fps, low)
	}
	now := t0.Add(time.Second / 60)
	if fps, low := m.Tick(now); fps != 60 || low != 60 {
		t.Fatalf("60 Hz frame = %d, %d", fps, low)
	}
	now = now.Add(time.Second / 30)
	if fps, low := m.Tick(now); fps != 30 || low != 30 {
		t.Fatalf("slow frame = %d, %d; want 30, 30", fps, low)
	}
	now = now.Add(time.Second / 60)
	if fps, low := m.Tick(now); fps != 60 || low != 30 {
		t.Fatalf("recovered frame = %d, %d; want 60, 30", fps, low)
	}
	if got := m.String(); got != "fps: 60 low: 30" {
		t.Errorf("String() = %q", got)
	}
}

func TestMeterLowResets(t *testing.T) {
	var m Meter
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Tick(now)
	now = now.Add(time.Second / 20)
	m.Tick(now)
	if m.Low() != 20 {
		t.Fatalf("Low() = %d, want 20", m.Low())
	}
	for range lowWindow + 1 {
		now = now.Add(time.Second / 50)
		m.Tick(now)
	}
	if m.Low() != 50 || m.FPS() != 50 {
		t.Errorf("after the window: fps %d low %d, want 50 50", m.FPS(), m.Low())
	}
}

func TestMeterIgnoresNonAdvancingTime(t *testing.T) {
	var m Meter
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Tick(now)
	m.Tick(now.Add(time.Second / 40))
	if fps, _ := m.Tick(now.Add(time.Second / 40)); fps != 40 {
		t.Errorf("repeated timestamp changed fps to %d", fps)
	}
}
