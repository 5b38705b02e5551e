package heatmap

import (
	"testing"
)

func TestModeNextCycles(t *testing.T) {
	m := ModeRetained
	var seen []Mode
	for range 4 {
		seen = append(seen, m)
		m = m.Next()
	}
	want := []Mode{ModeRetained, ModeRaster, ModeGPU, ModeRetained}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"retained", ModeRetained},
		{"SVG", ModeRetained},
		{"vector", ModeRetained},
		{"raster", ModeRaster},
		{" canvas ", ModeRaster},
		{"gpu", ModeGPU},
		{"webgl", ModeGPU},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMode("opengl"); err == nil {
		t.Error("ParseMode(opengl): expected error")
	}
}

func TestModeText(t *testing.T) {
	for _, m := range Modes() {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText: %v", m, err)
		}
		var got Mode
		if err := got.UnmarshalText(text); err != nil || got != m {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", text, got, err, m)
		}
	}
	if _, err := Mode(9).MarshalText(); err == nil {
		t.Error("MarshalText of invalid mode: expected error")
	}
	if s := Mode(9).String(); s != "Mode(9)" {
		t.Errorf("String() = %q", s)
	}
}
