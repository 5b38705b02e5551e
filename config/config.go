// Package config reads and writes heatmap panel files and reloads them when
// they change on disk.
//
// A panel file is YAML:
//
//	mode: retained      # retained | raster | gpu
//	width: 550
//	height: 350
//	edge: 10
//	gap: 2
//	fill: false
//	stops:              # [threshold, color], ascending
//	  - [0.1, "#FFF"]
//	  - [0.5, "#FEA"]
//	  - [0.6, "#F75"]
//	  - [1, "#902"]
//
// Missing fields keep the defaults of palette.Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/palette"
)

// ErrInvalid wraps every validation failure of a panel file.
var ErrInvalid = errors.New("config: invalid panel")

// file is the YAML layout of a panel.
type file struct {
	Mode   heatmap.Mode `yaml:"mode"`
	Width  float64      `yaml:"width"`
	Height float64      `yaml:"height"`
	Edge   float64      `yaml:"edge"`
	Gap    float64      `yaml:"gap"`
	Fill   bool         `yaml:"fill"`
	Stops  []stop       `yaml:"stops"`
}

// stop is a color stop written as a two-element sequence.
type stop heatmap.ColorStop

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *stop) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("line %d: stop must be [threshold, color]: %w", value.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: stop must be [threshold, color], got %d elements", value.Line, len(pair))
	}
	var t float64
	if err := yaml.Unmarshal([]byte(pair[0]), &t); err != nil {
		return fmt.Errorf("line %d: threshold %q: %w", value.Line, pair[0], err)
	}
	c, err := heatmap.ParseHex(pair[1])
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = stop{Threshold: t, Color: c}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s stop) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	n.Content = []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%g", s.Threshold)},
		{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: s.Color.Hex()},
	}
	return n, nil
}

func fromPanel(p palette.Panel) file {
	f := file{
		Mode:   p.Mode,
		Width:  p.Width,
		Height: p.Height,
		Edge:   p.Tile.Edge,
		Gap:    p.Tile.Gap,
		Fill:   p.Fill,
		Stops:  make([]stop, len(p.Stops)),
	}
	for i, s := range p.Stops {
		f.Stops[i] = stop(s)
	}
	return f
}

func (f file) panel() palette.Panel {
	p := palette.Panel{
		Mode:   f.Mode,
		Width:  f.Width,
		Height: f.Height,
		Tile:   heatmap.TileSpec{Edge: f.Edge, Gap: f.Gap},
		Fill:   f.Fill,
		Stops:  make(heatmap.Stops, len(f.Stops)),
	}
	for i, s := range f.Stops {
		p.Stops[i] = heatmap.ColorStop(s)
	}
	return p
}

// Parse decodes a panel from YAML. Fields absent from data keep their
// default values.
func Parse(data []byte) (palette.Panel, error) {
	f := fromPanel(palette.Default())
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return palette.Panel{}, fmt.Errorf("config: %w", err)
	}
	p := f.panel()
	if err := Validate(p); err != nil {
		return palette.Panel{}, err
	}
	return p, nil
}

// Validate checks the panel dimensions, tile spec and stops.
func Validate(p palette.Panel) error {
	if !(p.Width >= 0) || !(p.Height >= 0) {
		return fmt.Errorf("%w: size %vx%v", ErrInvalid, p.Width, p.Height)
	}
	if err := p.Tile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := p.Stops.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Load reads and parses the panel file at path.
func Load(path string) (palette.Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return palette.Panel{}, fmt.Errorf("config: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return palette.Panel{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Marshal encodes p as YAML.
func Marshal(p palette.Panel) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fromPanel(p)); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes p to path.
func Save(path string, p palette.Panel) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
