// Command heatmapdemo drives a heatmap through a scripted control-panel
// session and saves a snapshot of every step.
//
// Each step applies one panel action, reconfigures the dispatcher and writes
// <out>/NN-<mode>.png. Retained steps also write the SVG document.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/config"
	"github.com/gogpu/heatmap/palette"
	"github.com/gogpu/heatmap/retained"
	"github.com/gogpu/heatmap/surface"

	_ "github.com/gogpu/heatmap/gpu"
	_ "github.com/gogpu/heatmap/raster"
)

type step struct {
	name   string
	action func(p *palette.Panel, r *rand.Rand)
}

var script = []step{
	{"initial", func(*palette.Panel, *rand.Rand) {}},
	{"fill", func(p *palette.Panel, _ *rand.Rand) { p.ToggleFill() }},
	{"edge", func(p *palette.Panel, _ *rand.Rand) { p.NextEdge() }},
	{"gap", func(p *palette.Panel, _ *rand.Rand) { p.NextGap() }},
	{"colors", func(p *palette.Panel, r *rand.Rand) { p.NextColors(r) }},
	{"mode", func(p *palette.Panel, _ *rand.Rand) { p.NextMode() }},
	{"width", func(p *palette.Panel, _ *rand.Rand) { p.NextWidth() }},
	{"mode", func(p *palette.Panel, _ *rand.Rand) { p.NextMode() }},
	{"height", func(p *palette.Panel, _ *rand.Rand) { p.NextHeight() }},
	{"mode", func(p *palette.Panel, _ *rand.Rand) { p.NextMode() }},
}

type summary struct {
	steps, failed, tiles int
	files                []string
}

func main() {
	var (
		out     = flag.String("out", "heatmap-out", "output directory")
		cfgPath = flag.String("config", "", "panel file to start from (YAML)")
		seed    = flag.Uint64("seed", 1, "seed for random color stops")
		settle  = flag.Duration("settle", 100*time.Millisecond, "wait before each snapshot")
		lang    = flag.String("lang", "en", "language for the summary")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	heatmap.SetLogger(logger)

	panel := palette.Default()
	if *cfgPath != "" {
		p, err := config.Load(*cfgPath)
		if err != nil {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
		panel = p
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("create output directory", "err", err)
		os.Exit(1)
	}

	sum, err := run(logger, panel, *out, *seed, *settle)
	if err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1)
	}

	pr := message.NewPrinter(language.Make(*lang))
	pr.Printf("%d steps, %d failed, %d tiles drawn in total\n", sum.steps, sum.failed, sum.tiles)
	for _, f := range sum.files {
		pr.Printf("  %s\n", f)
	}
}

func run(logger *slog.Logger, panel palette.Panel, out string, seed uint64, settle time.Duration) (summary, error) {
	var sum summary
	r := rand.New(rand.NewPCG(seed, seed))

	host := surface.NewContainer(panel.Width, panel.Height)
	d := heatmap.NewDispatcher(host)
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("close dispatcher", "err", err)
		}
	}()

	for i, s := range script {
		s.action(&panel, r)
		sum.steps++

		// Size changes reach the backend through the surface, not Configure.
		host.SetSize(panel.Width, panel.Height)
		err := d.Configure(panel.Params())
		if errors.Is(err, heatmap.ErrClosed) {
			return sum, err
		}
		if err != nil {
			sum.failed++
			logger.Warn("configure", "step", s.name, "mode", panel.Mode, "err", err)
			continue
		}
		time.Sleep(settle)

		fit := heatmap.Resolve(host.Size(), panel.Tile.Edge, panel.Tile.Gap, panel.Fill)
		sum.tiles += fit.Count.Tiles()

		// Retained snapshots are taken after every fill transition has run.
		at := time.Now().Add(retained.FillTransition)
		img := host.Snapshot(at)
		caption(img, fmt.Sprintf("%s %s %dx%d", s.name, panel.Mode, fit.Count.X, fit.Count.Y))

		name := filepath.Join(out, fmt.Sprintf("%02d-%s.png", i, panel.Mode))
		if err := savePNG(name, img); err != nil {
			return sum, err
		}
		sum.files = append(sum.files, name)

		if v, ok := d.Surface().(*surface.Vector); ok {
			name := filepath.Join(out, fmt.Sprintf("%02d-%s.svg", i, panel.Mode))
			if err := saveSVG(name, v); err != nil {
				return sum, err
			}
			sum.files = append(sum.files, name)
		}
		logger.Info("step", "n", i, "name", s.name, "mode", panel.Mode, "tiles", fit.Count.Tiles())
	}
	return sum, nil
}

// caption writes text into the top-left corner of img on a dark strip.
func caption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	w := d.MeasureString(text).Ceil() + 8
	h := face.Metrics().Height.Ceil() + 4
	draw.Draw(img, image.Rect(0, 0, w, h), image.NewUniform(color.NRGBA{A: 160}), image.Point{}, draw.Over)
	d.Dot = fixed.P(4, face.Metrics().Ascent.Ceil()+2)
	d.DrawString(text)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func saveSVG(path string, v *surface.Vector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := v.WriteSVG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
