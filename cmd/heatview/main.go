// Command heatview shows a live heatmap in a window with a keyboard-driven
// control panel.
//
//	M  next render mode      W  next width      H  next height
//	E  next tile edge        G  next tile gap   F  toggle fill
//	C  random colors         S  save the panel (with -config)
//
// With -config the panel is read from a YAML file and reloaded whenever the
// file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/config"
	"github.com/gogpu/heatmap/internal/fps"
	"github.com/gogpu/heatmap/palette"
	"github.com/gogpu/heatmap/surface"

	_ "github.com/gogpu/heatmap/gpu"
	_ "github.com/gogpu/heatmap/raster"
	_ "github.com/gogpu/heatmap/retained"
)

const (
	screenWidth  = 1000
	screenHeight = 640
	panelTop     = 40
	windowTitle  = "heatview"
)

type reload struct {
	panel palette.Panel
	err   error
}

// Game implements ebiten.Game.
type Game struct {
	logger  *slog.Logger
	panel   palette.Panel
	host    *surface.Container
	disp    *heatmap.Dispatcher
	rand    *rand.Rand
	meter   fps.Meter
	cfgPath string
	reloads chan reload
	status  string

	view   *ebiten.Image
	viewW  int
	viewH  int
	pixbuf *image.RGBA
}

func newGame(logger *slog.Logger, panel palette.Panel, cfgPath string) *Game {
	host := surface.NewContainer(panel.Width, panel.Height)
	g := &Game{
		logger:  logger,
		panel:   panel,
		host:    host,
		disp:    heatmap.NewDispatcher(host),
		rand:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		cfgPath: cfgPath,
		reloads: make(chan reload, 1),
	}
	g.apply()
	return g
}

// apply pushes the panel to the container and the dispatcher.
func (g *Game) apply() {
	g.host.SetSize(g.panel.Width, g.panel.Height)
	if err := g.disp.Configure(g.panel.Params()); err != nil {
		g.status = err.Error()
		g.logger.Warn("configure", "mode", g.panel.Mode, "err", err)
		return
	}
	g.status = ""
}

// Update handles input and config reloads.
func (g *Game) Update() error {
	select {
	case r := <-g.reloads:
		if r.err != nil {
			g.status = r.err.Error()
			g.logger.Warn("reload config", "err", r.err)
		} else {
			g.panel = r.panel
			g.apply()
		}
	default:
	}

	changed := true
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.panel.NextMode()
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.panel.NextWidth()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.panel.NextHeight()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.panel.NextEdge()
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.panel.NextGap()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.panel.ToggleFill()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.panel.NextColors(g.rand)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		changed = false
		g.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	default:
		changed = false
	}
	if changed {
		g.apply()
	}
	return nil
}

func (g *Game) save() {
	if g.cfgPath == "" {
		g.status = "no -config file to save to"
		return
	}
	if err := config.Save(g.cfgPath, g.panel); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "saved " + g.cfgPath
}

// Draw copies the container snapshot to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	fpsNow, low := g.meter.Tick(time.Now())

	snap := g.host.Snapshot(time.Now())
	w, h := snap.Rect.Dx(), snap.Rect.Dy()
	if w > 0 && h > 0 {
		if g.view == nil || g.viewW != w || g.viewH != h {
			if g.view != nil {
				g.view.Deallocate()
			}
			g.view = ebiten.NewImage(w, h)
			g.viewW, g.viewH = w, h
		}
		g.view.WritePixels(snap.Pix)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, panelTop)
		screen.DrawImage(g.view, op)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s  size: %gx%g  edge: %g  gap: %g  fill: %t  stops: %d\n",
		g.panel.Mode, g.panel.Width, g.panel.Height,
		g.panel.Tile.Edge, g.panel.Tile.Gap, g.panel.Fill, len(g.panel.Stops))
	fmt.Fprintf(&b, "fps: %d low: %d  [M W H E G F C S]", fpsNow, low)
	if g.status != "" {
		fmt.Fprintf(&b, "  %s", g.status)
	}
	ebitenutil.DebugPrint(screen, b.String())
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	var (
		cfgPath = flag.String("config", "", "panel file (YAML), reloaded on change")
		mode    = flag.String("mode", "", "initial render mode: retained, raster or gpu")
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
		if p, err := config.Load(*cfgPath); err == nil {
			panel = p
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	if *mode != "" {
		m, err := heatmap.ParseMode(*mode)
		if err != nil {
			logger.Error("parse mode", "err", err)
			os.Exit(1)
		}
		panel.Mode = m
	}

	game := newGame(logger, panel, *cfgPath)
	defer game.disp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *cfgPath != "" {
		err := config.Watch(ctx, *cfgPath, func(p palette.Panel, err error) {
			// Only the latest reload matters.
			select {
			case <-game.reloads:
			default:
			}
			game.reloads <- reload{p, err}
		})
		if err != nil {
			logger.Warn("watch config", "err", err)
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(windowTitle)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
}
