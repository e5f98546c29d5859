package viewer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/smasonuk/lsystree"
	"github.com/smasonuk/lsystree/render"
)

const (
	dragSpeed = 1.0 / 200
	zoomStep  = 0.9
)

// Options configure the viewer window.
type Options struct {
	Width      int
	Height     int
	Background color.RGBA
	Distance   float64
	Title      string
}

// OptionsFromConfig reads the window settings of cfg, falling back to the
// defaults for unset fields.
func OptionsFromConfig(v lsystree.ViewConfig) Options {
	def := lsystree.DefaultConfig().View
	opts := Options{
		Width:    v.Width,
		Height:   v.Height,
		Distance: v.Distance,
		Title:    "lsystree",
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Distance <= 0 {
		opts.Distance = def.Distance
	}
	bg := v.Background
	if bg == "" {
		bg = def.Background
	}
	c, err := lsystree.ParseColor(bg)
	if err != nil {
		c = lsystree.MustParseColor(def.Background)
	}
	opts.Background = c
	return opts
}

type binding struct {
	key     ebiten.Key
	action  Action
	shifted Action
}

var bindings = []binding{
	{ebiten.KeyG, ActionGrow, ActionGrow},
	{ebiten.KeyU, ActionUndo, ActionUndo},
	{ebiten.KeyR, ActionReset, ActionReset},
	{ebiten.KeyArrowUp, ActionLonger, ActionLonger},
	{ebiten.KeyArrowDown, ActionShorter, ActionShorter},
	{ebiten.KeyArrowRight, ActionWider, ActionWider},
	{ebiten.KeyArrowLeft, ActionNarrower, ActionNarrower},
	{ebiten.KeyT, ActionRatioUp, ActionRatioDown},
	{ebiten.KeyY, ActionYawUp, ActionYawDown},
	{ebiten.KeyP, ActionPitchUp, ActionPitchDown},
	{ebiten.KeyO, ActionRollUp, ActionRollDown},
	{ebiten.KeyC, ActionNextLeafColor, ActionNextLeafColor},
}

const help = "G grow  U undo  R reset  arrows size  T ratio  Y/P/O angles (shift: -)  C leaf color  drag orbit  wheel zoom"

// Game is the ebiten game showing one plant.
type Game struct {
	ctrl     *Controller
	renderer *render.Renderer
	opts     Options
	watcher  *Watcher

	frag   *lsystree.Fragment
	polys  []render.Polygon
	status string

	dragging     bool
	lastX, lastY int
}

// NewGame builds the plant's current generation and frames it.
func NewGame(sys *lsystree.LSystem, opts Options) (*Game, error) {
	cam := render.NewCamera(mgl64.Vec3{}, opts.Distance)
	g := &Game{
		ctrl:     NewController(sys),
		renderer: render.NewRenderer(cam, opts.Width, opts.Height),
		opts:     opts,
	}
	frag, err := sys.Build()
	if err != nil {
		return nil, err
	}
	g.setFragment(frag, true)
	return g, nil
}

// Watch makes the game reload its plant from w. cfg is the config the
// current plant was made from.
func (g *Game) Watch(w *Watcher, cfg *lsystree.Config) {
	g.watcher = w
	g.ctrl.Track(cfg)
}

func (g *Game) setFragment(frag *lsystree.Fragment, refit bool) {
	g.frag = frag
	if refit && frag.Len() > 0 {
		g.renderer.Camera.Fit(frag.Bounds())
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg := <-g.watcher.Configs():
		frag, regrown, err := g.ctrl.Reload(cfg)
		if err != nil {
			g.status = err.Error()
			return
		}
		g.setFragment(frag, true)
		g.status = "reloaded"
		if regrown {
			g.status = "rules updated"
		}
	case err := <-g.watcher.Errors():
		g.status = err.Error()
	default:
	}
}

func (g *Game) handleKeys() {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for _, b := range bindings {
		if !inpututil.IsKeyJustPressed(b.key) {
			continue
		}
		a := b.action
		if shift {
			a = b.shifted
		}
		frag, rebuild, err := g.ctrl.Do(a)
		if err != nil {
			// The last good fragment stays on screen.
			g.status = err.Error()
			continue
		}
		g.status = a.String()
		g.setFragment(frag, rebuild)
	}
}

func (g *Game) handleMouse() {
	cam := g.renderer.Camera
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.dragging {
		x, y := ebiten.CursorPosition()
		cam.Orbit(-float64(x-g.lastX)*dragSpeed, float64(y-g.lastY)*dragSpeed)
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		cam.Zoom(math.Pow(zoomStep, dy))
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.pollWatcher()
	g.handleKeys()
	g.handleMouse()

	polys, err := g.renderer.Render(g.frag)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	g.polys = polys
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.opts.Background)
	drawPolygons(screen, g.polys)

	sys := g.ctrl.System()
	a := sys.Angles()
	msg := fmt.Sprintf("step %d  parts %d  polys %d  yaw %.0f pitch %.0f roll %.0f  FPS %0.1f\n%s",
		sys.Step(), g.frag.Len(), len(g.polys), a.Yaw, a.Pitch, a.Roll, ebiten.ActualFPS(), help)
	if g.status != "" {
		msg += "\n" + g.status
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.opts.Width, g.opts.Height
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
