// Package viewer is the windowed front end, built on ebiten.
package viewer

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font"

	"go.creack.net/chipple/host"
	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

const statusLines = 2

type Options struct {
	Title string
	Scale int       // Window pixels per cell.
	Face  font.Face // Status font, bitmapfont.Face when nil.
	On    color.RGBA
	Off   color.RGBA

	Logger *log.Logger // Defaults to log.DefaultConfig.
}

// Game implements ebiten.Game interface.
type Game struct {
	ctx     context.Context
	session *host.Session
	opts    Options

	screen *ebiten.Image // One pixel per cell.
	pix    []byte
	face   text.Face

	showStatus bool
	halted     bool
}

func NewGame(ctx context.Context, session *host.Session, opts Options) *Game {
	if opts.Scale <= 0 {
		opts.Scale = 10
	}
	if opts.Face == nil {
		opts.Face = bitmapfont.Face
	}
	if opts.On == (color.RGBA{}) && opts.Off == (color.RGBA{}) {
		opts.On, opts.Off = host.ColorOn, host.ColorOff
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithConfig(log.DefaultConfig())
	}
	return &Game{
		ctx:     ctx,
		session: session,
		opts:    opts,

		screen: ebiten.NewImage(op.ScreenWidth, op.ScreenHeight),
		pix:    make([]byte, 4*op.ScreenWidth*op.ScreenHeight),
		face:   text.NewGoXFace(opts.Face),

		showStatus: true,
	}
}

func (g *Game) lineHeight() float64 {
	m := g.face.Metrics()
	return m.HLineGap + m.HAscent + m.HDescent
}

func (g *Game) statusHeight() int {
	if !g.showStatus {
		return 0
	}
	return int(g.lineHeight()*statusLines) + 4
}

// Update handles the keys and runs the cycles of the frame.
// Update is called every tick (1/60 [s] by default).
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.session.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.session.StepOnce()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.session.Reset()
		g.halted = false
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.showStatus = !g.showStatus
	}

	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	if _, err := g.session.Tick(g.ctx); err != nil && !g.halted {
		// Keep the window open on the last frame, a reset restarts.
		g.halted = true
		st := g.session.Snapshot()
		g.opts.Logger.Info("Program stopped",
			log.Hex("pc", st.PC),
			log.Int("cycle", st.Cycle),
			log.Err(err))
	}
	return nil
}

// Draw blits the grid scaled up, with the status below.
func (g *Game) Draw(screen *ebiten.Image) {
	st := g.session.Snapshot()

	host.Frame(g.pix, &st.Screen, g.opts.On, g.opts.Off)
	g.screen.WritePixels(g.pix)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
	screen.DrawImage(g.screen, opts)

	if !g.showStatus {
		return
	}
	textOp := &text.DrawOptions{}
	textOp.GeoM.Translate(2, float64(op.ScreenHeight*g.opts.Scale)+2)
	textOp.LineSpacing = g.lineHeight()
	textOp.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, status(st), g.face, textOp)
}

func status(st host.State) string {
	state := "running"
	switch {
	case st.Err != nil:
		state = st.Err.Error()
	case st.Paused:
		state = "paused"
	}
	return fmt.Sprintf("PC %03X  I %03X  cycle %d  %s\n[space] pause  [n] step  [r] reset  [h] hide  [q] quit", st.PC, st.I, st.Cycle, state)
}

// Layout returns the logical screen size, the grid and the status band.
func (g *Game) Layout(_, _ int) (screenWidth, screenHeight int) {
	return op.ScreenWidth * g.opts.Scale, op.ScreenHeight*g.opts.Scale + g.statusHeight()
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, in *vm.Interpreter, cyclesPerFrame int, opts Options) error {
	g := NewGame(ctx, host.NewSession(in, cyclesPerFrame, false), opts)

	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		InitUnfocused: true,
	}); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
