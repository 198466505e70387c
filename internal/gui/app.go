// Package gui is a raylib window onto a live cradle.
package gui

import (
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/cradle/internal/audio"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/drag"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/metrics"
	"github.com/san-kum/cradle/internal/session"
)

const (
	maxTelemetry = 240
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

// Keys the window listens for.
var watchedKeys = []int32{
	rl.KeyQ, rl.KeySpace, rl.KeyR, rl.KeyUp, rl.KeyDown, rl.KeyG, rl.KeyM,
	rl.KeyLeftBracket, rl.KeyRightBracket, rl.KeyH,
	rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive,
	rl.KeySix, rl.KeySeven, rl.KeyEight, rl.KeyNine,
}

// Input is one frame's worth of window input.
type Input struct {
	Mouse    dynamo.Vec2
	Pressed  bool
	Released bool
	Down     bool
	OnScreen bool
	Keys     []int32

	Resized       bool
	Width, Height float64
}

type App struct {
	s       *session.Session
	Name    string
	Running bool
	Help    bool

	// Hover is the bob under the cursor, or -1.
	Hover    int
	Selected int

	Telemetry []float64
	gravity   float64
	lastErr   error

	Audio *audio.Processor
	Font  rl.Font
}

// New wraps a session. It does not touch the window, so it is safe to call
// before InitWindow.
func New(s *session.Session, name string, proc *audio.Processor) *App {
	return &App{
		s:         s,
		Name:      name,
		Running:   true,
		Hover:     -1,
		Telemetry: make([]float64, 0, maxTelemetry),
		gravity:   s.Settings().Sim.Gravity,
		Audio:     proc,
	}
}

func (a *App) Session() *session.Session { return a.s }

func initWindow(w, h int32, fps int32) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(w, h, "cradle")
	rl.SetTargetFPS(fps)
	rl.SetExitKey(0)
}

// loadFont uses Liberation Mono when it is installed and the raylib default
// font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens a window sized to the session viewport and blocks until it is
// closed.
func Run(s *session.Session, name string, withAudio bool) {
	sim := s.Settings().Sim
	initWindow(int32(sim.Width), int32(sim.Height), int32(s.FPS()))
	defer rl.CloseWindow()

	var proc *audio.Processor
	if withAudio {
		proc = audio.NewProcessor()
		if err := proc.Start(); err != nil {
			slog.Warn("continuing without audio", "error", err)
			proc = nil
		} else {
			defer proc.Stop()
		}
	}

	app := New(s, name, proc)
	app.Font = loadFont()
	slog.Info("gui started", "preset", name, "bobs", s.Config().BobCount)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.HandleInput(pollInput()) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func pollInput() Input {
	m := rl.GetMousePosition()
	in := Input{
		Mouse:    dynamo.V(float64(m.X), float64(m.Y)),
		Pressed:  rl.IsMouseButtonPressed(rl.MouseLeftButton),
		Released: rl.IsMouseButtonReleased(rl.MouseLeftButton),
		Down:     rl.IsMouseButtonDown(rl.MouseLeftButton),
		OnScreen: rl.IsCursorOnScreen(),
		Resized:  rl.IsWindowResized(),
		Width:    float64(rl.GetScreenWidth()),
		Height:   float64(rl.GetScreenHeight()),
	}
	for _, k := range watchedKeys {
		if rl.IsKeyPressed(k) {
			in.Keys = append(in.Keys, k)
		}
	}
	return in
}

// HandleInput applies one frame of input to the session. It reports whether
// the user asked to quit.
func (a *App) HandleInput(in Input) bool {
	if in.Resized {
		a.apply(func() error { return a.s.Resize(in.Width, in.Height) })
	}

	cfg := a.s.Config()
	for _, k := range in.Keys {
		switch k {
		case rl.KeyQ:
			return true
		case rl.KeySpace:
			a.Running = !a.Running
		case rl.KeyH:
			a.Help = !a.Help
		case rl.KeyR:
			a.command(config.Reset{})
		case rl.KeyUp:
			a.command(config.SetBobCount{N: cfg.BobCount + 1})
		case rl.KeyDown:
			a.command(config.SetBobCount{N: cfg.BobCount - 1})
		case rl.KeyG:
			a.command(config.SetGap{On: !cfg.ContactGap})
		case rl.KeyM:
			mode := config.MassIndividual
			if cfg.MassMode == config.MassIndividual {
				mode = config.MassUniform
			}
			a.command(config.SetMassMode{Mode: mode})
		case rl.KeyLeftBracket, rl.KeyRightBracket:
			// Overrides are edited from their stored value even in uniform
			// mode, where MassRatio reports 1.
			delta := config.MassRatioStep
			if k == rl.KeyLeftBracket {
				delta = -delta
			}
			if a.Selected < len(cfg.MassOverrides) {
				a.command(config.SetMassOverride{Index: a.Selected, Ratio: cfg.MassOverrides[a.Selected] + delta})
			}
		default:
			if k >= rl.KeyOne && k <= rl.KeyNine {
				if i := int(k - rl.KeyOne); i < cfg.BobCount {
					a.Selected = i
				}
			}
		}
		cfg = a.s.Config()
	}

	p := in.Mouse
	switch {
	case !in.OnScreen:
		a.s.PointerLeave()
	case in.Pressed:
		a.s.PointerDown(p.X, p.Y)
	case in.Released:
		a.s.PointerUp()
	case in.Down:
		a.s.PointerMove(p.X, p.Y)
	}

	a.Hover = a.hovered(p)
	return false
}

// hovered is the bob a press at p would grab.
func (a *App) hovered(p dynamo.Vec2) int {
	if a.s.DragState() == drag.Dragging {
		i, _ := a.s.Dragged()
		return i
	}
	for _, b := range a.s.Frame().Bobs {
		if b.Position.Dist(p) < b.Radius*drag.GrabFactor {
			return b.Index
		}
	}
	return -1
}

func (a *App) command(cmd config.Command) {
	a.apply(func() error { return a.s.Apply(cmd) })
}

func (a *App) apply(fn func() error) {
	if err := fn(); err != nil {
		slog.Error("rebuild failed", "error", err)
		a.lastErr = err
		return
	}
	a.lastErr = nil
	a.Telemetry = a.Telemetry[:0]
	a.Selected = min(a.Selected, a.s.Config().BobCount-1)
}

// Update advances the cradle one frame when running.
func (a *App) Update() {
	if !a.Running {
		return
	}
	f := a.s.Step()
	if a.Audio != nil {
		a.Audio.OnFrame(f)
	}
	a.Telemetry = append(a.Telemetry, metrics.TotalEnergy(f, a.gravity))
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	f := a.s.Frame()
	a.drawCradle(f)
	a.DrawHUD(f)
	if a.Help {
		a.drawHelp()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD(f session.Frame) {
	cfg := a.s.Config()
	a.drawText("cradle", 20, 16, 24, ColText)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 120, 21, 16, ColTextDim)

	status, col := "RUNNING", ColText
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, int(f.Width)-100, 20, 16, col)

	gap := "off"
	if cfg.ContactGap {
		gap = "on"
	}
	a.drawText(fmt.Sprintf("bobs %d  gap %s  mass %s  selected %d", cfg.BobCount, gap, cfg.MassMode, a.Selected+1), 20, 48, 14, ColTextDim)
	if a.lastErr != nil {
		a.drawText(a.lastErr.Error(), 20, 68, 14, rl.Red)
	}

	a.DrawTelemetry(20, int(f.Height)-90, 300, 50)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 20, int(f.Height)-30, 14, ColTextDim)
	a.drawText("[H] HELP  [Q] QUIT", int(f.Width)-180, int(f.Height)-30, 14, ColTextDim)

	if a.Audio != nil && a.Audio.Active {
		level := (a.Audio.Bass + a.Audio.Mid + a.Audio.High) / 3.0
		bars := min(int(level*20), 20)
		meter := ""
		for i := 0; i < bars; i++ {
			meter += "|"
		}
		a.drawText(fmt.Sprintf("AUDIO [%-20s]", meter), 340, int(f.Height)-30, 14, ColTextDim)
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawHelp() {
	lines := []string{
		"drag a bob with the mouse and let go",
		"SPACE  pause / resume",
		"R      reset",
		"UP/DN  more / fewer bobs",
		"G      contact gap",
		"M      uniform / individual mass",
		"1-9    select bob",
		"[ ]    lighter / heavier",
	}
	rl.DrawRectangle(20, 90, 340, int32(24*len(lines)+20), rl.NewColor(255, 255, 255, 230))
	for i, l := range lines {
		a.drawText(l, 32, 100+24*i, 16, ColText)
	}
}
