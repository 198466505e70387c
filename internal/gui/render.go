package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

var (
	ColBg      = rl.NewColor(0xf7, 0xf9, 0xfa, 255)
	ColBeam    = rl.NewColor(0xe5, 0xe5, 0xe5, 255)
	ColString  = rl.NewColor(0xaf, 0xaf, 0xaf, 255)
	ColText    = rl.NewColor(60, 60, 60, 255)
	ColTextDim = rl.NewColor(150, 150, 150, 255)
	ColHover   = rl.NewColor(0, 0, 0, 40)
)

const (
	beamThickness   = 8
	stringThickness = 2
)

func vec(p dynamo.Vec2) rl.Vector2 { return rl.NewVector2(float32(p.X), float32(p.Y)) }

func color(c dynamo.RGB) rl.Color { return rl.NewColor(c.R, c.G, c.B, 255) }

func (a *App) drawCradle(f session.Frame) {
	rl.DrawLineEx(vec(f.Beam.From), vec(f.Beam.To), beamThickness, ColBeam)

	for _, b := range f.Bobs {
		rl.DrawLineEx(vec(b.Anchor), vec(b.Position), stringThickness, ColString)
	}

	for _, b := range f.Bobs {
		c := vec(b.Position)
		r := float32(b.Radius)
		rl.DrawCircleV(c, r, color(b.DrawColor()))
		if b.Index == a.Hover {
			rl.DrawCircleV(c, r, ColHover)
		}
		if b.Index == a.Selected {
			rl.DrawCircleLines(int32(c.X), int32(c.Y), r+3, ColTextDim)
		}
	}
}

// DrawTelemetry plots the recent total energy as a line strip.
func (a *App) DrawTelemetry(x, y, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	lo, hi := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, v := range a.Telemetry {
		px := float32(x) + float32(i)/float32(len(a.Telemetry))*float32(width)
		py := float32(y+height) - float32((v-lo)/(hi-lo))*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColTextDim)
	a.drawText("energy", x+width+10, y+height-10, 14, ColTextDim)
}
