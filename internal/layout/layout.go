// Package layout derives the geometry of a cradle from its configuration.
// Build is pure: the same configuration and viewport always produce the same
// layout.
package layout

import (
	"math"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
)

const (
	BaseRadius   = 25.0
	StringLength = 250.0
	PivotY       = 100.0
	// DefaultGap is the rest clearance between neighbours when the contact
	// gap is on. It is tuned against internal/physics: wide enough that a
	// resting row never registers contacts, small enough to be invisible.
	DefaultGap = 0.5
	// MassScale converts a mass ratio into engine mass units.
	MassScale = 10.0
	// BeamMargin is added per bob to the drawn width of the top beam.
	BeamMargin = 20.0
)

var (
	Accent  = dynamo.RGB{R: 28, G: 176, B: 246}
	Dragged = dynamo.RGB{R: 255, G: 127, B: 14}
)

// Geometry is the viewport and the fixed cradle dimensions.
type Geometry struct {
	Width        float64
	Height       float64
	PivotY       float64
	BaseRadius   float64
	StringLength float64
	Gap          float64
}

func DefaultGeometry(width, height float64) Geometry {
	return Geometry{
		Width:        width,
		Height:       height,
		PivotY:       PivotY,
		BaseRadius:   BaseRadius,
		StringLength: StringLength,
		Gap:          DefaultGap,
	}
}

type Bob struct {
	Index       int
	MassRatio   float64
	TargetMass  float64
	Radius      float64
	Rest        dynamo.Vec2
	Color       dynamo.RGB
	Restitution float64
	Friction    float64
	AirFriction float64
}

type String struct {
	Index     int
	Anchor    dynamo.Vec2
	Length    float64
	Stiffness float64
}

// Beam is the decorative bar the strings hang from.
type Beam struct {
	From dynamo.Vec2 `json:"from"`
	To   dynamo.Vec2 `json:"to"`
}

type Layout struct {
	Config   config.Cradle
	Geometry Geometry
	Spacing  float64
	Bobs     []Bob
	Strings  []String
	Beam     Beam
}

// Build places the bobs in a row centred on the viewport, each hanging at
// rest below its own anchor.
func Build(cfg config.Cradle, geo Geometry) Layout {
	cfg = cfg.Clamp()
	n := cfg.BobCount

	gap := 0.0
	if cfg.ContactGap {
		gap = geo.Gap
	}
	spacing := 2*geo.BaseRadius + gap
	startX := geo.Width/2 - spacing*float64(n-1)/2
	restY := geo.PivotY + geo.StringLength

	l := Layout{
		Config:   cfg,
		Geometry: geo,
		Spacing:  spacing,
		Bobs:     make([]Bob, n),
		Strings:  make([]String, n),
	}

	for i := range n {
		x := startX + float64(i)*spacing
		ratio := cfg.MassRatio(i)

		radius := geo.BaseRadius
		if cfg.MassMode == config.MassIndividual {
			radius = geo.BaseRadius * math.Sqrt(ratio)
		}

		l.Bobs[i] = Bob{
			Index:       i,
			MassRatio:   ratio,
			TargetMass:  ratio * MassScale,
			Radius:      radius,
			Rest:        dynamo.V(x, restY),
			Color:       BobColor(i, cfg.MassMode),
			Restitution: 1,
		}
		l.Strings[i] = String{
			Index:     i,
			Anchor:    dynamo.V(x, geo.PivotY),
			Length:    geo.StringLength,
			Stiffness: 1,
		}
	}

	half := (2*geo.BaseRadius + BeamMargin) * float64(n) / 2
	l.Beam = Beam{
		From: dynamo.V(geo.Width/2-half, geo.PivotY),
		To:   dynamo.V(geo.Width/2+half, geo.PivotY),
	}
	return l
}

// BobColor is the accent color in uniform mode and a hue wheel step of 40
// degrees per bob in individual mode.
func BobColor(i int, mode config.MassMode) dynamo.RGB {
	if mode != config.MassIndividual {
		return Accent
	}
	return HSV(float64((i*40)%360), 0.6, 0.9)
}

// HSV converts hue in degrees and saturation/value in [0,1] to RGB.
func HSV(h, s, v float64) dynamo.RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return dynamo.RGB{R: to8(r), G: to8(g), B: to8(b)}
}
