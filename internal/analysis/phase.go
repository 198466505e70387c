package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/cradle/internal/session"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Bob    int
	Points []struct{ X, Y float64 }
}

// GeneratePhasePortrait pairs each recorded x position of a bob with its
// central-difference velocity.
func GeneratePhasePortrait(rec *session.Recording, bob int, dt float64) *PhasePortrait2D {
	xs := rec.Series(bob)
	if len(xs) < 3 || dt <= 0 {
		return nil
	}

	portrait := &PhasePortrait2D{
		Bob:    bob,
		Points: make([]struct{ X, Y float64 }, 0, len(xs)-2),
	}
	for i := 1; i < len(xs)-1; i++ {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: xs[i],
			Y: (xs[i+1] - xs[i-1]) / (2 * dt),
		})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// zero velocity line
	if minY <= 0 && minY+rangeY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := range width {
			canvas[row][col] = '─'
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Swing describes how far and how fast one bob oscillated.
type Swing struct {
	Bob       int
	Amplitude float64
	Period    float64
}

// SwingSummary reports half the peak-to-peak x range and the dominant period
// of every bob. Period is zero for bobs that never moved.
func SwingSummary(rec *session.Recording, dt float64) []Swing {
	width := 0
	for _, row := range rec.Positions {
		width = max(width, len(row))
	}

	out := make([]Swing, 0, width)
	for b := range width {
		xs := rec.Series(b)
		if len(xs) == 0 {
			continue
		}
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		s := Swing{Bob: b, Amplitude: (hi - lo) / 2}
		if period, err := DominantPeriod(xs, dt); err == nil {
			s.Period = period
		}
		out = append(out, s)
	}
	return out
}
