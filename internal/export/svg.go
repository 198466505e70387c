package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/cradle/internal/analysis"
	"github.com/san-kum/cradle/internal/session"
)

const (
	background  = "#f7f9fa"
	beamColor   = "#4b4b4b"
	stringColor = "#afafaf"
)

// FrameToSVG draws one frame at its own viewport size: beam, strings and
// bobs, with dragged bobs in the highlight color.
func FrameToSVG(f session.Frame) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, f.Width, f.Height, f.Width, f.Height, background)

	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="8" stroke-linecap="round"/>
`, f.Beam.From.X, f.Beam.From.Y, f.Beam.To.X, f.Beam.To.Y, beamColor)

	sb.WriteString(fmt.Sprintf("<g stroke=\"%s\" stroke-width=\"2\">\n", stringColor))
	for _, b := range f.Bobs {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, b.Anchor.X, b.Anchor.Y, b.Position.X, b.Position.Y)
	}
	sb.WriteString("</g>\n")

	for _, b := range f.Bobs {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.Position.X, b.Position.Y, b.Radius, b.DrawColor().Hex())
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PortraitToSVG draws a phase portrait as a single polyline scaled to fill
// the image with a 10% margin.
func PortraitToSVG(p *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	points := p.Points

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, pt := range points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, pt := range points {
		x := (pt.X - minX) / rangeX * float64(width)
		y := float64(height) - (pt.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func WriteFile(path, svg string) error {
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.WriteString(f, svg)
	return err
}
