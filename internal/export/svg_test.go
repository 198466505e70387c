package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/cradle/internal/analysis"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/session"
)

func TestFrameToSVG(t *testing.T) {
	s, err := session.New(config.GetPreset("classic"))
	if err != nil {
		t.Fatal(err)
	}
	svg := FrameToSVG(s.Frame())

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %q", svg[:min(len(svg), 40)])
	}
	if n := strings.Count(svg, "<circle"); n != 5 {
		t.Errorf("expected 5 bobs, got %d", n)
	}
	// beam plus one string per bob
	if n := strings.Count(svg, "<line"); n != 6 {
		t.Errorf("expected 6 lines, got %d", n)
	}
	if !strings.Contains(svg, `width="800"`) {
		t.Error("svg should use the frame size")
	}
}

func TestPortraitToSVG(t *testing.T) {
	p := &analysis.PhasePortrait2D{Points: []struct{ X, Y float64 }{{0, 0}, {1, 1}, {2, 0}}}
	svg := PortraitToSVG(p, 200, 100, "#1cb0f6")

	if !strings.Contains(svg, `stroke="#1cb0f6"`) {
		t.Error("missing stroke color")
	}
	if n := strings.Count(svg, " L"); n != 2 {
		t.Errorf("expected 2 segments, got %d", n)
	}
}

func TestPortraitToSVGTooShort(t *testing.T) {
	if svg := PortraitToSVG(nil, 10, 10, "#000"); svg != "" {
		t.Error("nil portrait should draw nothing")
	}
	p := &analysis.PhasePortrait2D{Points: []struct{ X, Y float64 }{{0, 0}}}
	if svg := PortraitToSVG(p, 10, 10, "#000"); svg != "" {
		t.Error("single point should draw nothing")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	if err := WriteFile(path, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("got %q", data)
	}
	if err := WriteFile(path, ""); err == nil {
		t.Error("empty svg should fail")
	}
}
