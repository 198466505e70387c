package layout

import (
	"math"
	"testing"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
)

func geo() Geometry { return DefaultGeometry(800, 600) }

func TestBuildSymmetric(t *testing.T) {
	for n := config.MinBobs; n <= config.MaxBobs; n++ {
		for _, gap := range []bool{false, true} {
			l := Build(config.Cradle{BobCount: n, ContactGap: gap}, geo())
			if len(l.Bobs) != n {
				t.Fatalf("n=%d: got %d bobs", n, len(l.Bobs))
			}
			for i := range n {
				sum := l.Bobs[i].Rest.X + l.Bobs[n-1-i].Rest.X
				if math.Abs(sum-800) > 1e-9 {
					t.Errorf("n=%d gap=%v: bobs %d and %d not mirrored (sum %f)", n, gap, i, n-1-i, sum)
				}
			}
		}
	}
}

func TestBuildSpacing(t *testing.T) {
	tests := []struct {
		gap  bool
		want float64
	}{
		{false, 2 * BaseRadius},
		{true, 2*BaseRadius + DefaultGap},
	}
	for _, tt := range tests {
		l := Build(config.Cradle{BobCount: 5, ContactGap: tt.gap}, geo())
		for i := 1; i < len(l.Bobs); i++ {
			d := l.Bobs[i].Rest.X - l.Bobs[i-1].Rest.X
			if math.Abs(d-tt.want) > 1e-9 {
				t.Errorf("gap=%v: spacing %f, want %f", tt.gap, d, tt.want)
			}
		}
	}
}

func TestBuildFiveUniformPositions(t *testing.T) {
	l := Build(config.Cradle{BobCount: 5}, geo())
	for i, b := range l.Bobs {
		want := dynamo.V(300+50*float64(i), PivotY+StringLength)
		if b.Rest != want {
			t.Errorf("bob %d at %+v, want %+v", i, b.Rest, want)
		}
		if l.Strings[i].Anchor != dynamo.V(want.X, PivotY) {
			t.Errorf("anchor %d at %+v", i, l.Strings[i].Anchor)
		}
	}
}

func TestBuildClampsCount(t *testing.T) {
	l := Build(config.Cradle{BobCount: 1}, geo())
	if len(l.Bobs) != 2 {
		t.Errorf("expected 2 bobs, got %d", len(l.Bobs))
	}
}

func TestUniformBobs(t *testing.T) {
	l := Build(config.Cradle{
		BobCount:      4,
		MassMode:      config.MassUniform,
		MassOverrides: []float64{3, 0.5, 2, 1},
	}, geo())

	for _, b := range l.Bobs {
		if b.Radius != BaseRadius {
			t.Errorf("bob %d radius %f, want %f", b.Index, b.Radius, BaseRadius)
		}
		if b.Color != Accent {
			t.Errorf("bob %d color %v, want accent", b.Index, b.Color)
		}
		if b.TargetMass != MassScale {
			t.Errorf("bob %d mass %f, want %f", b.Index, b.TargetMass, MassScale)
		}
		if b.Restitution != 1 || b.Friction != 0 || b.AirFriction != 0 {
			t.Errorf("bob %d has non-ideal material", b.Index)
		}
	}
}

func TestIndividualRadiusMonotonic(t *testing.T) {
	l := Build(config.Cradle{
		BobCount:      4,
		MassMode:      config.MassIndividual,
		MassOverrides: []float64{0.5, 1, 2, 3},
	}, geo())

	for i := 1; i < len(l.Bobs); i++ {
		if l.Bobs[i].Radius <= l.Bobs[i-1].Radius {
			t.Errorf("radius not increasing with mass at %d", i)
		}
	}
	if r := l.Bobs[1].Radius; r != BaseRadius {
		t.Errorf("ratio 1 should keep base radius, got %f", r)
	}
	if m := l.Bobs[3].TargetMass; m != 30 {
		t.Errorf("expected target mass 30, got %f", m)
	}
}

func TestIndividualColors(t *testing.T) {
	cfg := config.Cradle{BobCount: 10, MassMode: config.MassIndividual}
	a := Build(cfg, geo())
	b := Build(cfg, DefaultGeometry(1200, 900))

	for i := range a.Bobs {
		if a.Bobs[i].Color != b.Bobs[i].Color {
			t.Errorf("color of bob %d depends on viewport", i)
		}
	}
	if a.Bobs[0].Color != a.Bobs[9].Color {
		t.Error("hue should wrap after 9 bobs")
	}
	if a.Bobs[0].Color == a.Bobs[1].Color {
		t.Error("neighbouring bobs share a color")
	}
}

func TestHSV(t *testing.T) {
	tests := []struct {
		h    float64
		want dynamo.RGB
	}{
		{0, dynamo.RGB{R: 230, G: 92, B: 92}},
		{120, dynamo.RGB{R: 92, G: 230, B: 92}},
		{240, dynamo.RGB{R: 92, G: 92, B: 230}},
		{360, dynamo.RGB{R: 230, G: 92, B: 92}},
	}
	for _, tt := range tests {
		if got := HSV(tt.h, 0.6, 0.9); !near(got, tt.want) {
			t.Errorf("HSV(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func near(a, b dynamo.RGB) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 1 && d(a.G, b.G) <= 1 && d(a.B, b.B) <= 1
}

func TestBeamExtent(t *testing.T) {
	l := Build(config.Cradle{BobCount: 5}, geo())
	width := l.Beam.To.X - l.Beam.From.X
	if math.Abs(width-(2*BaseRadius+BeamMargin)*5) > 1e-9 {
		t.Errorf("beam width %f", width)
	}
	if l.Beam.From.X+l.Beam.To.X != 800 {
		t.Error("beam not centred")
	}
}
