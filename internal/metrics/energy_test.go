package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

func frame(bobs ...session.BobView) session.Frame {
	for i := range bobs {
		bobs[i].Index = i
	}
	return session.Frame{Bobs: bobs}
}

func TestTotalEnergy(t *testing.T) {
	f := frame(
		session.BobView{Mass: 10, Rest: dynamo.V(0, 350), Position: dynamo.V(0, 350), Velocity: dynamo.V(3, 4)},
		session.BobView{Mass: 10, Rest: dynamo.V(50, 350), Position: dynamo.V(60, 340)},
	)

	// ke = 0.5*10*25, pe = 10*1000*10
	expected := 125.0 + 100000.0
	if e := TotalEnergy(f, 1000); math.Abs(e-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, e)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(1000)
	m.Observe(frame(session.BobView{Mass: 1, Velocity: dynamo.V(1, 0)}))
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(0)
	m.Observe(frame(session.BobView{Mass: 2, Velocity: dynamo.V(10, 0)}))
	m.Observe(frame(session.BobView{Mass: 2, Velocity: dynamo.V(9, 0)}))

	// 100 -> 81
	if math.Abs(m.Value()-0.19) > 1e-9 {
		t.Errorf("expected drift 0.19, got %f", m.Value())
	}
}

func TestMomentum(t *testing.T) {
	m := NewMomentum()
	m.Observe(frame(
		session.BobView{Mass: 10, Velocity: dynamo.V(-6, 1)},
		session.BobView{Mass: 10, Velocity: dynamo.V(4, 0)},
	))
	if math.Abs(m.Value()-(-20)) > 1e-9 {
		t.Errorf("expected momentum -20, got %f", m.Value())
	}
}

func TestDisplacement(t *testing.T) {
	d := NewDisplacement()
	d.Observe(frame(
		session.BobView{Rest: dynamo.V(300, 350), Position: dynamo.V(280, 340)},
		session.BobView{Rest: dynamo.V(350, 350), Position: dynamo.V(351, 350)},
	))
	d.Observe(frame(
		session.BobView{Rest: dynamo.V(300, 350), Position: dynamo.V(295, 350)},
		session.BobView{Rest: dynamo.V(350, 350), Position: dynamo.V(400, 300)},
	))

	per := d.PerBob()
	if per[0] != 20 || per[1] != 50 {
		t.Errorf("unexpected per-bob displacement %v", per)
	}
	if d.Value() != 50 {
		t.Errorf("expected 50, got %f", d.Value())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCollisions(t *testing.T) {
	c := NewCollisions()
	c.Observe(session.Frame{Contacts: []session.Collision{{A: 1, B: 2, Speed: 10}}})
	c.Observe(session.Frame{Contacts: []session.Collision{{A: 2, B: 3}, {A: 3, B: 4}}})
	if c.Value() != 3 {
		t.Errorf("expected 3 collisions, got %f", c.Value())
	}
}

func TestDefaults(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults(1000) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
