package physics

import (
	"math"
	"testing"

	"github.com/san-kum/cradle/internal/dynamo"
)

const frame = 1.0 / 60

var elastic = Material{Restitution: 1}

func hang(w *World, x float64) BodyID {
	id := w.CreateBody(BodyDef{Position: dynamo.V(x, 350), Radius: 25, Mass: 10, Material: elastic})
	if _, err := w.CreateConstraint(ConstraintDef{Anchor: dynamo.V(x, 100), Body: id, Length: 250, Stiffness: 1}); err != nil {
		panic(err)
	}
	return id
}

func row(w *World, spacing float64, n int) []BodyID {
	ids := make([]BodyID, n)
	for i := range n {
		ids[i] = w.CreateBody(BodyDef{
			Position: dynamo.V(float64(i)*spacing, 0),
			Radius:   25,
			Mass:     10,
			Material: elastic,
		})
	}
	return ids
}

func velX(t *testing.T, w *World, id BodyID) float64 {
	t.Helper()
	v, ok := w.VelocityOf(id)
	if !ok {
		t.Fatalf("body %d missing", id)
	}
	return v.X
}

func TestHangingBodyStaysAtRest(t *testing.T) {
	w := NewWorld()
	id := hang(w, 300)

	for range 600 {
		w.Step(frame)
	}

	p, _ := w.PositionOf(id)
	if p != dynamo.V(300, 350) {
		t.Errorf("expected body exactly at rest, got %+v", p)
	}
	if v, _ := w.VelocityOf(id); !v.IsZero() {
		t.Errorf("expected zero velocity, got %+v", v)
	}
}

func TestConstraintHoldsLength(t *testing.T) {
	w := NewWorld()
	anchor := dynamo.V(0, 0)
	id := w.CreateBody(BodyDef{Position: dynamo.V(250, 0), Radius: 25, Mass: 10})
	if _, err := w.CreateConstraint(ConstraintDef{Anchor: anchor, Body: id, Length: 250}); err != nil {
		t.Fatal(err)
	}

	for i := range 120 {
		w.Step(frame)
		p, _ := w.PositionOf(id)
		if d := p.Dist(anchor); math.Abs(d-250) > 1e-9 {
			t.Fatalf("frame %d: distance %f, want 250", i, d)
		}
	}

	p, _ := w.PositionOf(id)
	if p.X >= 250 {
		t.Errorf("expected body to swing inwards, got x=%f", p.X)
	}
}

func TestCreateConstraintUnknownBody(t *testing.T) {
	w := NewWorld()
	if _, err := w.CreateConstraint(ConstraintDef{Body: 42, Length: 1}); err != dynamo.ErrUnknownBody {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}
}

func TestHeadOnExchange(t *testing.T) {
	w := NewWorld()
	w.Gravity = dynamo.Vec2{}
	ids := row(w, 60, 2)
	w.SetVelocity(ids[0], dynamo.V(100, 0))

	for range 30 {
		w.Step(frame)
	}

	if v := velX(t, w, ids[0]); math.Abs(v) > 1e-6 {
		t.Errorf("striker should stop, got %f", v)
	}
	if v := velX(t, w, ids[1]); math.Abs(v-100) > 1e-6 {
		t.Errorf("target should take full velocity, got %f", v)
	}
}

func TestUnequalMassesElastic(t *testing.T) {
	w := NewWorld()
	w.Gravity = dynamo.Vec2{}
	a := w.CreateBody(BodyDef{Position: dynamo.V(0, 0), Radius: 25, Mass: 10, Material: elastic})
	b := w.CreateBody(BodyDef{Position: dynamo.V(60, 0), Radius: 25, Mass: 30, Material: elastic})
	w.SetVelocity(a, dynamo.V(100, 0))

	for range 30 {
		w.Step(frame)
	}

	// 1D elastic: va' = (m1-m2)/(m1+m2) * v, vb' = 2*m1/(m1+m2) * v
	if v := velX(t, w, a); math.Abs(v-(-50)) > 1e-6 {
		t.Errorf("striker velocity %f, want -50", v)
	}
	if v := velX(t, w, b); math.Abs(v-50) > 1e-6 {
		t.Errorf("target velocity %f, want 50", v)
	}
}

func TestGappedRowPassesMomentum(t *testing.T) {
	w := NewWorld()
	w.Gravity = dynamo.Vec2{}
	ids := row(w, 50.5, 5)
	w.SetPosition(ids[0], dynamo.V(-10, 0))
	w.SetVelocity(ids[0], dynamo.V(100, 0))

	for range 60 {
		w.Step(frame)
	}

	for i := 0; i < 4; i++ {
		if v := velX(t, w, ids[i]); math.Abs(v) > 1e-6 {
			t.Errorf("bob %d should be at rest, got %f", i, v)
		}
	}
	if v := velX(t, w, ids[4]); math.Abs(v-100) > 1e-6 {
		t.Errorf("last bob velocity %f, want 100", v)
	}
}

func TestTouchingRowFuses(t *testing.T) {
	w := NewWorld()
	w.Gravity = dynamo.Vec2{}
	ids := row(w, 50, 5)
	w.SetPosition(ids[0], dynamo.V(-10, 0))
	w.SetVelocity(ids[0], dynamo.V(100, 0))

	for range 60 {
		w.Step(frame)
	}

	if v := velX(t, w, ids[0]); v >= 0 {
		t.Errorf("striker should rebound, got %f", v)
	}
	var momentum float64
	for i, id := range ids {
		v := velX(t, w, id)
		momentum += 10 * v
		if i > 0 && v < 10 {
			t.Errorf("bob %d should move with the cluster, got %f", i, v)
		}
	}
	if math.Abs(momentum-1000) > 1e-6 {
		t.Errorf("momentum %f, want 1000", momentum)
	}
}

func TestContactsReported(t *testing.T) {
	w := NewWorld()
	w.Gravity = dynamo.Vec2{}
	ids := row(w, 50.5, 2)
	w.SetVelocity(ids[0], dynamo.V(120, 0))

	var got []Contact
	for range 10 {
		w.Step(frame)
		got = append(got, w.Contacts()...)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}
	if got[0].A != ids[0] || got[0].B != ids[1] {
		t.Errorf("unexpected pair %+v", got[0])
	}
	if math.Abs(got[0].Speed-120) > 1e-6 {
		t.Errorf("speed %f, want 120", got[0].Speed)
	}
}

func TestRestingContactIsSilent(t *testing.T) {
	w := NewWorld()
	hang(w, 300)
	hang(w, 350)

	for range 60 {
		w.Step(frame)
		if n := len(w.Contacts()); n != 0 {
			t.Fatalf("resting row reported %d contacts", n)
		}
	}
}

func TestKinematicBodyIgnoresGravity(t *testing.T) {
	w := NewWorld()
	id := hang(w, 300)
	w.SetKinematic(id, true)
	w.SetPosition(id, dynamo.V(50, 100))

	for range 30 {
		w.Step(frame)
	}

	p, _ := w.PositionOf(id)
	if p != dynamo.V(50, 100) {
		t.Errorf("kinematic body moved to %+v", p)
	}

	w.SetKinematic(id, false)
	w.Step(frame)
	p, _ = w.PositionOf(id)
	if p.Y <= 100 {
		t.Errorf("expected body to fall once dynamic, got y=%f", p.Y)
	}
}

func TestSetKinematicZeroesVelocity(t *testing.T) {
	w := NewWorld()
	id := w.CreateBody(BodyDef{Radius: 1, Mass: 1})
	w.SetVelocity(id, dynamo.V(5, 5))
	w.SetKinematic(id, false)

	if v, _ := w.VelocityOf(id); !v.IsZero() {
		t.Errorf("expected zero velocity, got %+v", v)
	}
}

func TestClearKeepsPersistent(t *testing.T) {
	w := NewWorld()
	wall := w.CreateBody(BodyDef{Position: dynamo.V(0, 0), Radius: 5, Persistent: true})
	if _, err := w.CreateConstraint(ConstraintDef{Body: wall, Length: 1, Persistent: true}); err != nil {
		t.Fatal(err)
	}
	hang(w, 300)
	hang(w, 350)

	w.Clear(true)

	if len(w.Bodies()) != 1 || w.Body(wall) == nil {
		t.Fatalf("expected only the persistent body, got %d bodies", len(w.Bodies()))
	}
	if len(w.Constraints()) != 1 {
		t.Errorf("expected persistent constraint to survive, got %d", len(w.Constraints()))
	}

	w.Clear(false)
	if len(w.Bodies()) != 0 || len(w.Constraints()) != 0 {
		t.Error("expected empty world after full clear")
	}
}

func TestRemoveBodyDropsConstraints(t *testing.T) {
	w := NewWorld()
	a := hang(w, 300)
	hang(w, 350)

	w.RemoveBody(a)

	if _, ok := w.PositionOf(a); ok {
		t.Error("removed body still readable")
	}
	if len(w.Constraints()) != 1 {
		t.Errorf("expected 1 constraint left, got %d", len(w.Constraints()))
	}

	// IDs are not reused.
	if id := w.CreateBody(BodyDef{Radius: 1, Mass: 1}); id == a {
		t.Error("body id reused")
	}
}

func TestStepZeroDt(t *testing.T) {
	w := NewWorld()
	hang(w, 0)
	w.Step(0)
	if w.Steps() != 0 || w.Time() != 0 {
		t.Error("zero dt should not advance the world")
	}
}
