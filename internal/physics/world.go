package physics

import (
	"slices"

	"github.com/san-kum/cradle/internal/dynamo"
)

const (
	DefaultGravity    = 1000.0
	DefaultSubsteps   = 8
	DefaultIterations = 20
	// DefaultRestThreshold is the approach speed (px/s) below which a
	// contact is treated as resting and gets no bounce.
	DefaultRestThreshold = 1.0
)

// World is a 2D circle world with anchor constraints. It is not safe for
// concurrent use.
type World struct {
	Gravity       dynamo.Vec2
	Substeps      int
	Iterations    int
	RestThreshold float64

	bodies      []*Body
	constraints []*Constraint
	nextBody    BodyID
	nextCons    ConstraintID
	contacts    []Contact
	scratch     []manifold
	time        float64
	steps       int
}

func NewWorld() *World {
	return &World{
		Gravity:       dynamo.V(0, DefaultGravity),
		Substeps:      DefaultSubsteps,
		Iterations:    DefaultIterations,
		RestThreshold: DefaultRestThreshold,
	}
}

func (w *World) CreateBody(def BodyDef) BodyID {
	w.nextBody++
	w.bodies = append(w.bodies, newBody(w.nextBody, def))
	return w.nextBody
}

// CreateConstraint returns ErrUnknownBody if the target body does not exist.
func (w *World) CreateConstraint(def ConstraintDef) (ConstraintID, error) {
	b := w.body(def.Body)
	if b == nil {
		return 0, dynamo.ErrUnknownBody
	}
	stiffness := def.Stiffness
	if stiffness <= 0 {
		stiffness = 1
	}
	w.nextCons++
	w.constraints = append(w.constraints, &Constraint{
		id:         w.nextCons,
		anchor:     def.Anchor,
		body:       b,
		length:     def.Length,
		stiffness:  stiffness,
		persistent: def.Persistent,
	})
	return w.nextCons, nil
}

// RemoveBody deletes a body and every constraint attached to it.
func (w *World) RemoveBody(id BodyID) {
	w.constraints = slices.DeleteFunc(w.constraints, func(c *Constraint) bool {
		return c.body.id == id
	})
	w.bodies = slices.DeleteFunc(w.bodies, func(b *Body) bool { return b.id == id })
}

func (w *World) RemoveConstraint(id ConstraintID) {
	w.constraints = slices.DeleteFunc(w.constraints, func(c *Constraint) bool { return c.id == id })
}

// Clear removes all bodies and constraints. With keepPersistent set, objects
// created with Persistent survive, as do constraints whose body survives.
func (w *World) Clear(keepPersistent bool) {
	if !keepPersistent {
		w.bodies = w.bodies[:0]
		w.constraints = w.constraints[:0]
		return
	}
	w.bodies = slices.DeleteFunc(w.bodies, func(b *Body) bool { return !b.persistent })
	w.constraints = slices.DeleteFunc(w.constraints, func(c *Constraint) bool {
		return !c.persistent || !c.body.persistent
	})
}

// SetKinematic switches a body between dynamic and kinematic. Either way the
// velocity is zeroed.
func (w *World) SetKinematic(id BodyID, kinematic bool) {
	if b := w.body(id); b != nil {
		b.kinematic = kinematic
		b.vel = dynamo.Vec2{}
	}
}

// SetPosition teleports a body without implying any velocity.
func (w *World) SetPosition(id BodyID, p dynamo.Vec2) {
	if b := w.body(id); b != nil {
		b.pos = p
		b.prev = p
	}
}

func (w *World) SetVelocity(id BodyID, v dynamo.Vec2) {
	if b := w.body(id); b != nil {
		b.vel = v
	}
}

func (w *World) PositionOf(id BodyID) (dynamo.Vec2, bool) {
	if b := w.body(id); b != nil {
		return b.pos, true
	}
	return dynamo.Vec2{}, false
}

func (w *World) VelocityOf(id BodyID) (dynamo.Vec2, bool) {
	if b := w.body(id); b != nil {
		return b.vel, true
	}
	return dynamo.Vec2{}, false
}

// Body returns the live body or nil.
func (w *World) Body(id BodyID) *Body { return w.body(id) }

func (w *World) Bodies() []*Body { return w.bodies }

func (w *World) Constraints() []*Constraint { return w.constraints }

// Contacts returns the collisions resolved by the last Step.
func (w *World) Contacts() []Contact { return w.contacts }

func (w *World) Time() float64 { return w.time }

func (w *World) Steps() int { return w.steps }

// Step advances the world by dt, split into Substeps equal substeps.
func (w *World) Step(dt float64) {
	w.contacts = w.contacts[:0]
	if dt <= 0 {
		return
	}
	n := max(w.Substeps, 1)
	h := dt / float64(n)
	for range n {
		w.substep(h)
	}
	w.time += dt
	w.steps++
}

func (w *World) substep(h float64) {
	for _, b := range w.bodies {
		b.prev = b.pos
		if b.pinned() {
			continue
		}
		b.vel = b.vel.Add(w.Gravity.Scale(h))
		if air := b.material.AirFriction; air > 0 {
			b.vel = b.vel.Scale(1 - air)
		}
		b.pos = b.pos.Add(b.vel.Scale(h))
	}

	for _, c := range w.constraints {
		c.project()
	}

	inv := 1 / h
	for _, b := range w.bodies {
		if !b.pinned() {
			b.vel = b.pos.Sub(b.prev).Scale(inv)
		}
	}

	if ms := w.detect(); len(ms) > 0 {
		w.solve(ms)
	}
}

func (w *World) body(id BodyID) *Body {
	for _, b := range w.bodies {
		if b.id == id {
			return b
		}
	}
	return nil
}
