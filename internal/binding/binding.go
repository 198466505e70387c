// Package binding materializes a cradle layout in a physics engine and keeps
// track of what it created so it can be torn down without touching anything
// else living in the same engine.
package binding

import (
	"fmt"
	"sync/atomic"

	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/layout"
	"github.com/san-kum/cradle/internal/physics"
)

// Engine is the subset of the physics world the cradle needs.
type Engine interface {
	CreateBody(def physics.BodyDef) physics.BodyID
	CreateConstraint(def physics.ConstraintDef) (physics.ConstraintID, error)
	SetKinematic(id physics.BodyID, kinematic bool)
	SetPosition(id physics.BodyID, p dynamo.Vec2)
	SetVelocity(id physics.BodyID, v dynamo.Vec2)
	PositionOf(id physics.BodyID) (dynamo.Vec2, bool)
	RemoveBody(id physics.BodyID)
	RemoveConstraint(id physics.ConstraintID)
	Clear(keepPersistent bool)
	Step(dt float64)
}

var _ Engine = (*physics.World)(nil)

var epochs atomic.Uint64

// Handle owns the bodies and constraints of one materialized layout. Every
// handle gets a distinct epoch; anything holding a bob index can compare
// epochs to detect that the cradle was rebuilt under it.
type Handle struct {
	eng         Engine
	epoch       uint64
	bodies      []physics.BodyID
	constraints []physics.ConstraintID
	anchors     []dynamo.Vec2
	lengths     []float64
	radii       []float64
	destroyed   bool
}

// Materialize creates one body and one anchor constraint per bob, in layout
// order.
func Materialize(eng Engine, l layout.Layout) (*Handle, error) {
	n := len(l.Bobs)
	h := &Handle{
		eng:         eng,
		epoch:       epochs.Add(1),
		bodies:      make([]physics.BodyID, 0, n),
		constraints: make([]physics.ConstraintID, 0, n),
		anchors:     make([]dynamo.Vec2, 0, n),
		lengths:     make([]float64, 0, n),
		radii:       make([]float64, 0, n),
	}

	for i, bob := range l.Bobs {
		id := eng.CreateBody(physics.BodyDef{
			Position: bob.Rest,
			Radius:   bob.Radius,
			Mass:     bob.TargetMass,
			Material: physics.Material{
				Restitution: bob.Restitution,
				Friction:    bob.Friction,
				AirFriction: bob.AirFriction,
			},
		})
		h.bodies = append(h.bodies, id)

		s := l.Strings[i]
		cid, err := eng.CreateConstraint(physics.ConstraintDef{
			Anchor:    s.Anchor,
			Body:      id,
			Length:    s.Length,
			Stiffness: s.Stiffness,
		})
		if err != nil {
			h.Destroy()
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		h.constraints = append(h.constraints, cid)
		h.anchors = append(h.anchors, s.Anchor)
		h.lengths = append(h.lengths, s.Length)
		h.radii = append(h.radii, bob.Radius)
	}
	return h, nil
}

// Destroy removes everything this handle created. Objects created by others,
// persistent ones included, are left alone. Calling it twice is a no-op.
func (h *Handle) Destroy() {
	if h == nil || h.destroyed {
		return
	}
	for _, cid := range h.constraints {
		h.eng.RemoveConstraint(cid)
	}
	for _, id := range h.bodies {
		h.eng.RemoveBody(id)
	}
	h.destroyed = true
}

func (h *Handle) Alive() bool { return h != nil && !h.destroyed }

// Epoch is zero for a nil handle.
func (h *Handle) Epoch() uint64 {
	if h == nil {
		return 0
	}
	return h.epoch
}

func (h *Handle) Len() int {
	if h == nil {
		return 0
	}
	return len(h.bodies)
}

func (h *Handle) Engine() Engine { return h.eng }

func (h *Handle) valid(i int) bool {
	return h.Alive() && i >= 0 && i < len(h.bodies)
}

// PositionOf reads the live position of bob i.
func (h *Handle) PositionOf(i int) (dynamo.Vec2, bool) {
	if !h.valid(i) {
		return dynamo.Vec2{}, false
	}
	return h.eng.PositionOf(h.bodies[i])
}

func (h *Handle) Body(i int) (physics.BodyID, bool) {
	if !h.valid(i) {
		return 0, false
	}
	return h.bodies[i], true
}

// IndexOf maps an engine body back to its bob index.
func (h *Handle) IndexOf(id physics.BodyID) (int, bool) {
	if !h.Alive() {
		return -1, false
	}
	for i, b := range h.bodies {
		if b == id {
			return i, true
		}
	}
	return -1, false
}

func (h *Handle) Anchor(i int) (dynamo.Vec2, bool) {
	if !h.valid(i) {
		return dynamo.Vec2{}, false
	}
	return h.anchors[i], true
}

func (h *Handle) Length(i int) float64 {
	if !h.valid(i) {
		return 0
	}
	return h.lengths[i]
}

func (h *Handle) Radius(i int) float64 {
	if !h.valid(i) {
		return 0
	}
	return h.radii[i]
}
