// Package chipmunk runs the cradle on the Chipmunk2D port. Every body is a
// circle with infinite moment so it never spins, and every string is a pin
// joint to the space's static body.
//
// Chipmunk only reports contacts for overlapping shapes, so bobs that rest
// exactly touching behave like bobs with a gap: a gapless row does not move
// as one cluster the way it does on the native engine.
package chipmunk

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/physics"
)

const bobType cp.CollisionType = 1

type body struct {
	body       *cp.Body
	shape      *cp.Shape
	mass       float64
	kinematic  bool
	persistent bool
}

// pinned bodies are moved only by SetPosition.
func (b *body) pinned() bool { return b.kinematic || b.mass <= 0 }

type joint struct {
	joint      *cp.Constraint
	body       physics.BodyID
	persistent bool
	attached   bool
}

// Space adapts a cp.Space to the engine interface the cradle binds to. It
// is not safe for concurrent use.
type Space struct {
	// RestThreshold is the approach speed (px/s) below which a new contact
	// is not reported.
	RestThreshold float64
	Substeps      int

	space     *cp.Space
	bodies    map[physics.BodyID]*body
	joints    map[physics.ConstraintID]*joint
	nextBody  physics.BodyID
	nextJoint physics.ConstraintID
	contacts  []physics.Contact
	time      float64
	steps     int
}

func New(gravity float64, substeps, iterations int) *Space {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	space.Iterations = uint(max(iterations, 1))

	s := &Space{
		RestThreshold: physics.DefaultRestThreshold,
		Substeps:      max(substeps, 1),
		space:         space,
		bodies:        make(map[physics.BodyID]*body),
		joints:        make(map[physics.ConstraintID]*joint),
	}
	handler := space.NewCollisionHandler(bobType, bobType)
	handler.BeginFunc = s.begin
	return s
}

func (s *Space) CreateBody(def physics.BodyDef) physics.BodyID {
	s.nextBody++
	id := s.nextBody

	var cb *cp.Body
	if def.Mass > 0 {
		cb = cp.NewBody(def.Mass, cp.INFINITY)
	} else {
		cb = cp.NewKinematicBody()
	}
	cb.SetPosition(vec(def.Position))
	cb.UserData = id
	if air := def.Material.AirFriction; air > 0 {
		cb.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
			cp.BodyUpdateVelocity(b, gravity, damping*(1-air), dt)
		})
	}
	s.space.AddBody(cb)

	shape := s.space.AddShape(cp.NewCircle(cb, def.Radius, cp.Vector{}))
	shape.SetElasticity(def.Material.Restitution)
	shape.SetFriction(def.Material.Friction)
	shape.SetCollisionType(bobType)

	s.bodies[id] = &body{
		body:       cb,
		shape:      shape,
		mass:       def.Mass,
		persistent: def.Persistent,
	}
	return id
}

// CreateConstraint pins the body's centre to def.Anchor at def.Length.
// Pin joints are rigid, so def.Stiffness is not used.
func (s *Space) CreateConstraint(def physics.ConstraintDef) (physics.ConstraintID, error) {
	b := s.bodies[def.Body]
	if b == nil {
		return 0, dynamo.ErrUnknownBody
	}

	// A pin joint takes its distance from the bodies at creation time.
	at := b.body.Position()
	anchor := vec(def.Anchor)
	d := at.Sub(anchor)
	if l := d.Length(); l > 0 {
		b.body.SetPosition(anchor.Add(d.Mult(def.Length / l)))
	} else {
		b.body.SetPosition(anchor.Add(cp.Vector{X: 0, Y: def.Length}))
	}
	pin := cp.NewPinJoint(s.space.StaticBody, b.body, anchor, cp.Vector{})
	b.body.SetPosition(at)

	s.nextJoint++
	j := &joint{joint: pin, body: def.Body, persistent: def.Persistent}
	s.joints[s.nextJoint] = j
	s.attach(j)
	return s.nextJoint, nil
}

// attach adds the joint to the space unless its body is pinned: a pin
// between the static body and a kinematic one has no solution.
func (s *Space) attach(j *joint) {
	if j.attached || s.bodies[j.body].pinned() {
		return
	}
	s.space.AddConstraint(j.joint)
	j.attached = true
}

func (s *Space) detach(j *joint) {
	if !j.attached {
		return
	}
	s.space.RemoveConstraint(j.joint)
	j.attached = false
}

// RemoveBody deletes a body and every constraint attached to it.
func (s *Space) RemoveBody(id physics.BodyID) {
	b := s.bodies[id]
	if b == nil {
		return
	}
	for cid, j := range s.joints {
		if j.body == id {
			s.RemoveConstraint(cid)
		}
	}
	s.space.RemoveShape(b.shape)
	s.space.RemoveBody(b.body)
	delete(s.bodies, id)
}

func (s *Space) RemoveConstraint(id physics.ConstraintID) {
	if j := s.joints[id]; j != nil {
		s.detach(j)
		delete(s.joints, id)
	}
}

// Clear removes all bodies and constraints. With keepPersistent set, objects
// created with Persistent survive, as do constraints whose body survives.
func (s *Space) Clear(keepPersistent bool) {
	for cid, j := range s.joints {
		if !keepPersistent || !j.persistent || !s.bodies[j.body].persistent {
			s.RemoveConstraint(cid)
		}
	}
	for id, b := range s.bodies {
		if !keepPersistent || !b.persistent {
			s.RemoveBody(id)
		}
	}
}

// SetKinematic switches a body between dynamic and kinematic. Either way the
// velocity is zeroed. A kinematic body's strings leave the space until it is
// dynamic again.
func (s *Space) SetKinematic(id physics.BodyID, kinematic bool) {
	b := s.bodies[id]
	if b == nil {
		return
	}
	if b.mass <= 0 || b.kinematic == kinematic {
		b.body.SetVelocity(0, 0)
		return
	}

	b.kinematic = kinematic
	if kinematic {
		for _, j := range s.joints {
			if j.body == id {
				s.detach(j)
			}
		}
		b.body.SetType(cp.BODY_KINEMATIC)
		b.body.SetVelocity(0, 0)
		return
	}

	b.body.SetType(cp.BODY_DYNAMIC)
	b.body.SetMass(b.mass)
	b.body.SetMoment(cp.INFINITY)
	b.body.SetVelocity(0, 0)
	for _, j := range s.joints {
		if j.body == id {
			s.attach(j)
		}
	}
}

func (s *Space) SetPosition(id physics.BodyID, p dynamo.Vec2) {
	if b := s.bodies[id]; b != nil {
		b.body.SetPosition(vec(p))
	}
}

func (s *Space) SetVelocity(id physics.BodyID, v dynamo.Vec2) {
	if b := s.bodies[id]; b != nil {
		b.body.SetVelocity(v.X, v.Y)
	}
}

func (s *Space) PositionOf(id physics.BodyID) (dynamo.Vec2, bool) {
	b := s.bodies[id]
	if b == nil {
		return dynamo.Vec2{}, false
	}
	p := b.body.Position()
	return dynamo.V(p.X, p.Y), true
}

func (s *Space) VelocityOf(id physics.BodyID) (dynamo.Vec2, bool) {
	b := s.bodies[id]
	if b == nil {
		return dynamo.Vec2{}, false
	}
	v := b.body.Velocity()
	return dynamo.V(v.X, v.Y), true
}

// Contacts returns the collisions that started during the last Step.
func (s *Space) Contacts() []physics.Contact { return s.contacts }

func (s *Space) Len() int { return len(s.bodies) }

func (s *Space) Time() float64 { return s.time }

func (s *Space) Steps() int { return s.steps }

// Step advances the space by dt, split into Substeps equal substeps.
func (s *Space) Step(dt float64) {
	s.contacts = s.contacts[:0]
	if dt <= 0 {
		return
	}
	h := dt / float64(s.Substeps)
	for range s.Substeps {
		s.space.Step(h)
	}
	s.time += dt
	s.steps++
}

// begin runs once per new touching pair, before the impulses are solved.
func (s *Space) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Bodies()
	ida, okA := a.UserData.(physics.BodyID)
	idb, okB := b.UserData.(physics.BodyID)
	if !okA || !okB {
		return true
	}
	speed := math.Abs(b.Velocity().Sub(a.Velocity()).Dot(arb.Normal()))
	if speed > s.RestThreshold {
		s.contacts = append(s.contacts, physics.Contact{A: ida, B: idb, Speed: speed})
	}
	return true
}

func vec(v dynamo.Vec2) cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }
