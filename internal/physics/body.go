package physics

import "github.com/san-kum/cradle/internal/dynamo"

// BodyID identifies a body inside a World. IDs are never reused.
type BodyID int

// Material holds the surface and damping coefficients of a body.
type Material struct {
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	AirFriction float64 `yaml:"air_friction"`
}

// BodyDef describes a circle to create. Circles carry no angular state, so
// every body behaves as if its rotational inertia were infinite.
type BodyDef struct {
	Position   dynamo.Vec2
	Radius     float64
	Mass       float64
	Material   Material
	Persistent bool
}

type Body struct {
	id         BodyID
	pos        dynamo.Vec2
	prev       dynamo.Vec2
	vel        dynamo.Vec2
	radius     float64
	mass       float64
	invMass    float64
	material   Material
	kinematic  bool
	persistent bool
}

func newBody(id BodyID, def BodyDef) *Body {
	invMass := 0.0
	if def.Mass > 0 {
		invMass = 1.0 / def.Mass
	}
	return &Body{
		id:         id,
		pos:        def.Position,
		prev:       def.Position,
		radius:     def.Radius,
		mass:       def.Mass,
		invMass:    invMass,
		material:   def.Material,
		persistent: def.Persistent,
	}
}

func (b *Body) ID() BodyID            { return b.id }
func (b *Body) Position() dynamo.Vec2 { return b.pos }
func (b *Body) Velocity() dynamo.Vec2 { return b.vel }
func (b *Body) Radius() float64       { return b.radius }
func (b *Body) Mass() float64         { return b.mass }
func (b *Body) Kinematic() bool       { return b.kinematic }
func (b *Body) Persistent() bool      { return b.persistent }
func (b *Body) Material() Material    { return b.material }

// pinned bodies are moved only by SetPosition: kinematic or massless.
func (b *Body) pinned() bool { return b.kinematic || b.invMass == 0 }

func (b *Body) effectiveInvMass() float64 {
	if b.kinematic {
		return 0
	}
	return b.invMass
}
