package physics

import "github.com/san-kum/cradle/internal/dynamo"

// ConstraintID identifies a distance constraint inside a World.
type ConstraintID int

// ConstraintDef pins a body to a fixed anchor at a given distance. The body
// is attached at its centre.
type ConstraintDef struct {
	Anchor     dynamo.Vec2
	Body       BodyID
	Length     float64
	Stiffness  float64
	Persistent bool
}

type Constraint struct {
	id         ConstraintID
	anchor     dynamo.Vec2
	body       *Body
	length     float64
	stiffness  float64
	persistent bool
}

func (c *Constraint) ID() ConstraintID    { return c.id }
func (c *Constraint) Anchor() dynamo.Vec2 { return c.anchor }
func (c *Constraint) Length() float64     { return c.length }
func (c *Constraint) Stiffness() float64  { return c.stiffness }
func (c *Constraint) BodyID() BodyID      { return c.body.id }

// project moves the body back onto the circle of radius length around the
// anchor. Pinned bodies are positioned by their owner and left alone.
func (c *Constraint) project() {
	b := c.body
	if b.pinned() {
		return
	}
	d := b.pos.Sub(c.anchor)
	if d.LenSq() == 0 {
		return
	}
	target := c.anchor.Add(d.Normalize().Scale(c.length))
	if c.stiffness >= 1 {
		b.pos = target
		return
	}
	b.pos = b.pos.Add(target.Sub(b.pos).Scale(c.stiffness))
}
