// Package drag implements grabbing a bob with the pointer, swinging it along
// its string circle and releasing it from rest.
package drag

import (
	"math"

	"github.com/san-kum/cradle/internal/binding"
	"github.com/san-kum/cradle/internal/dynamo"
)

// GrabFactor widens the hit circle of a bob relative to its radius.
const GrabFactor = 1.5

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller is the per-session drag state machine. While dragging, the bob
// is kinematic and placed on its string circle at the pointer's angle, so its
// distance to the anchor always equals the string length.
type Controller struct {
	state State
	index int
	epoch uint64
}

func New() *Controller { return &Controller{} }

func (c *Controller) State() State { return c.state }

// Dragged returns the index of the held bob.
func (c *Controller) Dragged() (int, bool) {
	if c.state != Dragging {
		return 0, false
	}
	return c.index, true
}

// Reset forgets the current drag without touching the engine. Used when the
// bobs it refers to are gone.
func (c *Controller) Reset() {
	c.state = Idle
	c.index = 0
	c.epoch = 0
}

// PointerDown grabs the first bob, in index order, whose centre is closer
// than GrabFactor radii to p. It is ignored while a drag is in progress and
// for non-finite points.
func (c *Controller) PointerDown(h *binding.Handle, p dynamo.Vec2) bool {
	if !p.IsValid() {
		return false
	}
	if c.state == Dragging {
		if c.stale(h) {
			c.Reset()
		} else {
			return false
		}
	}
	if !h.Alive() {
		return false
	}

	for i := range h.Len() {
		pos, ok := h.PositionOf(i)
		if !ok {
			continue
		}
		if p.Dist(pos) < h.Radius(i)*GrabFactor {
			id, _ := h.Body(i)
			h.Engine().SetKinematic(id, true)
			c.state = Dragging
			c.index = i
			c.epoch = h.Epoch()
			return true
		}
	}
	return false
}

// PointerMove places the held bob on its string circle in the direction of
// the pointer. A pointer exactly on the anchor has no direction; the bob is
// then placed straight below it. A non-finite point leaves the bob where it
// is.
func (c *Controller) PointerMove(h *binding.Handle, p dynamo.Vec2) bool {
	if c.state != Dragging {
		return false
	}
	if c.stale(h) {
		c.Reset()
		return false
	}
	if !p.IsValid() {
		return false
	}

	anchor, _ := h.Anchor(c.index)
	id, _ := h.Body(c.index)
	eng := h.Engine()
	eng.SetPosition(id, Project(anchor, h.Length(c.index), p))
	eng.SetVelocity(id, dynamo.Vec2{})
	return true
}

// PointerUp releases the held bob from rest.
func (c *Controller) PointerUp(h *binding.Handle) bool {
	if c.state != Dragging {
		return false
	}
	if c.stale(h) {
		c.Reset()
		return false
	}

	id, _ := h.Body(c.index)
	eng := h.Engine()
	eng.SetKinematic(id, false)
	eng.SetVelocity(id, dynamo.Vec2{})
	c.Reset()
	return true
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave(h *binding.Handle) bool {
	return c.PointerUp(h)
}

func (c *Controller) stale(h *binding.Handle) bool {
	return !h.Alive() || h.Epoch() != c.epoch || c.index >= h.Len()
}

// Project returns the point at distance length from anchor towards p.
func Project(anchor dynamo.Vec2, length float64, p dynamo.Vec2) dynamo.Vec2 {
	d := p.Sub(anchor)
	angle := math.Pi / 2
	if !d.IsZero() {
		angle = math.Atan2(d.Y, d.X)
	}
	return anchor.Polar(length, angle)
}
