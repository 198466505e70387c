// Package metrics observes frames of a running cradle and reduces them to
// single numbers for reports and stored runs.
package metrics

import (
	"math"

	"github.com/san-kum/cradle/internal/session"
)

type Metric interface {
	Name() string
	Observe(f session.Frame)
	Value() float64
	Reset()
}

// Observer adapts a metric to the session driver.
func Observer(m Metric) session.Observer {
	return session.ObserverFunc(m.Observe)
}

func Defaults(gravity float64) []Metric {
	return []Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewMomentum(),
		NewDisplacement(),
		NewCollisions(),
	}
}

// TotalEnergy is kinetic plus potential energy, with the potential measured
// from each bob's rest height.
func TotalEnergy(f session.Frame, gravity float64) float64 {
	var e float64
	for _, b := range f.Bobs {
		ke := 0.5 * b.Mass * b.Velocity.LenSq()
		pe := b.Mass * gravity * (b.Rest.Y - b.Position.Y)
		e += ke + pe
	}
	return e
}

// HorizontalMomentum sums m*vx over all bobs.
func HorizontalMomentum(f session.Frame) float64 {
	var p float64
	for _, b := range f.Bobs {
		p += b.Mass * b.Velocity.X
	}
	return p
}

type Momentum struct {
	last float64
}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Observe(f session.Frame) { m.last = HorizontalMomentum(f) }

func (m *Momentum) Value() float64 { return m.last }

func (m *Momentum) Reset() { m.last = 0 }

// Displacement tracks the largest horizontal distance from rest of every
// bob. Value is the largest over all bobs.
type Displacement struct {
	max []float64
}

func NewDisplacement() *Displacement { return &Displacement{} }

func (d *Displacement) Name() string { return "max_displacement" }

func (d *Displacement) Observe(f session.Frame) {
	for _, b := range f.Bobs {
		for len(d.max) <= b.Index {
			d.max = append(d.max, 0)
		}
		d.max[b.Index] = math.Max(d.max[b.Index], math.Abs(b.Position.X-b.Rest.X))
	}
}

func (d *Displacement) Value() float64 {
	var m float64
	for _, v := range d.max {
		m = math.Max(m, v)
	}
	return m
}

func (d *Displacement) PerBob() []float64 {
	return append([]float64(nil), d.max...)
}

func (d *Displacement) Reset() { d.max = d.max[:0] }

type Collisions struct {
	count int
}

func NewCollisions() *Collisions { return &Collisions{} }

func (c *Collisions) Name() string { return "collisions" }

func (c *Collisions) Observe(f session.Frame) { c.count += len(f.Contacts) }

func (c *Collisions) Value() float64 { return float64(c.count) }

func (c *Collisions) Reset() { c.count = 0 }
