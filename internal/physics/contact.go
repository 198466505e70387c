package physics

import (
	"math"

	"github.com/san-kum/cradle/internal/dynamo"
)

// Contact reports a collision resolved during the last Step. Speed is the
// approach speed along the contact normal before the impulse was applied.
type Contact struct {
	A     BodyID  `json:"a"`
	B     BodyID  `json:"b"`
	Speed float64 `json:"speed"`
}

type manifold struct {
	a, b       *Body
	normal     dynamo.Vec2
	tangent    dynamo.Vec2
	approach   float64
	bias       float64
	impulse    float64
	tangential float64
	friction   float64
}

// detect collects every touching or overlapping pair. Pairs at exactly the
// sum of their radii count as touching; this is what makes a gapless row
// behave as one resting cluster.
func (w *World) detect() []manifold {
	w.scratch = w.scratch[:0]
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if a.effectiveInvMass()+b.effectiveInvMass() == 0 {
				continue
			}
			d := b.pos.Sub(a.pos)
			r := a.radius + b.radius
			if d.LenSq() > r*r {
				continue
			}
			n := d.Normalize()
			if n.IsZero() {
				n = dynamo.V(1, 0)
			}
			vn := b.vel.Sub(a.vel).Dot(n)
			bias := 0.0
			if vn < -w.RestThreshold {
				e := math.Min(a.material.Restitution, b.material.Restitution)
				bias = -e * vn
			}
			w.scratch = append(w.scratch, manifold{
				a:        a,
				b:        b,
				normal:   n,
				tangent:  dynamo.V(-n.Y, n.X),
				approach: -vn,
				bias:     bias,
				friction: math.Sqrt(a.material.Friction * b.material.Friction),
			})
		}
	}
	return w.scratch
}

// solve runs projected Gauss-Seidel over the manifolds with accumulated,
// non-negative normal impulses.
func (w *World) solve(ms []manifold) {
	for it := 0; it < w.Iterations; it++ {
		for k := range ms {
			m := &ms[k]
			invA, invB := m.a.effectiveInvMass(), m.b.effectiveInvMass()
			km := invA + invB

			vn := m.b.vel.Sub(m.a.vel).Dot(m.normal)
			lambda := (m.bias - vn) / km
			old := m.impulse
			m.impulse = math.Max(old+lambda, 0)
			applyImpulse(m.a, m.b, m.normal.Scale(m.impulse-old))

			if m.friction == 0 {
				continue
			}
			vt := m.b.vel.Sub(m.a.vel).Dot(m.tangent)
			maxT := m.friction * m.impulse
			oldT := m.tangential
			m.tangential = math.Max(-maxT, math.Min(oldT-vt/km, maxT))
			applyImpulse(m.a, m.b, m.tangent.Scale(m.tangential-oldT))
		}
	}

	for _, m := range ms {
		if m.impulse > 0 && m.bias > 0 {
			w.contacts = append(w.contacts, Contact{A: m.a.id, B: m.b.id, Speed: m.approach})
		}
	}
}

func applyImpulse(a, b *Body, p dynamo.Vec2) {
	a.vel = a.vel.Sub(p.Scale(a.effectiveInvMass()))
	b.vel = b.vel.Add(p.Scale(b.effectiveInvMass()))
}
