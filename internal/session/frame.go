package session

import (
	"fmt"

	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/layout"
)

// BobView is everything a renderer needs to draw one bob and its string.
type BobView struct {
	Index    int         `json:"index"`
	Anchor   dynamo.Vec2 `json:"anchor"`
	Position dynamo.Vec2 `json:"position"`
	Rest     dynamo.Vec2 `json:"rest"`
	Velocity dynamo.Vec2 `json:"velocity"`
	Radius   float64     `json:"radius"`
	Mass     float64     `json:"mass"`
	Color    dynamo.RGB  `json:"color"`
	Dragged  bool        `json:"dragged"`
}

// DrawColor is the bob color, or the highlight color while dragged.
func (b BobView) DrawColor() dynamo.RGB {
	if b.Dragged {
		return layout.Dragged
	}
	return b.Color
}

// Collision is a contact between two bobs, named by bob index.
type Collision struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Speed float64 `json:"speed"`
}

type Frame struct {
	Index    int         `json:"index"`
	Time     float64     `json:"time"`
	Epoch    uint64      `json:"epoch"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Beam     layout.Beam `json:"beam"`
	Bobs     []BobView   `json:"bobs"`
	Contacts []Collision `json:"contacts,omitempty"`
}

// Validate reports the first bob whose position or velocity is not finite,
// wrapped in a StepError carrying the frame.
func (f Frame) Validate() error {
	for _, b := range f.Bobs {
		if b.Position.IsValid() && b.Velocity.IsValid() {
			continue
		}
		return &dynamo.StepError{
			Frame:   f.Index,
			Time:    f.Time,
			Wrapped: fmt.Errorf("bob %d: %w", b.Index, dynamo.ErrInvalidState),
		}
	}
	return nil
}

// Frame reads back the live state of the cradle.
func (s *Session) Frame() Frame {
	f := Frame{
		Index:  s.frame,
		Time:   s.time,
		Epoch:  s.handle.Epoch(),
		Width:  s.geo.Width,
		Height: s.geo.Height,
		Beam:   s.layout.Beam,
		Bobs:   make([]BobView, 0, len(s.layout.Bobs)),
	}

	dragged, dragging := s.drag.Dragged()
	for i, bob := range s.layout.Bobs {
		pos, ok := s.handle.PositionOf(i)
		if !ok {
			continue
		}
		id, _ := s.handle.Body(i)
		vel, _ := s.engine.VelocityOf(id)
		f.Bobs = append(f.Bobs, BobView{
			Index:    i,
			Anchor:   s.layout.Strings[i].Anchor,
			Position: pos,
			Rest:     bob.Rest,
			Velocity: vel,
			Radius:   bob.Radius,
			Mass:     bob.TargetMass,
			Color:    bob.Color,
			Dragged:  dragging && dragged == i,
		})
	}

	for _, c := range s.engine.Contacts() {
		a, okA := s.handle.IndexOf(c.A)
		b, okB := s.handle.IndexOf(c.B)
		if !okA || !okB {
			continue
		}
		f.Contacts = append(f.Contacts, Collision{A: a, B: b, Speed: c.Speed})
	}
	return f
}
