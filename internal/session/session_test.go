package session_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/drag"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/layout"
	"github.com/san-kum/cradle/internal/physics"
	"github.com/san-kum/cradle/internal/physics/chipmunk"
	"github.com/san-kum/cradle/internal/session"
)

type brokenEngine struct {
	*physics.World
}

func (brokenEngine) CreateConstraint(physics.ConstraintDef) (physics.ConstraintID, error) {
	return 0, dynamo.ErrUnknownBody
}

func newSession(gap bool) *session.Session {
	cfg := config.DefaultConfig()
	cfg.Cradle.ContactGap = gap
	s, err := session.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

// releaseHorizontal lifts bob 0 to the left until its string is level and
// lets go.
func releaseHorizontal(s *session.Session) {
	anchor, ok := s.Handle().Anchor(0)
	Expect(ok).To(BeTrue())
	rest, _ := s.Handle().PositionOf(0)

	Expect(s.PointerDown(rest.X, rest.Y)).To(BeTrue())
	Expect(s.PointerMove(anchor.X-300, anchor.Y)).To(BeTrue())
	Expect(s.PointerUp()).To(BeTrue())
}

func maxDisplacement(s *session.Session, frames int) []float64 {
	out := make([]float64, len(s.Layout().Bobs))
	for range frames {
		f := s.Step()
		for _, b := range f.Bobs {
			out[b.Index] = math.Max(out[b.Index], math.Abs(b.Position.X-b.Rest.X))
		}
	}
	return out
}

var _ = Describe("Session", func() {
	Describe("construction", func() {
		It("materializes the default cradle at rest", func() {
			s := newSession(false)
			f := s.Frame()

			Expect(f.Bobs).To(HaveLen(5))
			for i, b := range f.Bobs {
				Expect(b.Position).To(Equal(b.Rest))
				Expect(b.Anchor).To(Equal(dynamo.V(300+50*float64(i), layout.PivotY)))
				Expect(b.Dragged).To(BeFalse())
			}
			Expect(s.DragState()).To(Equal(drag.Idle))
		})

		It("falls back to defaults without a config", func() {
			s, err := session.New(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Config().BobCount).To(Equal(config.DefaultBobs))
		})

		It("stays at rest when left alone", func() {
			s := newSession(false)
			for range 120 {
				s.Step()
			}
			for _, b := range s.Frame().Bobs {
				Expect(b.Position).To(Equal(b.Rest))
			}
		})
	})

	Describe("dragging", func() {
		var s *session.Session

		BeforeEach(func() {
			s = newSession(true)
		})

		It("marks the dragged bob in the frame", func() {
			Expect(s.PointerDown(400, 350)).To(BeTrue())

			f := s.Frame()
			Expect(f.Bobs[2].Dragged).To(BeTrue())
			Expect(f.Bobs[2].DrawColor()).To(Equal(layout.Dragged))
			Expect(f.Bobs[1].Dragged).To(BeFalse())
		})

		It("holds the bob on its string circle across steps", func() {
			Expect(s.PointerDown(300, 350)).To(BeTrue())
			Expect(s.PointerMove(100, 250)).To(BeTrue())

			for range 30 {
				f := s.Step()
				Expect(f.Bobs[0].Position.Dist(f.Bobs[0].Anchor)).To(BeNumerically("~", layout.StringLength, 1e-9))
			}
		})

		It("releases with zero velocity", func() {
			Expect(s.PointerDown(300, 350)).To(BeTrue())
			Expect(s.PointerMove(100, 100)).To(BeTrue())
			Expect(s.PointerLeave()).To(BeTrue())

			f := s.Frame()
			Expect(f.Bobs[0].Velocity.IsZero()).To(BeTrue())
			Expect(s.DragState()).To(Equal(drag.Idle))
		})
	})

	Describe("reconfiguration", func() {
		It("rebuilds 5 bobs into 3 and drops the drag", func() {
			s := newSession(false)
			Expect(s.PointerDown(300, 350)).To(BeTrue())
			before := s.Handle().Epoch()

			Expect(s.Apply(config.SetBobCount{N: 3})).To(Succeed())

			Expect(s.DragState()).To(Equal(drag.Idle))
			Expect(s.Handle().Epoch()).NotTo(Equal(before))
			Expect(s.Engine().(*physics.World).Bodies()).To(HaveLen(3))

			f := s.Frame()
			Expect(f.Bobs).To(HaveLen(3))
			Expect(f.Bobs[0].Position).To(Equal(dynamo.V(350, 350)))
			Expect(f.Bobs[1].Position).To(Equal(dynamo.V(400, 350)))
			Expect(f.Bobs[2].Position).To(Equal(dynamo.V(450, 350)))

			Expect(s.PointerMove(0, 0)).To(BeFalse())
			for _, b := range s.Step().Bobs {
				Expect(b.Position).To(Equal(b.Rest))
			}
		})

		It("keeps persistent objects across rebuilds", func() {
			s := newSession(false)
			w := s.Engine().(*physics.World)
			wall := w.CreateBody(physics.BodyDef{Position: dynamo.V(-500, -500), Radius: 1, Persistent: true})

			Expect(s.Apply(config.SetGap{On: true})).To(Succeed())
			Expect(s.Apply(config.Reset{})).To(Succeed())

			Expect(w.Body(wall)).NotTo(BeNil())
			Expect(w.Bodies()).To(HaveLen(6))
		})

		It("resets a swinging cradle to rest", func() {
			s := newSession(true)
			releaseHorizontal(s)
			for range 20 {
				s.Step()
			}

			Expect(s.Apply(config.Reset{})).To(Succeed())
			for _, b := range s.Frame().Bobs {
				Expect(b.Position).To(Equal(b.Rest))
			}
		})

		It("recentres on resize", func() {
			s := newSession(false)
			Expect(s.Resize(1200, 700)).To(Succeed())

			f := s.Frame()
			Expect(f.Width).To(Equal(1200.0))
			Expect(f.Bobs[2].Position.X).To(Equal(600.0))
		})

		It("reads back an empty frame after a failed rebuild", func() {
			s := newSession(false)
			s.SetEngine(brokenEngine{physics.NewWorld()})

			Expect(s.Apply(config.SetBobCount{N: 4})).To(MatchError(dynamo.ErrUnknownBody))
			Expect(s.Handle()).To(BeNil())

			f := s.Frame()
			Expect(f.Epoch).To(BeZero())
			Expect(f.Bobs).To(BeEmpty())
			Expect(s.PointerDown(300, 350)).To(BeFalse())
			Expect(s.Step().Bobs).To(BeEmpty())
		})

		It("ignores an empty viewport", func() {
			s := newSession(false)
			Expect(s.Resize(0, 0)).To(Succeed())
			Expect(s.Frame().Width).To(Equal(config.DefaultWidth))
		})

		It("switches to individual colors and radii", func() {
			s := newSession(false)
			Expect(s.Apply(config.SetMassMode{Mode: config.MassIndividual})).To(Succeed())
			Expect(s.Apply(config.SetMassOverride{Index: 0, Ratio: 3})).To(Succeed())

			f := s.Frame()
			Expect(f.Bobs[0].Radius).To(BeNumerically(">", f.Bobs[1].Radius))
			Expect(f.Bobs[0].Color).NotTo(Equal(f.Bobs[1].Color))
			Expect(f.Bobs[0].Mass).To(Equal(30.0))
		})
	})

	Describe("releasing the first bob", func() {
		It("sends the last bob out when the bobs have a gap", func() {
			s := newSession(true)
			releaseHorizontal(s)

			d := maxDisplacement(s, 110)
			for i := 1; i <= 3; i++ {
				Expect(d[i]).To(BeNumerically("<", 10), "bob %d", i)
			}
			Expect(d[4]).To(BeNumerically(">", 150))
		})

		It("moves the touching bobs together without a gap", func() {
			s := newSession(false)
			releaseHorizontal(s)

			d := maxDisplacement(s, 110)
			for i := 1; i <= 3; i++ {
				Expect(d[i]).To(BeNumerically(">", 20), "bob %d", i)
			}
		})

		It("reports collisions in the frame", func() {
			s := newSession(true)
			releaseHorizontal(s)

			var contacts int
			for range 80 {
				contacts += len(s.Step().Contacts)
			}
			Expect(contacts).To(BeNumerically(">=", 4))
		})
	})

	Describe("on the chipmunk engine", func() {
		var s *session.Session

		BeforeEach(func() {
			cfg := config.DefaultConfig()
			cfg.Cradle.ContactGap = true
			cfg.Sim.Engine = config.EngineChipmunk
			var err error
			s, err = session.New(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("materializes the cradle at rest", func() {
			Expect(s.Engine()).To(BeAssignableToTypeOf(&chipmunk.Space{}))
			for _, b := range s.Frame().Bobs {
				Expect(b.Position).To(Equal(b.Rest))
			}
		})

		It("keeps the strings taut and hands the swing down the row", func() {
			releaseHorizontal(s)

			var contacts int
			d := make([]float64, len(s.Layout().Bobs))
			for range 110 {
				f := s.Step()
				contacts += len(f.Contacts)
				for _, b := range f.Bobs {
					Expect(b.Position.Dist(b.Anchor)).To(BeNumerically("~", s.Layout().Strings[b.Index].Length, 1))
					d[b.Index] = math.Max(d[b.Index], math.Abs(b.Position.X-b.Rest.X))
				}
			}
			Expect(contacts).To(BeNumerically(">=", 4))
			Expect(d[4]).To(BeNumerically(">", 100))
		})

		It("rebuilds without leaking bodies", func() {
			Expect(s.Apply(config.SetBobCount{N: 3})).To(Succeed())
			Expect(s.Engine().(*chipmunk.Space).Len()).To(Equal(3))
		})
	})

	Describe("Driver", func() {
		It("applies queued events before stepping", func() {
			s := newSession(false)
			d := session.NewDriver(s)

			var seen []int
			d.AddObserver(session.ObserverFunc(func(f session.Frame) {
				seen = append(seen, len(f.Bobs))
			}))

			ctx := context.Background()
			Expect(d.Send(ctx, func(s *session.Session) {
				Expect(s.Apply(config.SetBobCount{N: 7})).To(Succeed())
			})).To(Succeed())
			Expect(d.Run(ctx, 3)).To(Succeed())

			Expect(seen).To(Equal([]int{7, 7, 7}))
			Expect(s.FrameIndex()).To(Equal(3))
		})

		It("stops when the context is cancelled", func() {
			d := session.NewDriver(newSession(false))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(d.Run(ctx, 10)).To(MatchError(context.Canceled))
			Expect(d.RunLive(ctx, 60)).To(MatchError(context.Canceled))
		})

		It("stops on the first non-finite frame", func() {
			s := newSession(true)
			id, ok := s.Handle().Body(0)
			Expect(ok).To(BeTrue())
			s.Engine().SetVelocity(id, dynamo.V(math.NaN(), 0))

			err := session.NewDriver(s).Run(context.Background(), 10)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))

			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Frame).To(Equal(1))
			Expect(s.FrameIndex()).To(Equal(1))
		})
	})
})
