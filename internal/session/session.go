// Package session ties configuration, layout, physics binding and drag state
// together into one interactive cradle.
//
// A [Session] is single-threaded: pointer events, configuration commands and
// frame steps must come from one goroutine. [Driver] provides such a loop for
// frontends that receive input concurrently.
package session

import (
	"fmt"

	"github.com/san-kum/cradle/internal/binding"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/drag"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/layout"
	"github.com/san-kum/cradle/internal/physics"
	"github.com/san-kum/cradle/internal/physics/chipmunk"
)

// Engine is the physics backend a session steps: the binding surface plus
// the read-back a frame needs.
type Engine interface {
	binding.Engine
	VelocityOf(id physics.BodyID) (dynamo.Vec2, bool)
	Contacts() []physics.Contact
}

var (
	_ Engine = (*physics.World)(nil)
	_ Engine = (*chipmunk.Space)(nil)
)

func newEngine(sim config.Sim) Engine {
	if sim.Engine == config.EngineChipmunk {
		return chipmunk.New(sim.Gravity, sim.Substeps, sim.Iterations)
	}
	w := physics.NewWorld()
	w.Gravity = dynamo.V(0, sim.Gravity)
	w.Substeps = sim.Substeps
	w.Iterations = sim.Iterations
	return w
}

type Session struct {
	cfg    config.Cradle
	sim    config.Sim
	geo    layout.Geometry
	engine Engine
	layout layout.Layout
	handle *binding.Handle
	drag   *drag.Controller

	frame int
	time  float64
}

func New(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := *cfg
	c.Clamp()

	s := &Session{
		sim:    c.Sim,
		geo:    layout.DefaultGeometry(c.Sim.Width, c.Sim.Height),
		engine: newEngine(c.Sim),
		drag:   drag.New(),
	}
	if err := s.Rebuild(c.Cradle); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild replaces the whole cradle: any drag is dropped, the old bodies are
// destroyed and a fresh layout is materialized. Objects in the world that the
// cradle did not create survive.
func (s *Session) Rebuild(cfg config.Cradle) error {
	cfg = cfg.Clamp()

	s.drag.Reset()
	s.handle.Destroy()
	s.handle = nil

	l := layout.Build(cfg, s.geo)
	h, err := binding.Materialize(s.engine, l)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	s.cfg = cfg
	s.layout = l
	s.handle = h
	return nil
}

// Apply runs a configuration command. Every command rebuilds the cradle.
func (s *Session) Apply(cmd config.Command) error {
	return s.Rebuild(cmd.Apply(s.cfg))
}

// Resize changes the viewport and rebuilds. Non-positive sizes are ignored.
func (s *Session) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.geo.Width = width
	s.geo.Height = height
	s.sim.Width = width
	s.sim.Height = height
	return s.Rebuild(s.cfg)
}

func (s *Session) PointerDown(x, y float64) bool {
	return s.drag.PointerDown(s.handle, dynamo.V(x, y))
}

func (s *Session) PointerMove(x, y float64) bool {
	return s.drag.PointerMove(s.handle, dynamo.V(x, y))
}

func (s *Session) PointerUp() bool { return s.drag.PointerUp(s.handle) }

func (s *Session) PointerLeave() bool { return s.drag.PointerLeave(s.handle) }

// Step advances the engine by one fixed frame and returns the resulting
// frame.
func (s *Session) Step() Frame {
	s.engine.Step(s.sim.Dt)
	s.frame++
	s.time += s.sim.Dt
	return s.Frame()
}

func (s *Session) Config() config.Cradle { return s.cfg }

// Settings returns the full configuration including the current viewport.
func (s *Session) Settings() config.Config {
	return config.Config{Cradle: s.cfg, Sim: s.sim}
}

func (s *Session) Layout() layout.Layout { return s.layout }

func (s *Session) Handle() *binding.Handle { return s.handle }

func (s *Session) Engine() Engine { return s.engine }

func (s *Session) DragState() drag.State { return s.drag.State() }

func (s *Session) Dragged() (int, bool) { return s.drag.Dragged() }

func (s *Session) Time() float64 { return s.time }

func (s *Session) FrameIndex() int { return s.frame }

func (s *Session) Dt() float64 { return s.sim.Dt }

func (s *Session) FPS() int { return s.sim.FPS }
