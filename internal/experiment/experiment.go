// Package experiment runs scripted releases of a cradle headlessly and
// records what happens.
package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/metrics"
	"github.com/san-kum/cradle/internal/session"
)

const (
	DefaultAngle  = 90.0
	DefaultFrames = 300
)

type Config struct {
	Scenario string
	// Settings overrides the scenario preset when set.
	Settings *config.Config
	// Lift overrides the scenario's lifted bob count when positive.
	Lift int
	// Angle is the release angle in degrees from straight down. Nil means
	// DefaultAngle.
	Angle  *float64
	Frames int
}

type Experiment struct {
	cfg      Config
	scenario Scenario
	session  *session.Session
	driver   *session.Driver
	recorder *session.Recorder
	metrics  []metrics.Metric
}

func New(cfg Config, reg *Registry) (*Experiment, error) {
	sc, err := reg.Get(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if cfg.Settings == nil {
		if cfg.Settings, err = reg.Settings(sc); err != nil {
			return nil, err
		}
	}
	if cfg.Lift > 0 {
		sc.Lift = cfg.Lift
	}
	if cfg.Angle == nil {
		cfg.Angle = Degrees(DefaultAngle)
	}
	if cfg.Frames <= 0 {
		cfg.Frames = DefaultFrames
	}
	return &Experiment{cfg: cfg, scenario: sc}, nil
}

// Setup builds the session, lifts the scenario's bobs and attaches the
// metrics. The bobs are released before the first frame.
func (e *Experiment) Setup(ms []metrics.Metric) error {
	s, err := session.New(e.cfg.Settings)
	if err != nil {
		return err
	}
	if err := Lift(s, e.scenario.Lift, *e.cfg.Angle); err != nil {
		return err
	}

	e.session = s
	e.driver = session.NewDriver(s)
	e.recorder = session.NewRecorder()
	e.driver.AddObserver(e.recorder)
	e.metrics = ms
	for _, m := range ms {
		m.Reset()
		e.driver.AddObserver(metrics.Observer(m))
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*session.Recording, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := e.driver.Run(ctx, e.cfg.Frames); err != nil {
		return nil, err
	}

	rec := e.recorder.Recording()
	for _, m := range e.metrics {
		rec.Metrics[m.Name()] = m.Value()
	}
	return rec, nil
}

func (e *Experiment) Session() *session.Session { return e.session }

func (e *Experiment) Scenario() Scenario { return e.scenario }

func (e *Experiment) Config() Config { return e.cfg }

// Degrees returns a release angle for Config.Angle.
func Degrees(v float64) *float64 { return &v }

// Lift drags the first n bobs out to the left to the given angle (degrees
// from straight down) and releases them, leftmost first.
func Lift(s *session.Session, n int, angle float64) error {
	h := s.Handle()
	n = min(n, h.Len()-1)
	theta := angle * math.Pi / 180
	dir := dynamo.V(-math.Sin(theta), math.Cos(theta))

	for i := range n {
		anchor, _ := h.Anchor(i)
		rest, _ := h.PositionOf(i)
		if !s.PointerDown(rest.X, rest.Y) {
			return fmt.Errorf("lift bob %d: %w", i, dynamo.ErrInvalidState)
		}
		target := anchor.Add(dir.Scale(h.Length(i) * 1.2))
		s.PointerMove(target.X, target.Y)
		s.PointerUp()
	}
	return nil
}

// SetParam overrides one tunable of the run: "angle", "lift", "bobs" or
// "striker_mass". Settings must already be resolved.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "angle":
		c.Angle = Degrees(v)
	case "lift":
		c.Lift = int(math.Round(v))
	case "bobs":
		c.Settings.Cradle = config.SetBobCount{N: int(math.Round(v))}.Apply(c.Settings.Cradle)
	case "striker_mass":
		c.Settings.Cradle = config.SetMassMode{Mode: config.MassIndividual}.Apply(c.Settings.Cradle)
		c.Settings.Cradle = config.SetMassOverride{Index: 0, Ratio: v}.Apply(c.Settings.Cradle)
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
