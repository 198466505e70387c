// Package automation replays scripted pointer and configuration input
// against a session and sweeps scenario parameters.
package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/experiment"
	"github.com/san-kum/cradle/internal/metrics"
	"github.com/san-kum/cradle/internal/session"
	"gopkg.in/yaml.v3"
)

// Script is a timed sequence of input applied to one session.
type Script struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Cradle      *config.Cradle `yaml:"cradle"`
	Frames      int            `yaml:"frames"`
	Actions     []Action       `yaml:"actions"`
}

// Action runs before the frame with the given index is stepped.
type Action struct {
	Frame   int                 `yaml:"frame"`
	Do      string              `yaml:"do"`
	X       float64             `yaml:"x"`
	Y       float64             `yaml:"y"`
	Bob     *int                `yaml:"bob"`
	Command *config.CommandSpec `yaml:"command"`
	Width   float64             `yaml:"width"`
	Height  float64             `yaml:"height"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	for i, a := range script.Actions {
		switch a.Do {
		case "grab", "move", "release", "leave", "resize":
		case "command":
			if a.Command == nil {
				return nil, fmt.Errorf("action %d: command missing", i+1)
			}
			if _, err := a.Command.Command(); err != nil {
				return nil, fmt.Errorf("action %d: %w", i+1, err)
			}
		default:
			return nil, fmt.Errorf("action %d: unknown action %q", i+1, a.Do)
		}
	}
	return &script, nil
}

func (s *Script) settings() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("preset %q not found", s.Preset)
		}
	}
	if s.Cradle != nil {
		cfg.Cradle = s.Cradle.Clamp()
	}
	return cfg, nil
}

// RunScript plays the script and records every frame.
func RunScript(ctx context.Context, script *Script, ms []metrics.Metric) (*session.Recording, error) {
	cfg, err := script.settings()
	if err != nil {
		return nil, err
	}
	s, err := session.New(cfg)
	if err != nil {
		return nil, err
	}

	d := session.NewDriver(s)
	rec := session.NewRecorder()
	d.AddObserver(rec)
	for _, m := range ms {
		m.Reset()
		d.AddObserver(metrics.Observer(m))
	}

	actions := append([]Action(nil), script.Actions...)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Frame < actions[j].Frame })

	frames := script.Frames
	if frames <= 0 {
		frames = experiment.DefaultFrames
	}

	next := 0
	for f := 0; f < frames; f++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for next < len(actions) && actions[next].Frame <= f {
			if err := apply(s, actions[next]); err != nil {
				return nil, fmt.Errorf("frame %d: %w", f, err)
			}
			next++
		}
		d.Tick()
	}

	out := rec.Recording()
	for _, m := range ms {
		out.Metrics[m.Name()] = m.Value()
	}
	return out, nil
}

func apply(s *session.Session, a Action) error {
	x, y := a.X, a.Y
	if a.Bob != nil {
		p, ok := s.Handle().PositionOf(*a.Bob)
		if !ok {
			return fmt.Errorf("bob %d does not exist", *a.Bob)
		}
		x, y = p.X, p.Y
	}

	switch a.Do {
	case "grab":
		s.PointerDown(x, y)
	case "move":
		s.PointerMove(x, y)
	case "release":
		s.PointerUp()
	case "leave":
		s.PointerLeave()
	case "resize":
		return s.Resize(a.Width, a.Height)
	case "command":
		cmd, err := a.Command.Command()
		if err != nil {
			return err
		}
		return s.Apply(cmd)
	}
	return nil
}

// Sweep varies one parameter across runs of a scenario.
type Sweep struct {
	Scenario  string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
}

type SweepResult struct {
	ParamValue float64
	MaxEnergy  float64
	MinEnergy  float64
	LastSwing  float64
}

// RunSweep accepts any parameter experiment.Config.SetParam knows.
func RunSweep(ctx context.Context, sweep *Sweep, reg *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	sc, err := reg.Get(sweep.Scenario)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		settings, err := reg.Settings(sc)
		if err != nil {
			return nil, err
		}
		cfg := experiment.Config{Scenario: sweep.Scenario, Settings: settings, Frames: sweep.Frames}

		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return nil, err
		}
		disp := metrics.NewDisplacement()
		tracker := &energyRange{gravity: settings.Sim.Gravity}
		if err := exp.Setup([]metrics.Metric{disp, tracker}); err != nil {
			return nil, err
		}
		if _, err := exp.Run(ctx); err != nil {
			return nil, err
		}

		per := disp.PerBob()
		results = append(results, SweepResult{
			ParamValue: paramVal,
			MaxEnergy:  tracker.max,
			MinEnergy:  tracker.min,
			LastSwing:  per[len(per)-1],
		})

		fmt.Printf("Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

type energyRange struct {
	gravity  float64
	min, max float64
	samples  int
}

func (e *energyRange) Name() string { return "energy_range" }

func (e *energyRange) Observe(f session.Frame) {
	v := metrics.TotalEnergy(f, e.gravity)
	if e.samples == 0 || v < e.min {
		e.min = v
	}
	if e.samples == 0 || v > e.max {
		e.max = v
	}
	e.samples++
}

func (e *energyRange) Value() float64 { return e.max - e.min }

func (e *energyRange) Reset() { *e = energyRange{gravity: e.gravity} }
