package config

import (
	"fmt"

	"github.com/san-kum/cradle/internal/dynamo"
)

// Command is a typed configuration update. Apply is pure: it returns the
// updated, clamped configuration and leaves the input untouched.
type Command interface {
	Apply(c Cradle) Cradle
	Name() string
}

type SetBobCount struct{ N int }

func (s SetBobCount) Name() string { return "set_bob_count" }

func (s SetBobCount) Apply(c Cradle) Cradle {
	c = c.Clamp()
	c.BobCount = s.N
	return c.Clamp()
}

type SetGap struct{ On bool }

func (s SetGap) Name() string { return "set_gap" }

func (s SetGap) Apply(c Cradle) Cradle {
	c = c.Clamp()
	c.ContactGap = s.On
	return c
}

type SetMassMode struct{ Mode MassMode }

func (s SetMassMode) Name() string { return "set_mass_mode" }

func (s SetMassMode) Apply(c Cradle) Cradle {
	c = c.Clamp()
	c.MassMode = s.Mode
	return c.Clamp()
}

// SetMassOverride changes one bob's ratio. Indices outside the current row
// are ignored.
type SetMassOverride struct {
	Index int
	Ratio float64
}

func (s SetMassOverride) Name() string { return "set_mass_override" }

func (s SetMassOverride) Apply(c Cradle) Cradle {
	c = c.Clamp()
	if s.Index < 0 || s.Index >= c.BobCount {
		return c
	}
	c.MassOverrides[s.Index] = QuantizeMass(s.Ratio)
	return c
}

// Reset leaves the configuration as is; applying it forces a rebuild.
type Reset struct{}

func (Reset) Name() string { return "reset" }

func (Reset) Apply(c Cradle) Cradle { return c.Clamp() }

// CommandSpec is the wire form of a Command used by scripts and the web
// client.
type CommandSpec struct {
	Op    string  `json:"op" yaml:"op"`
	Index int     `json:"index,omitempty" yaml:"index,omitempty"`
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`
	On    bool    `json:"on,omitempty" yaml:"on,omitempty"`
	Mode  string  `json:"mode,omitempty" yaml:"mode,omitempty"`
}

func (s CommandSpec) Command() (Command, error) {
	switch s.Op {
	case "set_bob_count":
		return SetBobCount{N: int(s.Value)}, nil
	case "set_gap":
		return SetGap{On: s.On}, nil
	case "set_mass_mode":
		return SetMassMode{Mode: MassMode(s.Mode)}, nil
	case "set_mass_override":
		return SetMassOverride{Index: s.Index, Ratio: s.Value}, nil
	case "reset":
		return Reset{}, nil
	default:
		return nil, fmt.Errorf("command %q: %w", s.Op, dynamo.ErrParameterBounds)
	}
}
