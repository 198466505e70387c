package config

import "sort"

var Presets = map[string]*Config{
	"classic": {
		Cradle: Cradle{BobCount: 5, ContactGap: true, MassMode: MassUniform},
		Sim:    DefaultSim(),
	},
	"fused": {
		Cradle: Cradle{BobCount: 5, ContactGap: false, MassMode: MassUniform},
		Sim:    DefaultSim(),
	},
	"heavy_end": {
		Cradle: Cradle{
			BobCount:      5,
			ContactGap:    true,
			MassMode:      MassIndividual,
			MassOverrides: []float64{3.0, 1.0, 1.0, 1.0, 1.0},
		},
		Sim: DefaultSim(),
	},
	"rainbow": {
		Cradle: Cradle{
			BobCount:      9,
			ContactGap:    true,
			MassMode:      MassIndividual,
			MassOverrides: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		Sim: DefaultSim(),
	},
	"pair": {
		Cradle: Cradle{BobCount: 2, ContactGap: true, MassMode: MassUniform},
		Sim:    DefaultSim(),
	},
}

// GetPreset returns a clamped copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Clamp()
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
