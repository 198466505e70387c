package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
)

// Scenario describes a scripted release: how many bobs are lifted from the
// left end and which configuration the cradle starts from.
type Scenario struct {
	Name        string
	Description string
	Lift        int
	Preset      string
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.Register(Scenario{Name: "release", Description: "lift the first bob and let go", Lift: 1, Preset: "classic"})
	r.Register(Scenario{Name: "double", Description: "lift two bobs together", Lift: 2, Preset: "classic"})
	r.Register(Scenario{Name: "fused", Description: "single release into a gapless row", Lift: 1, Preset: "fused"})
	r.Register(Scenario{Name: "heavy", Description: "heavy striker into a light row", Lift: 1, Preset: "heavy_end"})

	return r
}

func (r *Registry) Register(s Scenario) { r.scenarios[s.Name] = s }

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, name)
	}
	return s, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings resolves the starting configuration of a scenario.
func (r *Registry) Settings(s Scenario) (*config.Config, error) {
	cfg := config.GetPreset(s.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("scenario %s: %w: %s", s.Name, dynamo.ErrUnknownPreset, s.Preset)
	}
	return cfg, nil
}
