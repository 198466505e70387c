// Package optim searches cradle parameters for the run that best scores on
// one metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/cradle/internal/experiment"
	"github.com/san-kum/cradle/internal/metrics"
	"golang.org/x/sync/errgroup"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Workers bounds the runs in flight. Zero means GOMAXPROCS.
	Workers int
	// Maximize picks the highest metric value instead of the lowest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Builder returns a set-up experiment for one grid point.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type Point struct {
	Params map[string]float64
	Value  float64
}

// Search runs every grid point and returns the best one together with all
// evaluated points in grid order. The first failed run cancels the rest.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Point{}, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	grid := g.points()
	if len(grid) == 0 {
		return Point{}, nil, fmt.Errorf("empty grid")
	}

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Point, len(grid))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, params := range grid {
		eg.Go(func() error {
			exp, err := build(params)
			if err != nil {
				return err
			}
			rec, err := exp.Run(gctx)
			if err != nil {
				return err
			}
			val, ok := rec.Metrics[metricName]
			if !ok {
				return fmt.Errorf("metric %q not recorded", metricName)
			}
			results[i] = Point{Params: params, Value: val}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, nil, err
	}

	best := Point{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	for _, p := range results {
		if (g.Maximize && p.Value > best.Value) || (!g.Maximize && p.Value < best.Value) {
			best = p
		}
	}
	return best, results, nil
}

// points expands the ranges into their cartesian product, first parameter
// varying slowest.
func (g *GridSearch) points() []map[string]float64 {
	out := []map[string]float64{{}}
	for depth, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(out)*len(g.ranges[depth]))
		for _, current := range out {
			for _, val := range g.ranges[depth] {
				p := make(map[string]float64, len(current)+1)
				for k, v := range current {
					p[k] = v
				}
				p[name] = val
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// ScenarioBuilder builds runs of a registered scenario with the default
// metrics attached, applying each grid point through Config.SetParam.
func ScenarioBuilder(reg *experiment.Registry, scenario string, frames int) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		sc, err := reg.Get(scenario)
		if err != nil {
			return nil, err
		}
		settings, err := reg.Settings(sc)
		if err != nil {
			return nil, err
		}

		cfg := experiment.Config{Scenario: scenario, Settings: settings, Frames: frames}
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return nil, err
		}
		if err := exp.Setup(metrics.Defaults(settings.Sim.Gravity)); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
