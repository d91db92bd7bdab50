package automation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/physics"
	"golang.org/x/sync/errgroup"
)

// SweepParams are the controls a sweep can vary.
var SweepParams = []string{"drying_speed", "viscosity", "paper_resist", "ink_weight"}

// ParameterSweep reruns one scenario with one control set to each value.
type ParameterSweep struct {
	Param   string
	Min     float32
	Max     float32
	Steps   int
	Workers int
}

type SweepResult struct {
	Value   float32
	Metrics map[string]float64
	Ticks   uint64
}

// Values returns the evenly spaced values the sweep visits.
func (sw *ParameterSweep) Values() []float32 {
	if sw.Steps <= 1 {
		return []float32{sw.Min}
	}
	step := (sw.Max - sw.Min) / float32(sw.Steps-1)
	out := make([]float32, sw.Steps)
	for i := range out {
		out[i] = sw.Min + float32(i)*step
	}
	return out
}

// SetParam sets one named control on p.
func SetParam(p *physics.Params, name string, v float32) error {
	switch name {
	case "drying_speed":
		p.DryingSpeed = v
	case "viscosity":
		p.Viscosity = v
	case "paper_resist":
		p.PaperResist = v
	case "ink_weight":
		p.InkWeight = v
	default:
		return fmt.Errorf("%w: cannot sweep %q", ErrBadScenario, name)
	}
	return nil
}

// RunSweep runs the scenario once per value, in parallel. Every run owns its
// own studio, so runs share nothing. Results are in value order.
func RunSweep(ctx context.Context, sw *ParameterSweep, sc *Scenario, base *config.Config, log *slog.Logger) ([]SweepResult, error) {
	cfg, err := sc.Resolve(base)
	if err != nil {
		return nil, err
	}
	values := sw.Values()
	scenarios := make([]*Scenario, len(values))
	for i, v := range values {
		p := cfg.Params
		if err := SetParam(&p, sw.Param, v); err != nil {
			return nil, err
		}
		c := *sc
		c.Params = &p
		scenarios[i] = &c
	}

	results := make([]SweepResult, len(values))
	g, ctx := errgroup.WithContext(ctx)
	workers := sw.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i := range scenarios {
		g.Go(func() error {
			res, err := RunScenario(ctx, scenarios[i], base, log)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, values[i], err)
			}
			results[i] = SweepResult{Value: values[i], Metrics: res.Metrics, Ticks: res.Ticks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
