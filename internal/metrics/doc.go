// Package metrics holds scalar metrics and a sampling trace that watch a
// running simulation. Metrics implement sim.Metric and run inside every tick
// without allocating; Trace is a sim.Observer and keeps a row per sample.
package metrics

import (
	"fmt"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/sim"
)

// Default returns the metric set attached to recorded and batch runs.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewPigmentDrift(),
		NewStability(SpeedLimit),
		NewMaxSpeed(),
		NewFixedFraction(),
		NewWetArea(),
		NewDensityDeviation(),
	}
}

// SpeedLimit is the solver's velocity clamp with rounding slack.
const SpeedLimit = grid.MaxSpeed * 1.001

// Select returns the default metrics with the given names, in order. No
// names selects them all.
func Select(names []string) ([]sim.Metric, error) {
	all := Default()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		found := false
		for _, m := range all {
			if m.Name() == name {
				out = append(out, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
	}
	return out, nil
}
