// Package optim searches control settings for the values that bring a
// scenario's outcome closest to a goal.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
)

var ErrNoResult = errors.New("optim: no point could be evaluated")

// Objective scores one point of the search; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch visits every combination of the given values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	evaluated int
	failed    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points is the number of combinations Search evaluates.
func (g *GridSearch) Points() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the point with the lowest objective. Points whose
// objective fails are skipped; ErrNoResult means every one failed.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	g.evaluated, g.failed = 0, 0
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoResult
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		g.evaluated++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.failed++
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) Evaluated() int { return g.evaluated }
func (g *GridSearch) Failed() int    { return g.failed }

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
