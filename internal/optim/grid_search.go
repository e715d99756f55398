package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Objective scores one parameter combination; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch evaluates every combination of the candidate values and keeps
// the lowest score.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size returns the number of combinations.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the best parameters and score. Combinations whose objective
// fails are skipped; if none succeed the last failure is returned. A
// cancelled context stops the search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%w: grid has %d names for %d ranges", dynamo.ErrConfig, len(g.paramNames), len(g.ranges))
	}

	s := &gridState{best: math.Inf(1)}
	g.searchRecursive(ctx, 0, make(map[string]float64), objective, s)

	if err := ctx.Err(); err != nil {
		return s.bestParams, s.best, err
	}
	if s.bestParams == nil {
		if s.lastErr != nil {
			return nil, s.best, s.lastErr
		}
		return nil, s.best, fmt.Errorf("%w: empty grid", dynamo.ErrConfig)
	}
	return s.bestParams, s.best, nil
}

type gridState struct {
	best       float64
	bestParams map[string]float64
	lastErr    error
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, objective Objective, s *gridState) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			s.lastErr = err
			return
		}

		if val < s.best || s.bestParams == nil {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, objective, s)
	}
}
