// Package optim searches scene parameters for the run that minimises a
// metric, typically the energy left in the domain after the pulse.
package optim

import (
	"context"
	"fmt"
	"math"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/fdtdabc/internal/config"
	"github.com/san-kum/fdtdabc/internal/experiment"
)

// Metric scores a run; lower is better.
type Metric func(*experiment.Result) float64

// Residual scores a run by its final to peak energy ratio.
func Residual(r *experiment.Result) float64 { return r.Residual() }

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Log        logrus.FieldLogger
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, Log: logrus.StandardLogger()}
}

// Search runs base once per point of the parameter grid and returns the
// best point with its score. Failed runs are logged and skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Scene, metric Metric) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metric, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Scene,
	metric Metric,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		scene := base.Clone()
		for k, v := range current {
			if err := scene.SetParam(k, v); err != nil {
				return err
			}
		}

		log := g.Log.WithFields(logrus.Fields{"params": fmt.Sprint(current)})
		result, err := experiment.New(scene, log).Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("grid point failed")
			return nil
		}

		val := metric(result)
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metric, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
