// Package score implements the composite quality score.
package score

import (
	"math"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

// Compute derives the composite score in [0,100] from normalized metric
// values and the committed weights. Each metric contributes
// clamp(value/target*w, 0, w); P/E uses the inverse relation 20/max(pe, 1)
// so a lower multiple scores higher. The function is pure: callers re-invoke
// it for every row whenever the weights or the row's metrics change.
func Compute(values map[metric.Metric]float64, w *weights.Weights) int {
	var total float64
	for _, m := range metric.All {
		wgt := w.Active(m)
		if wgt <= 0 {
			continue
		}
		total += contribution(m, values[m], wgt)
	}
	s := int(math.Round(total))
	// Weights are validated to total 100, so the cap only matters when
	// rounding nudges the sum past it (or after an ungated import).
	if s > 100 {
		s = 100
	}
	return s
}

func contribution(m metric.Metric, value, weight float64) float64 {
	if m == metric.PERatio {
		pe := value
		if pe <= 0 {
			pe = 1
		}
		return clamp((20/pe)*weight, 0, weight)
	}
	return clamp((value/metric.Get(m).Target)*weight, 0, weight)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
