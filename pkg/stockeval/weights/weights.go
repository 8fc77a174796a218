// Package weights holds the committed scoring weight configuration and the
// draft transaction used to edit it. Committed weights change only through
// Draft.Commit or the ungated Apply used by workbook imports.
package weights

import (
	"fmt"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

// ValidationError reports a draft whose active weights do not total 100.
type ValidationError struct {
	Total float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("total weight must equal 100, got %g", e.Total)
}

// Weights is the committed weight configuration: points per metric, the set
// of excluded metrics, and the weight each excluded metric held before
// exclusion so re-including restores it.
type Weights struct {
	values     map[metric.Metric]float64
	excluded   map[metric.Metric]bool
	lastActive map[metric.Metric]float64
}

// Default returns a Weights with the stock allocation and nothing excluded.
func Default() *Weights {
	return &Weights{
		values:     metric.DefaultWeights(),
		excluded:   map[metric.Metric]bool{},
		lastActive: map[metric.Metric]float64{},
	}
}

// New builds a Weights from explicit values and exclusions, normalizing the
// invariant that excluded metrics carry weight 0. Used when restoring
// persisted state.
func New(values map[metric.Metric]float64, excluded []metric.Metric, lastActive map[metric.Metric]float64) *Weights {
	w := &Weights{
		values:     map[metric.Metric]float64{},
		excluded:   map[metric.Metric]bool{},
		lastActive: map[metric.Metric]float64{},
	}
	for _, m := range metric.All {
		w.values[m] = max0(values[m])
	}
	for m, v := range lastActive {
		w.lastActive[m] = max0(v)
	}
	for _, m := range excluded {
		if !w.excluded[m] {
			w.excluded[m] = true
			if w.values[m] != 0 {
				w.lastActive[m] = w.values[m]
				w.values[m] = 0
			}
		}
	}
	return w
}

// Get returns the committed weight for a metric.
func (w *Weights) Get(m metric.Metric) float64 { return w.values[m] }

// Active returns the weight a metric contributes to scoring: 0 when
// excluded, the committed value otherwise.
func (w *Weights) Active(m metric.Metric) float64 {
	if w.excluded[m] {
		return 0
	}
	return w.values[m]
}

// IsExcluded reports whether a metric is excluded.
func (w *Weights) IsExcluded(m metric.Metric) bool { return w.excluded[m] }

// Excluded returns the excluded metrics in canonical order.
func (w *Weights) Excluded() []metric.Metric {
	var out []metric.Metric
	for _, m := range metric.All {
		if w.excluded[m] {
			out = append(out, m)
		}
	}
	return out
}

// LastActive returns the remembered pre-exclusion weights.
func (w *Weights) LastActive() map[metric.Metric]float64 {
	out := make(map[metric.Metric]float64, len(w.lastActive))
	for m, v := range w.lastActive {
		out[m] = v
	}
	return out
}

// Values returns a copy of the committed weights.
func (w *Weights) Values() map[metric.Metric]float64 {
	out := make(map[metric.Metric]float64, len(w.values))
	for _, m := range metric.All {
		out[m] = w.values[m]
	}
	return out
}

// Apply sets a committed weight directly, bypassing the 100-point gate.
// This is the workbook import path: imported weights take effect without
// validation. A positive weight clears any exclusion so the excluded-means-
// zero invariant holds.
func (w *Weights) Apply(m metric.Metric, value float64) {
	value = max0(value)
	w.values[m] = value
	if value > 0 && w.excluded[m] {
		delete(w.excluded, m)
	}
}

// Open snapshots the committed configuration into an editable draft.
func (w *Weights) Open() *Draft {
	d := &Draft{
		parent:     w,
		values:     map[metric.Metric]float64{},
		excluded:   map[metric.Metric]bool{},
		lastActive: map[metric.Metric]float64{},
	}
	for _, m := range metric.All {
		d.values[m] = w.values[m]
		if w.excluded[m] {
			d.excluded[m] = true
		}
	}
	for m, v := range w.lastActive {
		d.lastActive[m] = v
	}
	return d
}

// Draft is an in-progress edit of the weight configuration. Nothing touches
// the committed Weights until Commit succeeds.
type Draft struct {
	parent     *Weights
	values     map[metric.Metric]float64
	excluded   map[metric.Metric]bool
	lastActive map[metric.Metric]float64
}

// SetWeight sets the draft weight for a metric to max(value, 0). Edits to
// excluded metrics are ignored; re-include first.
func (d *Draft) SetWeight(m metric.Metric, value float64) {
	if d.excluded[m] {
		return
	}
	d.values[m] = max0(value)
}

// ToggleExclude flips the exclusion state of a metric. Excluding remembers
// the current draft weight and zeroes it; re-including restores the
// remembered weight (0 if never set).
func (d *Draft) ToggleExclude(m metric.Metric) {
	if d.excluded[m] {
		delete(d.excluded, m)
		d.values[m] = d.lastActive[m]
		return
	}
	d.excluded[m] = true
	d.lastActive[m] = d.values[m]
	d.values[m] = 0
}

// Get returns the draft weight for a metric.
func (d *Draft) Get(m metric.Metric) float64 { return d.values[m] }

// IsExcluded reports whether a metric is excluded in the draft.
func (d *Draft) IsExcluded(m metric.Metric) bool { return d.excluded[m] }

// Total sums the draft weights over non-excluded metrics.
func (d *Draft) Total() float64 {
	var total float64
	for _, m := range metric.All {
		if d.excluded[m] {
			continue
		}
		total += d.values[m]
	}
	return total
}

// Commit validates the draft and replaces the committed configuration.
// A total other than exactly 100 fails with ValidationError and leaves both
// the draft and the committed weights untouched.
func (d *Draft) Commit() error {
	if t := d.Total(); t != 100 {
		return &ValidationError{Total: t}
	}
	p := d.parent
	p.values = map[metric.Metric]float64{}
	p.excluded = map[metric.Metric]bool{}
	p.lastActive = map[metric.Metric]float64{}
	for _, m := range metric.All {
		p.values[m] = d.values[m]
		if d.excluded[m] {
			p.excluded[m] = true
		}
	}
	for m, v := range d.lastActive {
		p.lastActive[m] = v
	}
	return nil
}

// Discard drops the draft; the committed configuration is unchanged.
// The draft must not be used afterwards.
func (d *Draft) Discard() {
	d.values = nil
	d.excluded = nil
	d.lastActive = nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
