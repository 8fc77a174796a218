// Package source persists engine state between runs: the committed weights,
// the remembered sort, and the watchlist rows with their evaluated display
// strings and analysis text.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

// State is the persisted snapshot of a session.
type State struct {
	Weights WeightsState `yaml:"weights"`
	Sort    SortState    `yaml:"sort,omitempty"`
	Rows    []RowState   `yaml:"watchlist"`
}

// WeightsState mirrors the weight configuration, including exclusions and
// the remembered pre-exclusion values.
type WeightsState struct {
	Values     map[string]float64 `yaml:"values"`
	Excluded   []string           `yaml:"excluded,omitempty"`
	LastActive map[string]float64 `yaml:"lastActive,omitempty"`
}

// SortState remembers the last explicit sort, if any.
type SortState struct {
	Column    string `yaml:"column,omitempty"`
	Ascending bool   `yaml:"ascending,omitempty"`
}

// RowState stores one row by its display strings; parsed values and score
// are recomputed on load.
type RowState struct {
	Sym      string            `yaml:"sym"`
	Name     string            `yaml:"name,omitempty"`
	Country  string            `yaml:"country,omitempty"`
	Price    string            `yaml:"price,omitempty"`
	Metrics  map[string]string `yaml:"metrics,omitempty"`
	Analysis string            `yaml:"analysis,omitempty"`
	AIState  string            `yaml:"aiState,omitempty"`
}

// Snapshot captures the current engine state for persistence.
func Snapshot(rows []*watchlist.Row, w *weights.Weights, sort SortState) State {
	st := State{Sort: sort}

	st.Weights.Values = map[string]float64{}
	for _, m := range metric.All {
		st.Weights.Values[string(m)] = w.Get(m)
	}
	for _, m := range w.Excluded() {
		st.Weights.Excluded = append(st.Weights.Excluded, string(m))
	}
	if last := w.LastActive(); len(last) > 0 {
		st.Weights.LastActive = map[string]float64{}
		for m, v := range last {
			st.Weights.LastActive[string(m)] = v
		}
	}

	for _, r := range rows {
		rs := RowState{
			Sym:      r.Symbol,
			Name:     r.Company,
			Country:  r.Country,
			Price:    r.PriceDisplay,
			Metrics:  map[string]string{},
			Analysis: r.Analysis,
			AIState:  string(r.AIState),
		}
		for _, m := range metric.All {
			if v := r.Display[m]; v != "" {
				rs.Metrics[string(m)] = v
			}
		}
		st.Rows = append(st.Rows, rs)
	}
	return st
}

// BuildWeights reconstructs the weight configuration from persisted state.
// Unknown metric keys are dropped; missing metrics fall back to defaults.
func (ws WeightsState) BuildWeights() *weights.Weights {
	if len(ws.Values) == 0 {
		return weights.Default()
	}
	values := map[metric.Metric]float64{}
	last := map[metric.Metric]float64{}
	var excluded []metric.Metric
	for _, m := range metric.All {
		if v, ok := ws.Values[string(m)]; ok {
			values[m] = v
		}
		if v, ok := ws.LastActive[string(m)]; ok {
			last[m] = v
		}
	}
	for _, k := range ws.Excluded {
		for _, m := range metric.All {
			if string(m) == k {
				excluded = append(excluded, m)
			}
		}
	}
	return weights.New(values, excluded, last)
}

// RestoreRows rebuilds the store from persisted rows, rescoring each against
// the given weights. Rows with blank symbols or duplicate symbols are dropped.
func RestoreRows(st State, store *watchlist.Store, w *weights.Weights) {
	for _, rs := range st.Rows {
		row := &watchlist.Row{
			Symbol:       rs.Sym,
			Company:      rs.Name,
			Country:      rs.Country,
			PriceDisplay: rs.Price,
			Display:      map[metric.Metric]string{},
			Analysis:     rs.Analysis,
			AIState:      watchlist.AIState(rs.AIState),
		}
		for _, m := range metric.All {
			row.Display[m] = rs.Metrics[string(m)]
		}
		store.Restore(row, w)
	}
}

// Load reads persisted state. A missing file is not an error: it returns the
// zero state, which BuildWeights turns into defaults.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, err
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// Save writes state to a YAML file, creating parent directories as needed.
// The write goes through a temp file and rename so a crash cannot leave a
// half-written state behind.
func Save(path string, st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
