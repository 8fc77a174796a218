// Package watchlist holds the ordered collection of watched instruments and
// the stable sort applied to it.
package watchlist

import (
	"strings"

	"github.com/dumbstock/stockeval/pkg/stockeval/eval"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/score"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

// AIState tracks the qualitative-analysis lifecycle of a row.
type AIState string

const (
	// AINone means no analysis yet; the row is retryable.
	AINone AIState = "none"
	// AIPending means an analysis call is outstanding.
	AIPending AIState = "pending"
	// AIDone means qualitative text is stored.
	AIDone AIState = "done"
	// AIFailed means a batch run returned no result for the row.
	AIFailed AIState = "failed"
)

// Row is one watched instrument: identity, raw display strings, normalized
// metric values, the derived score, and the analysis state.
type Row struct {
	Symbol  string
	Company string
	Country string

	// Price is the parsed price; PriceDisplay the formatted original.
	Price        float64
	PriceDisplay string

	// Display holds the formatted per-metric strings as evaluated.
	Display map[metric.Metric]string
	// Values holds the normalized metric values derived from Display.
	Values map[metric.Metric]float64

	Score int

	AIState  AIState
	Analysis string
}

// Store is the ordered sequence of rows. Insertion order is the default
// order; Sort produces a new presentation order without touching row
// content. Store is not safe for concurrent mutation; the engine is the
// single mutator.
type Store struct {
	rows  []*Row
	index map[string]*Row
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: map[string]*Row{}}
}

// Normalize canonicalizes a symbol for identity checks: trimmed, uppercased.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add normalizes an evaluation result into a row, scores it against the
// committed weights, and appends it. Adding a symbol that is already present
// is a silent no-op: the second return is false and no row changes.
func (s *Store) Add(res eval.Result, w *weights.Weights) (*Row, bool) {
	sym := Normalize(res.Symbol)
	if sym == "" {
		return nil, false
	}
	if _, dup := s.index[sym]; dup {
		return nil, false
	}

	row := &Row{
		Symbol:       sym,
		Company:      res.Name,
		Country:      res.Country,
		PriceDisplay: res.PriceDisplay,
		Price:        metric.ParseNumber(res.PriceDisplay),
		Display:      map[metric.Metric]string{},
		Values:       map[metric.Metric]float64{},
		AIState:      AINone,
	}
	for _, m := range metric.All {
		raw := res.Display[m]
		row.Display[m] = raw
		row.Values[m] = metric.ParseValue(raw, metric.Get(m).Kind)
	}
	row.Score = score.Compute(row.Values, w)

	s.rows = append(s.rows, row)
	s.index[sym] = row
	return row, true
}

// Restore appends a previously persisted row as-is, recomputing only the
// parsed values and score from its display strings. Pending analysis state
// does not survive a restart and reverts to retryable.
func (s *Store) Restore(row *Row, w *weights.Weights) bool {
	sym := Normalize(row.Symbol)
	if sym == "" {
		return false
	}
	if _, dup := s.index[sym]; dup {
		return false
	}
	row.Symbol = sym
	row.Price = metric.ParseNumber(row.PriceDisplay)
	if row.Values == nil {
		row.Values = map[metric.Metric]float64{}
	}
	for _, m := range metric.All {
		row.Values[m] = metric.ParseValue(row.Display[m], metric.Get(m).Kind)
	}
	row.Score = score.Compute(row.Values, w)
	if row.AIState == AIPending || row.AIState == "" {
		row.AIState = AINone
	}
	s.rows = append(s.rows, row)
	s.index[sym] = row
	return true
}

// Remove deletes the row for a symbol; absent symbols are a no-op.
func (s *Store) Remove(symbol string) bool {
	sym := Normalize(symbol)
	row, ok := s.index[sym]
	if !ok {
		return false
	}
	delete(s.index, sym)
	for i, r := range s.rows {
		if r == row {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the row for a symbol, or nil.
func (s *Store) Get(symbol string) *Row {
	return s.index[Normalize(symbol)]
}

// Has reports whether a symbol is present.
func (s *Store) Has(symbol string) bool {
	_, ok := s.index[Normalize(symbol)]
	return ok
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Rows returns the rows in presentation order. The slice is a copy; the rows
// are shared.
func (s *Store) Rows() []*Row {
	out := make([]*Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Symbols returns the symbols in presentation order.
func (s *Store) Symbols() []string {
	out := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.Symbol)
	}
	return out
}

// RecomputeScores re-applies the score calculator to every row. Called after
// any weight commit or import.
func (s *Store) RecomputeScores(w *weights.Weights) {
	for _, r := range s.rows {
		r.Score = score.Compute(r.Values, w)
	}
}

// SetAnalysis stores qualitative text for a symbol and marks it done.
// Rows removed while the analysis call was in flight are silently skipped.
func (s *Store) SetAnalysis(symbol, text string) bool {
	row := s.Get(symbol)
	if row == nil {
		return false
	}
	row.Analysis = text
	row.AIState = AIDone
	return true
}

// SetPending marks the given symbols pending ahead of an analysis call.
func (s *Store) SetPending(symbols ...string) {
	for _, sym := range symbols {
		if row := s.Get(sym); row != nil {
			row.AIState = AIPending
		}
	}
}

// SetRetryable reverts still-pending rows to the retryable state after a
// failed call. Rows that already received a result keep it.
func (s *Store) SetRetryable(symbols ...string) {
	for _, sym := range symbols {
		if row := s.Get(sym); row != nil && row.AIState == AIPending {
			row.AIState = AINone
		}
	}
}

// SetNoResult marks still-pending rows failed (non-retryable "N/A") after a
// batch run that omitted them.
func (s *Store) SetNoResult(symbols ...string) {
	for _, sym := range symbols {
		if row := s.Get(sym); row != nil && row.AIState == AIPending {
			row.AIState = AIFailed
		}
	}
}
