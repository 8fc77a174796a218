// Package engine is the single mutator tying the store, the weight
// configuration, and the evaluation services together. Every mutation runs
// through the engine, which rescales scores, reapplies the active sort, and
// notifies subscribers — keeping scores, columns, and row order in lockstep
// with the state that produced them.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/eval"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
	"github.com/dumbstock/stockeval/pkg/stockeval/workbook"
)

// Event identifies what a notification is about.
type Event int

const (
	// RowsChanged fires on any change to row content or order.
	RowsChanged Event = iota
	// ColumnsChanged fires when the set of visible columns changed.
	ColumnsChanged
)

// UnknownSymbolError reports an operation on a symbol not in the watchlist.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q is not on the watchlist", e.Symbol)
}

// Config carries the engine's collaborators. Suggester and Analyst may be
// nil; the corresponding operations then report being unavailable.
type Config struct {
	Evaluator eval.Evaluator
	Suggester eval.Suggester
	Analyst   eval.Analyst
	Weights   *weights.Weights
	Store     *watchlist.Store
	Log       zerolog.Logger
}

// Engine owns all watchlist state. Network calls run outside the lock; every
// result is re-checked against current state before it lands, so a row
// removed mid-flight never resurfaces.
type Engine struct {
	mu        sync.Mutex
	store     *watchlist.Store
	weights   *weights.Weights
	evaluator eval.Evaluator
	suggester eval.Suggester
	analyst   eval.Analyst
	log       zerolog.Logger

	sortColumn string
	sortAsc    bool
	sorted     bool

	listeners []func(Event)
}

// New builds an engine. A nil Store or Weights starts empty with defaults.
func New(cfg Config) *Engine {
	if cfg.Store == nil {
		cfg.Store = watchlist.NewStore()
	}
	if cfg.Weights == nil {
		cfg.Weights = weights.Default()
	}
	return &Engine{
		store:     cfg.Store,
		weights:   cfg.Weights,
		evaluator: cfg.Evaluator,
		suggester: cfg.Suggester,
		analyst:   cfg.Analyst,
		log:       cfg.Log,
	}
}

// Subscribe registers a notification callback. Callbacks run outside the
// engine lock and may call back into the engine.
func (e *Engine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

func (e *Engine) notify(events ...Event) {
	e.mu.Lock()
	fns := make([]func(Event), len(e.listeners))
	copy(fns, e.listeners)
	e.mu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// Rows returns the rows in current presentation order.
func (e *Engine) Rows() []*watchlist.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Rows()
}

// Get returns the row for a symbol, or nil.
func (e *Engine) Get(symbol string) *watchlist.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(symbol)
}

// Len returns the number of rows.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

// Weights returns the committed weight configuration.
func (e *Engine) Weights() *weights.Weights { return e.weights }

// Columns returns the currently visible columns.
func (e *Engine) Columns() []columns.Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return columns.Visible(e.weights)
}

// AddSymbol evaluates a symbol and appends it to the watchlist. Adding a
// symbol that is already present is a silent no-op returning (nil, nil).
// Evaluation failures propagate as *eval.LookupError.
func (e *Engine) AddSymbol(ctx context.Context, symbol string) (*watchlist.Row, error) {
	sym := watchlist.Normalize(symbol)
	if sym == "" {
		return nil, nil
	}

	e.mu.Lock()
	if e.store.Has(sym) {
		e.mu.Unlock()
		return nil, nil
	}
	e.mu.Unlock()

	res, err := e.evaluator.Evaluate(ctx, sym)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	row, added := e.store.Add(res, e.weights)
	if added {
		e.resortLocked()
	}
	e.mu.Unlock()

	if added {
		e.log.Info().Str("symbol", sym).Int("score", row.Score).Msg("symbol added")
		e.notify(RowsChanged)
	}
	return row, nil
}

// Remove drops a symbol from the watchlist; absent symbols are a no-op.
func (e *Engine) Remove(symbol string) bool {
	e.mu.Lock()
	ok := e.store.Remove(symbol)
	e.mu.Unlock()
	if ok {
		e.notify(RowsChanged)
	}
	return ok
}

// Suggest forwards a search query to the suggester.
func (e *Engine) Suggest(ctx context.Context, query string) ([]eval.Suggestion, error) {
	if e.suggester == nil {
		return nil, nil
	}
	return e.suggester.Suggest(ctx, query)
}

// Sort orders the rows by a column and remembers the choice: rows added
// later slot into the same order.
func (e *Engine) Sort(column string, ascending bool) {
	e.mu.Lock()
	e.sortColumn = column
	e.sortAsc = ascending
	e.sorted = true
	e.store.Sort(column, ascending)
	e.mu.Unlock()
	e.notify(RowsChanged)
}

// SortState reports the remembered sort; ok is false when no explicit sort
// has been chosen yet.
func (e *Engine) SortState() (column string, ascending, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortColumn, e.sortAsc, e.sorted
}

func (e *Engine) resortLocked() {
	if e.sorted {
		e.store.Sort(e.sortColumn, e.sortAsc)
	}
}

// OpenWeights opens an editing draft over the committed weights.
func (e *Engine) OpenWeights() *weights.Draft {
	return e.weights.Open()
}

// CommitWeights commits a draft. On success every score is recomputed, the
// sort reapplied, and subscribers notified — including a column notification
// when the exclusion set changed. A failed commit leaves everything as it
// was, the draft included.
func (e *Engine) CommitWeights(d *weights.Draft) error {
	e.mu.Lock()
	before := e.weights.Excluded()
	if err := d.Commit(); err != nil {
		e.mu.Unlock()
		return err
	}
	colsChanged := !sameExclusions(before, e.weights.Excluded())
	e.store.RecomputeScores(e.weights)
	e.resortLocked()
	e.mu.Unlock()

	if colsChanged {
		e.notify(ColumnsChanged)
	}
	e.notify(RowsChanged)
	return nil
}

func sameExclusions(a, b []metric.Metric) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AnalyzeOne requests qualitative analysis for a single row. The row is
// pending for the duration of the call; a failure reverts it to retryable
// and returns the error.
func (e *Engine) AnalyzeOne(ctx context.Context, symbol string) error {
	if e.analyst == nil {
		return fmt.Errorf("qualitative analysis is not configured")
	}
	sym := watchlist.Normalize(symbol)

	e.mu.Lock()
	row := e.store.Get(sym)
	if row == nil {
		e.mu.Unlock()
		return &UnknownSymbolError{Symbol: sym}
	}
	// No de-duplication against an outstanding batch call: both may be in
	// flight, the later result wins.
	req := eval.AnalysisRequest{Symbol: sym, Summary: eval.Summary(row.Display)}
	e.store.SetPending(sym)
	e.mu.Unlock()
	e.notify(RowsChanged)

	results, err := e.analyst.Analyze(ctx, []eval.AnalysisRequest{req})
	e.mu.Lock()
	if err != nil {
		e.store.SetRetryable(sym)
		e.mu.Unlock()
		e.notify(RowsChanged)
		return fmt.Errorf("analyze %s: %w", sym, err)
	}
	applyAnalyses(e.store, results)
	noResult := false
	if row := e.store.Get(sym); row != nil && row.AIState == watchlist.AIPending {
		e.store.SetRetryable(sym)
		noResult = true
	}
	e.mu.Unlock()
	e.notify(RowsChanged)
	if noResult {
		return fmt.Errorf("analyze %s: no analysis returned", sym)
	}
	return nil
}

// AnalyzeAll requests qualitative analysis for every row that has none yet.
// Rows the analyst skips are marked failed; a transport failure reverts the
// whole batch to retryable.
func (e *Engine) AnalyzeAll(ctx context.Context) error {
	if e.analyst == nil {
		return fmt.Errorf("qualitative analysis is not configured")
	}

	e.mu.Lock()
	var reqs []eval.AnalysisRequest
	var symbols []string
	for _, row := range e.store.Rows() {
		if row.AIState == watchlist.AIDone || row.AIState == watchlist.AIPending {
			continue
		}
		reqs = append(reqs, eval.AnalysisRequest{Symbol: row.Symbol, Summary: eval.Summary(row.Display)})
		symbols = append(symbols, row.Symbol)
	}
	e.store.SetPending(symbols...)
	e.mu.Unlock()
	if len(reqs) == 0 {
		return nil
	}
	e.notify(RowsChanged)

	results, err := e.analyst.Analyze(ctx, reqs)
	e.mu.Lock()
	if err != nil {
		e.store.SetRetryable(symbols...)
		e.mu.Unlock()
		e.notify(RowsChanged)
		return fmt.Errorf("analyze watchlist: %w", err)
	}
	applyAnalyses(e.store, results)
	e.store.SetNoResult(symbols...)
	e.mu.Unlock()
	e.notify(RowsChanged)
	return nil
}

// applyAnalyses lands results on their rows; rows removed while the call was
// in flight are dropped.
func applyAnalyses(s *watchlist.Store, results []eval.Analysis) {
	for _, res := range results {
		s.SetAnalysis(res.Symbol, res.Qualitative)
	}
}

// Export writes the current watchlist and weights to an xlsx workbook.
func (e *Engine) Export(path string) error {
	e.mu.Lock()
	rows := e.store.Rows()
	w := e.weights
	e.mu.Unlock()
	return workbook.Export(path, rows, w)
}

// Import reads a workbook: weight overrides apply immediately and without
// the 100-point budget check, then every symbol not already on the list is
// evaluated and added. Symbols that fail evaluation are logged and skipped;
// the import continues.
func (e *Engine) Import(ctx context.Context, path string) error {
	imp, err := workbook.Import(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	before := e.weights.Excluded()
	for _, m := range metric.All {
		if v, ok := imp.Weights[m]; ok {
			e.weights.Apply(m, v)
		}
	}
	colsChanged := !sameExclusions(before, e.weights.Excluded())
	e.store.RecomputeScores(e.weights)
	e.mu.Unlock()

	for _, sym := range imp.Symbols {
		if _, err := e.AddSymbol(ctx, sym); err != nil {
			e.log.Warn().Str("symbol", sym).Err(err).Msg("import: symbol skipped")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	e.mu.Lock()
	e.resortLocked()
	e.mu.Unlock()

	if colsChanged {
		e.notify(ColumnsChanged)
	}
	e.notify(RowsChanged)
	return nil
}
