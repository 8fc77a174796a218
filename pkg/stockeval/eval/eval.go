// Package eval defines the external collaborators the engine consumes: the
// instrument evaluator, the ticker suggestion directory, and the qualitative
// analyst. Concrete implementations back onto Yahoo Finance, a local ticker
// CSV, and OpenRouter.
package eval

import (
	"context"
	"fmt"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

// Result carries one instrument's evaluation: identity, display strings for
// every metric, and the formatted price. Display strings are the canonical
// form; consumers normalize them through metric.ParseValue.
type Result struct {
	Symbol  string
	Name    string
	Country string
	// PriceDisplay is the formatted price, e.g. "$184.92".
	PriceDisplay string
	// Display holds the formatted metric values, e.g. "15%", "10x", "N/A".
	Display map[metric.Metric]string
}

// Suggestion is one incremental-search match.
type Suggestion struct {
	Name         string
	Symbol       string
	CountryShort string
}

// Analysis is one qualitative result from a batch call.
type Analysis struct {
	Symbol      string
	Qualitative string
}

// AnalysisRequest names a symbol and the metric summary the analyst grounds
// its answers on.
type AnalysisRequest struct {
	Symbol  string
	Summary string
}

// Evaluator fetches raw metrics for one instrument.
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) (Result, error)
}

// Suggester returns incremental-search matches for a query prefix.
// An empty query returns no matches and performs no lookup.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
}

// Analyst runs qualitative analysis for a batch of symbols. Symbols absent
// from the returned slice had no result; that is not an error.
type Analyst interface {
	Analyze(ctx context.Context, reqs []AnalysisRequest) ([]Analysis, error)
}

// LookupError reports a failed evaluation. The row is not added; the user
// may retry by searching the same symbol again.
type LookupError struct {
	Symbol string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Symbol, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
