// Package columns derives the visible table columns from the weight
// configuration. A metric's column is visible iff the metric is not
// excluded; visibility is recomputed eagerly after every exclusion change.
package columns

import (
	"strconv"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

// Column describes one display column.
type Column struct {
	// Key is the sort/selector key ("symbol", "price", metric keys, "score").
	Key string
	// Title is the header label.
	Title string
	// Metric is set for metric-backed columns, empty otherwise.
	Metric metric.Metric
	// Numeric columns right-align and sort numerically.
	Numeric bool
}

// fixed leading and trailing columns around the metric block.
var (
	leading = []Column{
		{Key: watchlist.ColSymbol, Title: "Symbol"},
		{Key: watchlist.ColCompany, Title: "Company Name"},
		{Key: watchlist.ColPrice, Title: "Price", Numeric: true},
	}
	trailing = []Column{
		{Key: watchlist.ColScore, Title: "Score", Numeric: true},
	}
)

// metricOrder is the fixed display order of the metric block. It differs
// from the canonical metric order: valuation and yield lead, matching the
// preferred export layout.
var metricOrder = []metric.Metric{
	metric.DividendYield,
	metric.PERatio,
	metric.ROCE,
	metric.InterestCov,
	metric.GrossMargin,
	metric.NetMargin,
	metric.CCR,
	metric.GPAssets,
}

func metricColumn(m metric.Metric) Column {
	return Column{Key: string(m), Title: metric.Label(m), Metric: m, Numeric: true}
}

// VisibleMetrics returns the metrics whose columns are shown, in display
// order: every metric not excluded in the committed weights.
func VisibleMetrics(w *weights.Weights) []metric.Metric {
	out := make([]metric.Metric, 0, len(metricOrder))
	for _, m := range metricOrder {
		if !w.IsExcluded(m) {
			out = append(out, m)
		}
	}
	return out
}

// Visible returns the full column list for rendering: identity and price,
// the visible metric block, then the score.
func Visible(w *weights.Weights) []Column {
	out := make([]Column, 0, len(leading)+len(metricOrder)+len(trailing))
	out = append(out, leading...)
	for _, m := range VisibleMetrics(w) {
		out = append(out, metricColumn(m))
	}
	out = append(out, trailing...)
	return out
}

// Export returns the column list for workbook export: like Visible but
// ignoring exclusions, since the export carries every metric's underlying
// display string. A Country column follows Company, matching the sheet
// layout.
func Export() []Column {
	out := make([]Column, 0, 4+len(metricOrder)+len(trailing))
	out = append(out, leading[0], leading[1],
		Column{Key: watchlist.ColCountry, Title: "Country"},
		leading[2])
	for _, m := range metricOrder {
		out = append(out, metricColumn(m))
	}
	out = append(out, trailing...)
	return out
}

// Value extracts a row's display value for a column.
func Value(c Column, r *watchlist.Row) string {
	if c.Metric != "" {
		return r.Display[c.Metric]
	}
	switch c.Key {
	case watchlist.ColSymbol:
		return r.Symbol
	case watchlist.ColCompany:
		return r.Company
	case watchlist.ColCountry:
		return r.Country
	case watchlist.ColPrice:
		return r.PriceDisplay
	case watchlist.ColScore:
		return scoreDisplay(r.Score)
	}
	return ""
}

func scoreDisplay(score int) string {
	return strconv.Itoa(score) + "/100"
}
