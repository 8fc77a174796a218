package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

func TestVisibleMetricsFollowExclusions(t *testing.T) {
	w := weights.Default()
	assert.Len(t, VisibleMetrics(w), 8)

	w2 := weights.New(metric.DefaultWeights(),
		[]metric.Metric{metric.PERatio, metric.CCR}, nil)
	vis := VisibleMetrics(w2)
	assert.Len(t, vis, 6)
	assert.NotContains(t, vis, metric.PERatio)
	assert.NotContains(t, vis, metric.CCR)
}

func TestVisibleColumnShape(t *testing.T) {
	cols := Visible(weights.Default())
	assert.Equal(t, "symbol", cols[0].Key)
	assert.Equal(t, "company", cols[1].Key)
	assert.Equal(t, "price", cols[2].Key)
	assert.Equal(t, "score", cols[len(cols)-1].Key)
	// Metric block leads with valuation and yield.
	assert.Equal(t, string(metric.DividendYield), cols[3].Key)
	assert.Equal(t, string(metric.PERatio), cols[4].Key)
}

func TestExportIgnoresExclusions(t *testing.T) {
	w := weights.New(metric.DefaultWeights(), []metric.Metric{metric.ROCE}, nil)
	_ = w // exclusions do not influence the export layout
	cols := Export()
	var keys []string
	for _, c := range cols {
		keys = append(keys, c.Key)
	}
	assert.Contains(t, keys, string(metric.ROCE))
	assert.Contains(t, keys, "country")
	assert.Len(t, cols, 13)
}

func TestValue(t *testing.T) {
	r := &watchlist.Row{
		Symbol:       "AAPL",
		Company:      "Apple Inc.",
		Country:      "United States",
		PriceDisplay: "$184.92",
		Score:        87,
		Display:      map[metric.Metric]string{metric.ROCE: "15%"},
	}
	assert.Equal(t, "AAPL", Value(Column{Key: "symbol"}, r))
	assert.Equal(t, "$184.92", Value(Column{Key: "price"}, r))
	assert.Equal(t, "87/100", Value(Column{Key: "score"}, r))
	assert.Equal(t, "15%", Value(metricColumn(metric.ROCE), r))
	assert.Equal(t, "", Value(Column{Key: "bogus"}, r))
}
