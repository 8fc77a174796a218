package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbstock/stockeval/pkg/stockeval/eval"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

func resultFor(symbol, name string) eval.Result {
	return eval.Result{
		Symbol:       symbol,
		Name:         name,
		Country:      "United States",
		PriceDisplay: "$184.92",
		Display: map[metric.Metric]string{
			metric.ROCE:          "15%",
			metric.InterestCov:   "10x",
			metric.GrossMargin:   "40%",
			metric.NetMargin:     "15%",
			metric.CCR:           "90%",
			metric.GPAssets:      "30%",
			metric.PERatio:       "20.00",
			metric.DividendYield: "3%",
		},
	}
}

func TestAddNormalizesAndScores(t *testing.T) {
	s := NewStore()
	row, added := s.Add(resultFor(" aapl ", "Apple Inc."), weights.Default())
	require.True(t, added)

	assert.Equal(t, "AAPL", row.Symbol)
	assert.Equal(t, 184.92, row.Price)
	assert.InDelta(t, 0.15, row.Values[metric.ROCE], 1e-9)
	assert.InDelta(t, 10, row.Values[metric.InterestCov], 1e-9)
	assert.Equal(t, 100, row.Score)
	assert.Equal(t, AINone, row.AIState)
}

func TestAddDuplicateIsSilentNoop(t *testing.T) {
	s := NewStore()
	w := weights.Default()
	_, added := s.Add(resultFor("AAPL", "Apple Inc."), w)
	require.True(t, added)

	row, added := s.Add(resultFor("aapl", "Apple Again"), w)
	assert.False(t, added)
	assert.Nil(t, row)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "Apple Inc.", s.Get("AAPL").Company)
}

func TestAddGarbageMetricsNormalizeToZero(t *testing.T) {
	res := resultFor("MSFT", "Microsoft")
	res.Display[metric.ROCE] = "N/A"
	res.Display[metric.InterestCov] = "??"
	res.Display[metric.GrossMargin] = ""
	s := NewStore()
	row, _ := s.Add(res, weights.Default())
	assert.Equal(t, 0.0, row.Values[metric.ROCE])
	assert.Equal(t, 0.0, row.Values[metric.InterestCov])
	assert.Equal(t, 0.0, row.Values[metric.GrossMargin])
}

func TestRemove(t *testing.T) {
	s := NewStore()
	w := weights.Default()
	s.Add(resultFor("AAPL", "Apple Inc."), w)
	s.Add(resultFor("MSFT", "Microsoft"), w)

	assert.True(t, s.Remove("aapl"))
	assert.False(t, s.Has("AAPL"))
	assert.Equal(t, []string{"MSFT"}, s.Symbols())

	// Removing an absent symbol is a no-op.
	assert.False(t, s.Remove("AAPL"))
	assert.Equal(t, 1, s.Len())
}

func TestRecomputeScores(t *testing.T) {
	s := NewStore()
	w := weights.Default()
	row, _ := s.Add(resultFor("AAPL", "Apple Inc."), w)
	require.Equal(t, 100, row.Score)

	// Shift all weight onto a metric the row misses.
	res := resultFor("ZERO", "Zero Corp")
	for _, m := range metric.All {
		res.Display[m] = ""
	}
	zero, _ := s.Add(res, w)
	require.Equal(t, 5, zero.Score) // inverse P/E floor

	w.Apply(metric.PERatio, 0)
	s.RecomputeScores(w)
	assert.Equal(t, 0, zero.Score)
	assert.Equal(t, 95, row.Score)
}

func TestAnalysisLifecycle(t *testing.T) {
	s := NewStore()
	w := weights.Default()
	s.Add(resultFor("AAPL", "Apple Inc."), w)
	s.Add(resultFor("MSFT", "Microsoft"), w)
	s.Add(resultFor("NVDA", "NVIDIA"), w)

	s.SetPending("AAPL", "MSFT", "NVDA")
	for _, r := range s.Rows() {
		assert.Equal(t, AIPending, r.AIState)
	}

	// One result arrives, one is omitted by the batch, one errors out.
	require.True(t, s.SetAnalysis("AAPL", "Wide moat."))
	s.SetNoResult("MSFT")
	s.SetRetryable("NVDA")

	assert.Equal(t, AIDone, s.Get("AAPL").AIState)
	assert.Equal(t, "Wide moat.", s.Get("AAPL").Analysis)
	assert.Equal(t, AIFailed, s.Get("MSFT").AIState)
	assert.Equal(t, AINone, s.Get("NVDA").AIState)

	// SetNoResult and SetRetryable only touch still-pending rows.
	s.SetNoResult("AAPL")
	assert.Equal(t, AIDone, s.Get("AAPL").AIState)
}

func TestStaleAnalysisForRemovedRowIsDropped(t *testing.T) {
	s := NewStore()
	s.Add(resultFor("AAPL", "Apple Inc."), weights.Default())
	s.SetPending("AAPL")
	s.Remove("AAPL")
	assert.False(t, s.SetAnalysis("AAPL", "too late"))
}
