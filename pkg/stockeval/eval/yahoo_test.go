package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

type fakeQuotes struct {
	q   Quote
	err error
}

func (f fakeQuotes) Quote(context.Context, string) (Quote, error) { return f.q, f.err }

type fakeFundamentals struct {
	f   Fundamentals
	err error
}

func (f fakeFundamentals) Fundamentals(context.Context, string) (Fundamentals, error) {
	return f.f, f.err
}

func TestEvaluateDerivesMetricDisplays(t *testing.T) {
	e := NewEvaluator(
		fakeQuotes{q: Quote{Price: "$184.92", Name: "Apple Inc."}},
		fakeFundamentals{f: Fundamentals{
			Country:            "United States",
			DividendYield:      0.0051,
			TrailingPE:         28.5,
			GrossMargins:       0.44,
			OperatingIncome:    120,
			InterestExpense:    12,
			NetIncome:          100,
			TotalRevenue:       400,
			OperatingCashflow:  110,
			TotalAssets:        1000,
			CurrentLiabilities: 200,
			GrossProfit:        180,
		}},
		zerolog.Nop(),
	)

	res, err := e.Evaluate(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", res.Name)
	assert.Equal(t, "United States", res.Country)
	assert.Equal(t, "$184.92", res.PriceDisplay)
	assert.Equal(t, "15%", res.Display[metric.ROCE])       // 120/(1000-200)
	assert.Equal(t, "10x", res.Display[metric.InterestCov]) // 120/12
	assert.Equal(t, "44%", res.Display[metric.GrossMargin])
	assert.Equal(t, "25%", res.Display[metric.NetMargin]) // 100/400
	assert.Equal(t, "110%", res.Display[metric.CCR])      // 110/100
	assert.Equal(t, "18%", res.Display[metric.GPAssets])  // 180/1000
	assert.Equal(t, "28.50", res.Display[metric.PERatio])
	assert.Equal(t, "0.51%", res.Display[metric.DividendYield])
}

func TestEvaluateMissingDataYieldsZerosAndNA(t *testing.T) {
	e := NewEvaluator(
		fakeQuotes{q: Quote{Price: "$1.00", Name: "Empty Corp"}},
		fakeFundamentals{f: Fundamentals{}},
		zerolog.Nop(),
	)
	res, err := e.Evaluate(context.Background(), "NONE")
	require.NoError(t, err)

	assert.Equal(t, "0%", res.Display[metric.ROCE])
	assert.Equal(t, "0x", res.Display[metric.InterestCov])
	assert.Equal(t, "N/A", res.Display[metric.PERatio])
	assert.Equal(t, "N/A", res.Display[metric.DividendYield])
}

func TestEvaluateForwardPEFallback(t *testing.T) {
	e := NewEvaluator(
		fakeQuotes{q: Quote{Price: "$5.00"}},
		fakeFundamentals{f: Fundamentals{ForwardPE: 12.25}},
		zerolog.Nop(),
	)
	res, err := e.Evaluate(context.Background(), "FWD")
	require.NoError(t, err)
	assert.Equal(t, "12.25", res.Display[metric.PERatio])
}

func TestEvaluateWrapsFailuresAsLookupError(t *testing.T) {
	e := NewEvaluator(fakeQuotes{err: errors.New("boom")}, fakeFundamentals{}, zerolog.Nop())
	_, err := e.Evaluate(context.Background(), "X")
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "X", lerr.Symbol)

	e = NewEvaluator(fakeQuotes{}, fakeFundamentals{err: errors.New("down")}, zerolog.Nop())
	_, err = e.Evaluate(context.Background(), "Y")
	require.ErrorAs(t, err, &lerr)
}

func TestSummaryListsAllMetrics(t *testing.T) {
	display := map[metric.Metric]string{metric.ROCE: "15%"}
	s := Summary(display)
	assert.Contains(t, s, "ROCE: 15%")
	assert.Contains(t, s, "P/E Ratio: ")
	assert.Contains(t, s, "Dividend Yield: ")
}
