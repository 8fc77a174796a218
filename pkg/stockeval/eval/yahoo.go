package eval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

// YahooEvaluator combines a live quote with statement fundamentals and
// derives the eight scored metrics. Any ratio whose inputs are missing
// evaluates to 0 rather than an error.
type YahooEvaluator struct {
	quotes       QuoteService
	fundamentals FundamentalsService
	log          zerolog.Logger
}

// NewYahooEvaluator wires the two Yahoo-backed services into an Evaluator.
func NewYahooEvaluator(timeout time.Duration, log zerolog.Logger) *YahooEvaluator {
	return &YahooEvaluator{
		quotes:       NewYFQuoteService(timeout),
		fundamentals: NewYahooFundamentals(timeout, "", log),
		log:          log,
	}
}

// NewEvaluator builds a YahooEvaluator from explicit services, for tests and
// alternative backends.
func NewEvaluator(quotes QuoteService, fundamentals FundamentalsService, log zerolog.Logger) *YahooEvaluator {
	return &YahooEvaluator{quotes: quotes, fundamentals: fundamentals, log: log}
}

func (e *YahooEvaluator) Evaluate(ctx context.Context, symbol string) (Result, error) {
	q, err := e.quotes.Quote(ctx, symbol)
	if err != nil {
		return Result{}, &LookupError{Symbol: symbol, Err: err}
	}
	f, err := e.fundamentals.Fundamentals(ctx, symbol)
	if err != nil {
		return Result{}, &LookupError{Symbol: symbol, Err: err}
	}

	res := Result{
		Symbol:       symbol,
		Name:         q.Name,
		Country:      f.Country,
		PriceDisplay: q.Price,
		Display:      map[metric.Metric]string{},
	}

	roce := ratio(f.OperatingIncome, f.TotalAssets-f.CurrentLiabilities)
	intCov := ratio(f.OperatingIncome, f.InterestExpense)
	netMargin := ratio(f.NetIncome, f.TotalRevenue)
	ccr := ratio(f.OperatingCashflow, f.NetIncome)
	gpAssets := ratio(f.GrossProfit, f.TotalAssets)
	pe := f.TrailingPE
	if pe == 0 {
		pe = f.ForwardPE
	}

	res.Display[metric.ROCE] = wholePercent(roce)
	res.Display[metric.InterestCov] = multiple(intCov)
	res.Display[metric.GrossMargin] = wholePercent(f.GrossMargins)
	res.Display[metric.NetMargin] = wholePercent(netMargin)
	res.Display[metric.CCR] = wholePercent(ccr)
	res.Display[metric.GPAssets] = wholePercent(gpAssets)
	res.Display[metric.PERatio] = naIfZero(pe, "%.2f")
	res.Display[metric.DividendYield] = dividendYield(f.DividendYield)

	e.log.Debug().Str("symbol", symbol).Msg("evaluated")
	return res, nil
}

// Summary renders the human-readable metric summary the qualitative analyst
// grounds its answers on.
func Summary(display map[metric.Metric]string) string {
	out := ""
	for _, m := range metric.All {
		out += fmt.Sprintf("%s: %s\n", metric.Label(m), display[m])
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func wholePercent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

func multiple(v float64) string {
	return fmt.Sprintf("%dx", int(math.Round(v)))
}

func naIfZero(v float64, format string) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

func dividendYield(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}
