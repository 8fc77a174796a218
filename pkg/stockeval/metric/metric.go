// Package metric defines the closed set of fundamental metrics used for
// scoring, together with their calibration constants and the lenient
// normalization of raw display values.
package metric

import (
	"strconv"
	"strings"
)

// Metric identifies one of the eight fundamental metrics.
type Metric string

const (
	ROCE          Metric = "roce"
	InterestCov   Metric = "interestCov"
	GrossMargin   Metric = "grossMargin"
	NetMargin     Metric = "netMargin"
	CCR           Metric = "ccr"
	GPAssets      Metric = "gpAssets"
	PERatio       Metric = "peRatio"
	DividendYield Metric = "dividendYield"
)

// All lists every metric in canonical order. The order drives display and
// export; scoring does not depend on it.
var All = []Metric{
	ROCE,
	InterestCov,
	GrossMargin,
	NetMargin,
	CCR,
	GPAssets,
	PERatio,
	DividendYield,
}

// Kind declares how a raw value is interpreted.
type Kind int

const (
	// Percent values normalize by dividing the parsed number by 100.
	Percent Kind = iota
	// Ratio values (multiples, counts) are used as parsed.
	Ratio
)

// Def carries the per-metric constants: the human-readable label used in
// exports and import mapping, the value kind, the scoring target
// (denominator), and the good/okay display thresholds.
type Def struct {
	Key    Metric
	Label  string
	Kind   Kind
	Target float64
	// Good and Okay are display thresholds in the raw (pre-normalization)
	// scale, e.g. 15 means 15%.
	Good float64
	Okay float64
}

var defs = map[Metric]Def{
	ROCE:          {Key: ROCE, Label: "ROCE", Kind: Percent, Target: 0.15, Good: 15, Okay: 5},
	InterestCov:   {Key: InterestCov, Label: "Interest Coverage", Kind: Ratio, Target: 10, Good: 10, Okay: 3},
	GrossMargin:   {Key: GrossMargin, Label: "Gross Margin", Kind: Percent, Target: 0.40, Good: 30, Okay: 15},
	NetMargin:     {Key: NetMargin, Label: "Net Margin", Kind: Percent, Target: 0.15, Good: 15, Okay: 5},
	CCR:           {Key: CCR, Label: "Cash Conversion Ratio", Kind: Percent, Target: 0.90, Good: 90, Okay: 70},
	GPAssets:      {Key: GPAssets, Label: "Gross Profit / Assets", Kind: Percent, Target: 0.3, Good: 30, Okay: 10},
	PERatio:       {Key: PERatio, Label: "P/E Ratio", Kind: Ratio, Target: 20},
	DividendYield: {Key: DividendYield, Label: "Dividend Yield", Kind: Percent, Target: 0.03, Good: 3, Okay: 1},
}

// labelToKey maps human-readable labels back to metric keys for import.
var labelToKey = func() map[string]Metric {
	m := make(map[string]Metric, len(defs))
	for k, d := range defs {
		m[d.Label] = k
	}
	return m
}()

// Get returns the definition for a metric.
func Get(m Metric) Def { return defs[m] }

// Label returns the human-readable name for a metric.
func Label(m Metric) string { return defs[m].Label }

// FromLabel resolves a human-readable label to its metric key.
// Unrecognized labels return false.
func FromLabel(label string) (Metric, bool) {
	m, ok := labelToKey[strings.TrimSpace(label)]
	return m, ok
}

// DefaultWeights returns the stock weight allocation. ROCE and interest
// coverage dominate; valuation and yield round things out.
func DefaultWeights() map[Metric]float64 {
	return map[Metric]float64{
		ROCE:          30,
		InterestCov:   30,
		GrossMargin:   10,
		NetMargin:     10,
		CCR:           5,
		GPAssets:      5,
		PERatio:       5,
		DividendYield: 5,
	}
}

var symbolStripper = strings.NewReplacer("%", "", "x", "", "$", "", ",", "")

// ParseValue normalizes a raw display value ("15%", "10x", "$184.92",
// "1,234.5") into a number. Garbage or empty input normalizes to 0, never an
// error; percent-kind values are divided by 100.
func ParseValue(raw string, kind Kind) float64 {
	s := strings.TrimSpace(symbolStripper.Replace(raw))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if kind == Percent {
		return n / 100
	}
	return n
}

// ParseNumber is ParseValue for non-percent fields (prices, scores, weights).
func ParseNumber(raw string) float64 { return ParseValue(raw, Ratio) }
