package watchlist

import (
	"sort"
	"strings"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

// Sortable column keys beyond the metric keys.
const (
	ColSymbol  = "symbol"
	ColCompany = "company"
	ColCountry = "country"
	ColPrice   = "price"
	ColScore   = "score"
)

// Sort reorders the store's rows by the given column. Company and symbol
// sort lexicographically, case-insensitive; every other column sorts
// numerically with unparseable values treated as 0. The sort is stable, so
// ties keep their prior relative order, and row content is never touched.
func (s *Store) Sort(column string, ascending bool) {
	switch column {
	case ColCompany, ColSymbol:
		sort.SliceStable(s.rows, func(i, j int) bool {
			a := strings.ToLower(lexValue(s.rows[i], column))
			b := strings.ToLower(lexValue(s.rows[j], column))
			if ascending {
				return a < b
			}
			return a > b
		})
	default:
		sort.SliceStable(s.rows, func(i, j int) bool {
			a := numValue(s.rows[i], column)
			b := numValue(s.rows[j], column)
			if ascending {
				return a < b
			}
			return a > b
		})
	}
}

func lexValue(r *Row, column string) string {
	if column == ColCompany {
		return r.Company
	}
	return r.Symbol
}

func numValue(r *Row, column string) float64 {
	switch column {
	case ColPrice:
		return r.Price
	case ColScore:
		return float64(r.Score)
	}
	if v, ok := r.Values[metric.Metric(column)]; ok {
		return v
	}
	return 0
}
