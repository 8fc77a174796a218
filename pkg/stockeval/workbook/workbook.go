// Package workbook implements the spreadsheet import/export boundary: a
// three-sheet xlsx workbook carrying the watchlist rows, the qualitative
// analysis text, and the scoring weights.
package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

// Reserved sheet names, matched case-sensitively on import.
const (
	SheetWatchlist   = "Watchlist"
	SheetQualitative = "Qualitative Analysis"
	SheetWeights     = "Scoring Weight"
)

// Imported is the outcome of reading a workbook: the symbols to re-evaluate
// and any weight overrides from a "Scoring Weight" sheet. Weights apply
// without the 100-point gate.
type Imported struct {
	Symbols []string
	Weights map[metric.Metric]float64
}

// Export writes the store and committed weights to an xlsx file. Every
// metric column exports its underlying display string regardless of current
// visibility; the analysis sheet is only present when at least one row has
// text.
func Export(path string, rows []*watchlist.Row, w *weights.Weights) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWatchlist); err != nil {
		return err
	}
	if err := writeWatchlist(f, rows); err != nil {
		return err
	}
	if err := writeQualitative(f, rows); err != nil {
		return err
	}
	if err := writeWeights(f, w); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeWatchlist(f *excelize.File, rows []*watchlist.Row) error {
	cols := columns.Export()
	for i, c := range cols {
		if err := setCell(f, SheetWatchlist, i+1, 1, c.Title); err != nil {
			return err
		}
	}
	for ri, row := range rows {
		for ci, c := range cols {
			if err := setCell(f, SheetWatchlist, ci+1, ri+2, columns.Value(c, row)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeQualitative(f *excelize.File, rows []*watchlist.Row) error {
	type line struct{ ticker, text string }
	out := []line{{"Ticker", "Qualitative Analysis"}}
	any := false
	for _, row := range rows {
		if strings.TrimSpace(row.Analysis) == "" {
			continue
		}
		any = true
		lines := strings.Split(stripMarkup(row.Analysis), "\n")
		out = append(out, line{row.Symbol, lines[0]})
		for _, l := range lines[1:] {
			out = append(out, line{"", l})
		}
		out = append(out, line{"", ""})
	}
	if !any {
		return nil
	}
	if _, err := f.NewSheet(SheetQualitative); err != nil {
		return err
	}
	for i, l := range out {
		if err := setCell(f, SheetQualitative, 1, i+1, l.ticker); err != nil {
			return err
		}
		if err := setCell(f, SheetQualitative, 2, i+1, l.text); err != nil {
			return err
		}
	}
	return nil
}

func writeWeights(f *excelize.File, w *weights.Weights) error {
	if _, err := f.NewSheet(SheetWeights); err != nil {
		return err
	}
	if err := setCell(f, SheetWeights, 1, 1, "Metric"); err != nil {
		return err
	}
	if err := setCell(f, SheetWeights, 2, 1, "Weight"); err != nil {
		return err
	}
	for i, m := range metric.All {
		if err := setCell(f, SheetWeights, 1, i+2, metric.Label(m)); err != nil {
			return err
		}
		// Excluded metrics export their committed value, which is 0 once
		// the exclusion was committed.
		if err := setCell(f, SheetWeights, 2, i+2, w.Get(m)); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// Import reads a workbook: symbols from the first sheet, weight overrides
// from a sheet literally named "Scoring Weight" if present. Unrecognized
// metric labels and unparseable weight values are silently skipped.
func Import(path string) (Imported, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Imported{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	out := Imported{Weights: map[metric.Metric]float64{}}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return out, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Imported{}, err
	}
	out.Symbols = readSymbols(rows)

	for _, name := range sheets {
		if name != SheetWeights {
			continue
		}
		wrows, err := f.GetRows(SheetWeights)
		if err != nil {
			return Imported{}, err
		}
		for _, r := range wrows {
			if len(r) < 2 {
				continue
			}
			m, ok := metric.FromLabel(r[0])
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(r[1]), 64)
			if err != nil {
				continue
			}
			out.Weights[m] = v
		}
	}
	return out, nil
}

// readSymbols finds the Symbol column in the header row and collects
// non-empty trimmed values. Duplicates within the sheet collapse to the
// first occurrence.
func readSymbols(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	symCol := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "Symbol") {
			symCol = i
			break
		}
	}
	if symCol < 0 {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	for _, r := range rows[1:] {
		if symCol >= len(r) {
			continue
		}
		sym := watchlist.Normalize(r[symCol])
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

var (
	brRe       = regexp.MustCompile(`(?i)<br\s*/?>`)
	pJoinRe    = regexp.MustCompile(`(?i)</p>\s*<p>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	newlinesRe = regexp.MustCompile(`\n+`)
)

// stripMarkup converts HTML line breaks and paragraph joins to plain
// newlines, drops remaining markup, and collapses runs of newlines.
func stripMarkup(s string) string {
	s = brRe.ReplaceAllString(s, "\n")
	s = pJoinRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return newlinesRe.ReplaceAllString(s, "\n")
}
