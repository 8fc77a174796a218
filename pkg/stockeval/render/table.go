package render

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

// Score display thresholds, independent of the metric calibrations.
const (
	scoreGood = 80
	scoreOkay = 50
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, rows []*watchlist.Row, cols []columns.Column, opts Options) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = strings.ToUpper(c.Title)
	}
	tw.AppendHeader(hdr)

	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if c.Numeric {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, row := range rows {
		out := make(table.Row, len(cols))
		for i, c := range cols {
			val := columns.Value(c, row)
			if opts.Color {
				val = colorize(c, row, val)
			}
			out[i] = val
		}
		tw.AppendRow(out)
	}

	tw.Render()
	return nil
}

// colorize applies the good/okay/bad coloring to metric and score cells.
// Cells without a value and metrics without thresholds stay plain.
func colorize(c columns.Column, row *watchlist.Row, val string) string {
	if c.Key == watchlist.ColScore {
		return threshold(float64(row.Score), scoreGood, scoreOkay).Sprint(val)
	}
	if c.Metric == "" {
		return val
	}
	def := metric.Get(c.Metric)
	if def.Good == 0 || val == "" || val == "N/A" {
		return val
	}
	// Thresholds are on the raw display scale, so parse without the
	// percent normalization.
	return threshold(metric.ParseNumber(val), def.Good, def.Okay).Sprint(val)
}

func threshold(v, good, okay float64) text.Colors {
	switch {
	case v >= good:
		return text.Colors{text.FgGreen}
	case v >= okay:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}
