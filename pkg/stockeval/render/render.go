// Package render turns watchlist rows into terminal output.
package render

import (
	"io"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

// Renderer renders rows under a column layout to an output writer.
type Renderer interface {
	Render(w io.Writer, rows []*watchlist.Row, cols []columns.Column, opts Options) error
}

// Options tweak presentation; renderers ignore what does not apply to them.
type Options struct {
	// Color enables threshold coloring of metric and score cells.
	Color bool
	// PrettyJSON indents JSON output.
	PrettyJSON bool
	// MaxColWidth wraps long cells; 0 means the default of 40.
	MaxColWidth int
}
