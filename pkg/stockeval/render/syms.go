package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

// symsRenderer prints all symbols in a single comma-separated line, handy
// for piping into other tools.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Render(w io.Writer, rows []*watchlist.Row, _ []columns.Column, _ Options) error {
	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Symbol == "" {
			continue
		}
		symbols = append(symbols, row.Symbol)
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
