package render

import (
	"encoding/json"
	"io"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Columns []string  `json:"columns"`
	Rows    []jsonRow `json:"rows"`
}

type jsonRow struct {
	Sym     string            `json:"sym"`
	Name    string            `json:"name"`
	Country string            `json:"country,omitempty"`
	Score   int               `json:"score"`
	AIState string            `json:"aiState,omitempty"`
	Fields  map[string]string `json:"fields"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, rows []*watchlist.Row, cols []columns.Column, opts Options) error {
	out := jsonModel{Columns: make([]string, 0, len(cols))}
	for _, c := range cols {
		out.Columns = append(out.Columns, c.Key)
	}
	out.Rows = make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		jr := jsonRow{
			Sym:     row.Symbol,
			Name:    row.Company,
			Country: row.Country,
			Score:   row.Score,
			AIState: string(row.AIState),
			Fields:  map[string]string{},
		}
		for _, c := range cols {
			jr.Fields[c.Key] = columns.Value(c, row)
		}
		out.Rows = append(out.Rows, jr)
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
