package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbstock/stockeval/pkg/stockeval/columns"
	"github.com/dumbstock/stockeval/pkg/stockeval/eval"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

func sampleRows(t *testing.T, w *weights.Weights) []*watchlist.Row {
	t.Helper()
	s := watchlist.NewStore()
	_, ok := s.Add(eval.Result{
		Symbol:       "AAPL",
		Name:         "Apple Inc.",
		Country:      "USA",
		PriceDisplay: "$189.50",
		Display: map[metric.Metric]string{
			metric.ROCE:    "30%",
			metric.PERatio: "28.50",
		},
	}, w)
	require.True(t, ok)
	return s.Rows()
}

func TestTableShowsVisibleColumnsOnly(t *testing.T) {
	w := weights.New(nil, []metric.Metric{metric.ROCE}, nil)
	rows := sampleRows(t, w)

	var buf bytes.Buffer
	err := NewTableRenderer().Render(&buf, rows, columns.Visible(w), Options{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "P/E RATIO")
	assert.Contains(t, out, "28.50")
	assert.NotContains(t, out, "ROCE")
}

func TestJSONRenderer(t *testing.T) {
	w := weights.Default()
	rows := sampleRows(t, w)

	var buf bytes.Buffer
	err := NewJSONRenderer().Render(&buf, rows, columns.Visible(w), Options{})
	require.NoError(t, err)

	var got jsonModel
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, got.Columns, "roce")
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "AAPL", got.Rows[0].Sym)
	assert.Equal(t, "30%", got.Rows[0].Fields["roce"])
	assert.Equal(t, rows[0].Score, got.Rows[0].Score)
}

func TestSymsRenderer(t *testing.T) {
	w := weights.Default()
	s := watchlist.NewStore()
	s.Add(eval.Result{Symbol: "AAPL"}, w)
	s.Add(eval.Result{Symbol: "KO"}, w)

	var buf bytes.Buffer
	require.NoError(t, NewSymsRenderer().Render(&buf, s.Rows(), nil, Options{}))
	assert.Equal(t, "AAPL,KO\n", buf.String())
}
