package eval

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// maxSuggestions caps how many matches Suggest returns.
const maxSuggestions = 10

// listing is one directory entry from the ticker CSV.
type listing struct {
	Symbol    string
	Name      string
	Market    string
	MarketCap float64
	Country   string
}

// Directory is an in-memory ticker directory backing incremental search.
// Matches whose name or symbol start with the query rank before mere
// substring matches; each group orders by descending market cap.
type Directory struct {
	listings []listing
}

// LoadDirectory reads a ticker CSV (Symbol, Name, Market, Market Cap,
// Country header row) into a Directory. Rows with a blank symbol or an
// unparseable market cap are kept with a zero cap rather than rejected.
func LoadDirectory(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker directory: %w", err)
	}
	defer f.Close()
	return ReadDirectory(f)
}

// ReadDirectory parses directory CSV content from a reader.
func ReadDirectory(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ticker directory: %w", err)
	}
	if len(records) == 0 {
		return &Directory{}, nil
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	d := &Directory{}
	for _, rec := range records[1:] {
		sym := field(rec, "symbol")
		if sym == "" {
			continue
		}
		cap, _ := strconv.ParseFloat(strings.ReplaceAll(field(rec, "market cap"), ",", ""), 64)
		d.listings = append(d.listings, listing{
			Symbol:    sym,
			Name:      field(rec, "name"),
			Market:    field(rec, "market"),
			MarketCap: cap,
			Country:   field(rec, "country"),
		})
	}
	return d, nil
}

// Suggest implements Suggester. An empty query returns nil without scanning.
func (d *Directory) Suggest(_ context.Context, query string) ([]Suggestion, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var starts, contains []listing
	for _, l := range d.listings {
		name := strings.ToLower(l.Name)
		sym := strings.ToLower(l.Symbol)
		switch {
		case strings.HasPrefix(name, q) || strings.HasPrefix(sym, q):
			starts = append(starts, l)
		case strings.Contains(name, q) || strings.Contains(sym, q):
			contains = append(contains, l)
		}
	}
	byCap := func(ls []listing) {
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].MarketCap > ls[j].MarketCap })
	}
	byCap(starts)
	byCap(contains)

	merged := append(starts, contains...)
	if len(merged) > maxSuggestions {
		merged = merged[:maxSuggestions]
	}
	out := make([]Suggestion, 0, len(merged))
	for _, l := range merged {
		out = append(out, Suggestion{
			Name:         l.Name,
			Symbol:       l.Symbol,
			CountryShort: countryShort(l.Country),
		})
	}
	return out, nil
}

// countryShort abbreviates a country name for the suggestion dropdown.
func countryShort(country string) string {
	switch strings.ToLower(country) {
	case "":
		return ""
	case "canada":
		return "CAD"
	case "united states":
		return "USA"
	}
	if len(country) < 3 {
		return strings.ToUpper(country)
	}
	return strings.ToUpper(country[:3])
}
