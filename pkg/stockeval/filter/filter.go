// Package filter narrows watchlist rows by symbol or company name.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

// Filter matches a row identity string (symbol or company name).
type Filter interface {
	Match(name string) bool
}

// Parse builds a filter from an expression:
// - Comma-separated exact symbols: "AAPL,MSFT"
// - Glob: "BRK*"
// - Regex: "/\.TO$/"
// - Anything else: case-insensitive substring match
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, err
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		parts := strings.Split(expr, ",")
		set := map[string]struct{}{}
		for _, p := range parts {
			p = watchlist.Normalize(p)
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?") {
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Rows keeps the rows whose symbol or company name matches the filter,
// preserving order.
func Rows(f Filter, rows []*watchlist.Row) []*watchlist.Row {
	if f == nil {
		return rows
	}
	out := make([]*watchlist.Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r.Symbol) || f.Match(r.Company) {
			out = append(out, r)
		}
	}
	return out
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

// ExactSet matches symbols exactly, after the usual normalization.
type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(name string) bool {
	_, ok := e.set[watchlist.Normalize(name)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(name string) bool {
	ok, _ := filepath.Match(g.pattern, name)
	return ok
}

func (g Glob) String() string { return fmt.Sprintf("glob:%s", g.pattern) }

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(name string) bool { return r.re.MatchString(name) }

// SubstrCI matches if name contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(name string) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(s.needle))
}

func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
