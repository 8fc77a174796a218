package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dumbstock/stockeval/pkg/stockeval/engine"
	"github.com/dumbstock/stockeval/pkg/stockeval/eval"
	"github.com/dumbstock/stockeval/pkg/stockeval/source"
	"github.com/dumbstock/stockeval/pkg/stockeval/watchlist"
)

const (
	lookupTimeout  = 10 * time.Second
	analyzeTimeout = 60 * time.Second
	quoteCacheTTL  = 5 * time.Minute
	quoteCacheSize = 100
)

// app wires persisted state, the evaluation services, and the engine for one
// command invocation. State is loaded up front and saved explicitly by the
// commands that mutate it.
type app struct {
	log       zerolog.Logger
	engine    *engine.Engine
	statePath string
}

func newApp(log zerolog.Logger) (*app, error) {
	statePath := viper.GetString("state")
	if statePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		statePath = filepath.Join(home, ".stockeval", "watchlist.yaml")
	}

	st, err := source.Load(statePath)
	if err != nil {
		return nil, err
	}
	w := st.Weights.BuildWeights()
	store := watchlist.NewStore()
	source.RestoreRows(st, store, w)

	var evaluator eval.Evaluator = eval.NewYahooEvaluator(lookupTimeout, log)
	evaluator = eval.NewCachedEvaluator(evaluator, quoteCacheTTL, quoteCacheSize)

	var suggester eval.Suggester
	if dir := viper.GetString("directory"); dir != "" {
		d, err := eval.LoadDirectory(dir)
		if err != nil {
			return nil, fmt.Errorf("load ticker directory: %w", err)
		}
		suggester = d
	}

	var analyst eval.Analyst
	if key := viper.GetString("openrouter_api_key"); key != "" {
		analyst = eval.NewOpenRouterAnalyst(key, "", analyzeTimeout, log)
	}

	e := engine.New(engine.Config{
		Evaluator: evaluator,
		Suggester: suggester,
		Analyst:   analyst,
		Weights:   w,
		Store:     store,
		Log:       log,
	})
	if st.Sort.Column != "" {
		e.Sort(st.Sort.Column, st.Sort.Ascending)
	}

	return &app{log: log, engine: e, statePath: statePath}, nil
}

func (a *app) save() error {
	var sort source.SortState
	if col, asc, ok := a.engine.SortState(); ok {
		sort = source.SortState{Column: col, Ascending: asc}
	}
	st := source.Snapshot(a.engine.Rows(), a.engine.Weights(), sort)
	if err := source.Save(a.statePath, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
