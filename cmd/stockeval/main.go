package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dumbstock/stockeval/pkg/stockeval/engine"
	"github.com/dumbstock/stockeval/pkg/stockeval/filter"
	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
	"github.com/dumbstock/stockeval/pkg/stockeval/render"
	"github.com/dumbstock/stockeval/pkg/stockeval/weights"
)

func main() {
	_ = godotenv.Load()
	viper.SetEnvPrefix("STOCKEVAL")
	viper.AutomaticEnv()
	_ = viper.BindEnv("openrouter_api_key", "OPENROUTER_API_KEY")
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	level := zerolog.WarnLevel
	if l, err := zerolog.ParseLevel(viper.GetString("log_level")); err == nil && viper.GetString("log_level") != "" {
		level = l
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	rootCmd := newRootCmd(&log)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(log *zerolog.Logger) *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:           "stockeval",
		Short:         "Score and track a stock watchlist on weighted fundamentals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				*log = log.Level(zerolog.DebugLevel)
			}
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.String("state", "", "state file path (default ~/.stockeval/watchlist.yaml)")
	pf.String("directory", "", "ticker directory CSV for search suggestions")
	_ = viper.BindPFlag("state", pf.Lookup("state"))
	_ = viper.BindPFlag("directory", pf.Lookup("directory"))

	rootCmd.AddCommand(
		newAddCmd(log),
		newRmCmd(log),
		newListCmd(log),
		newShowCmd(log),
		newSearchCmd(log),
		newWeightsCmd(log),
		newAnalyzeCmd(log),
		newExportCmd(log),
		newImportCmd(log),
	)
	return rootCmd
}

func newAddCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "add SYMBOL...",
		Short: "Evaluate symbols and add them to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			for _, sym := range args {
				row, err := a.engine.AddSymbol(cmd.Context(), sym)
				switch {
				case err != nil:
					log.Warn().Str("symbol", sym).Err(err).Msg("lookup failed")
				case row == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already on the watchlist\n", strings.ToUpper(strings.TrimSpace(sym)))
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) score %d/100\n", row.Symbol, row.Company, row.Score)
				}
			}
			return a.save()
		},
	}
}

func newRmCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "rm SYMBOL...",
		Aliases: []string{"remove"},
		Short:   "Remove symbols from the watchlist",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			for _, sym := range args {
				if !a.engine.Remove(sym) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s was not on the watchlist\n", strings.ToUpper(strings.TrimSpace(sym)))
				}
			}
			return a.save()
		},
	}
}

func newListCmd(log *zerolog.Logger) *cobra.Command {
	var (
		filterExpr string
		sortCol    string
		asc        bool
		asJSON     bool
		pretty     bool
		symsOnly   bool
		noColor    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the watchlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			if sortCol != "" {
				a.engine.Sort(sortCol, asc)
				if err := a.save(); err != nil {
					return err
				}
			}

			rows := a.engine.Rows()
			if filterExpr != "" {
				f, err := filter.Parse(filterExpr)
				if err != nil {
					return fmt.Errorf("bad filter %q: %w", filterExpr, err)
				}
				rows = filter.Rows(f, rows)
			}

			var r render.Renderer
			switch {
			case symsOnly:
				r = render.NewSymsRenderer()
			case asJSON:
				r = render.NewJSONRenderer()
			default:
				r = render.NewTableRenderer()
			}
			opts := render.Options{Color: !noColor, PrettyJSON: pretty}
			if w := detectTerminalWidth(); w > 0 && w < 120 {
				opts.MaxColWidth = 20
			}
			return r.Render(cmd.OutOrStdout(), rows, a.engine.Columns(), opts)
		},
	}
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter rows by symbol or name (exact set, glob, /regex/, or substring)")
	cmd.Flags().StringVar(&sortCol, "sort", "", "sort by column key (symbol, company, price, score, or a metric key)")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending instead of descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&symsOnly, "syms", false, "print symbols only, comma-separated")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable threshold coloring")
	return cmd
}

func newShowCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show SYMBOL",
		Short: "Print one row in detail, including its qualitative analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			row := a.engine.Get(args[0])
			if row == nil {
				return &engine.UnknownSymbolError{Symbol: strings.ToUpper(strings.TrimSpace(args[0]))}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s\n", row.Symbol, row.Company, row.Country)
			fmt.Fprintf(out, "Price: %s  Score: %d/100\n", row.PriceDisplay, row.Score)
			for _, m := range metric.All {
				fmt.Fprintf(out, "  %-22s %s\n", metric.Label(m)+":", row.Display[m])
			}
			if row.Analysis != "" {
				fmt.Fprintf(out, "\n%s\n", row.Analysis)
			} else {
				fmt.Fprintf(out, "\nanalysis: %s\n", row.AIState)
			}
			return nil
		},
	}
}

func newSearchCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the ticker directory by company name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			matches, err := a.engine.Suggest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches (is --directory set?)")
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleColoredDark)
			tw.Style().Options.DrawBorder = false
			tw.Style().Options.SeparateRows = false
			tw.Style().Options.SeparateColumns = false
			tw.AppendHeader(table.Row{"SYMBOL", "NAME", "COUNTRY"})
			for _, s := range matches {
				tw.AppendRow(table.Row{s.Symbol, s.Name, s.CountryShort})
			}
			tw.Render()
			return nil
		},
	}
}

func newWeightsCmd(log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show or edit the scoring weights",
	}
	cmd.AddCommand(newWeightsShowCmd(log), newWeightsSetCmd(log))
	return cmd
}

func newWeightsShowCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the committed weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			w := a.engine.Weights()
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleColoredDark)
			tw.Style().Options.DrawBorder = false
			tw.Style().Options.SeparateRows = false
			tw.Style().Options.SeparateColumns = false
			tw.AppendHeader(table.Row{"METRIC", "KEY", "WEIGHT", "EXCLUDED"})
			total := 0.0
			for _, m := range metric.All {
				excluded := ""
				if w.IsExcluded(m) {
					excluded = "yes"
				}
				tw.AppendRow(table.Row{metric.Label(m), string(m), formatWeight(w.Get(m)), excluded})
				total += w.Active(m)
			}
			tw.AppendFooter(table.Row{"TOTAL", "", formatWeight(total), ""})
			tw.Render()
			return nil
		},
	}
}

func newWeightsSetCmd(log *zerolog.Logger) *cobra.Command {
	var exclude, include []string
	cmd := &cobra.Command{
		Use:   "set [KEY=VALUE...]",
		Short: "Edit weights and commit; the active weights must total exactly 100",
		Long: `Edit weights in a single transaction and commit the result.
Assignments use metric keys, e.g. "roce=35 interestCov=25". Metrics named
with --exclude drop out of scoring and their columns disappear; --include
brings a metric back at its last active weight. The commit is rejected
unless the non-excluded weights total exactly 100.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			d := a.engine.OpenWeights()
			for _, arg := range args {
				key, val, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("bad assignment %q: want KEY=VALUE", arg)
				}
				m, err := metricByKey(key)
				if err != nil {
					return err
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
				if err != nil {
					return fmt.Errorf("bad weight %q for %s", val, key)
				}
				d.SetWeight(m, v)
			}
			for _, key := range exclude {
				m, err := metricByKey(key)
				if err != nil {
					return err
				}
				if !d.IsExcluded(m) {
					d.ToggleExclude(m)
				}
			}
			for _, key := range include {
				m, err := metricByKey(key)
				if err != nil {
					return err
				}
				if d.IsExcluded(m) {
					d.ToggleExclude(m)
				}
			}
			if err := a.engine.CommitWeights(d); err != nil {
				var verr *weights.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("weights must total exactly 100, got %s", formatWeight(verr.Total))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "weights committed, scores recomputed")
			return a.save()
		},
	}
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "metric keys to exclude from scoring")
	cmd.Flags().StringSliceVar(&include, "include", nil, "metric keys to re-include at their last active weight")
	return cmd
}

func newAnalyzeCmd(log *zerolog.Logger) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL]",
		Short: "Fetch qualitative moat analysis for one row or the whole list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("give a symbol or use --all")
			}
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			if all {
				err = a.engine.AnalyzeAll(cmd.Context())
			} else {
				err = a.engine.AnalyzeOne(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if saveErr := a.save(); saveErr != nil {
				return saveErr
			}
			if len(args) == 1 {
				if row := a.engine.Get(args[0]); row != nil && row.Analysis != "" {
					fmt.Fprintln(cmd.OutOrStdout(), row.Analysis)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "analyze every row without an analysis yet")
	return cmd
}

func newExportCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Export the watchlist, analyses, and weights to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			if err := a.engine.Export(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", a.engine.Len(), args[0])
			return nil
		},
	}
}

func newImportCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.xlsx",
		Short: "Import symbols and weights from a workbook",
		Long: `Import symbols and weights from a workbook. Imported weights apply
as-is, without the 100-point total check, so lists exported under a
different scheme keep their scores. Each symbol is evaluated afresh;
symbols that fail lookup are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*log)
			if err != nil {
				return err
			}
			if err := a.engine.Import(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watchlist now has %d rows\n", a.engine.Len())
			return a.save()
		},
	}
}

func metricByKey(key string) (metric.Metric, error) {
	key = strings.TrimSpace(key)
	for _, m := range metric.All {
		if string(m) == key {
			return m, nil
		}
	}
	if m, ok := metric.FromLabel(key); ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", key)
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
