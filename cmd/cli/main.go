package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"goeda/adapters/datareadiness/coercer"
	"goeda/adapters/excel"
	"goeda/adapters/store/sqlstore"
	"goeda/domain/dataset"
	"goeda/internal/charts"
	"goeda/internal/config"
	"goeda/internal/container"
	"goeda/internal/profiling"
	"goeda/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// loadOptions are the flags shared by every command that reads a file.
type loadOptions struct {
	sheet   string
	lenient bool
	asJSON  bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &loadOptions{}
	rootCmd := &cobra.Command{
		Use:           "goeda-cli",
		Short:         "Explore CSV and Excel files from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from .xlsx files (default: first sheet)")
	rootCmd.PersistentFlags().BoolVar(&opts.lenient, "lenient", false, "Accept currency symbols and thousands separators in numbers")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(
		newOverviewCmd(opts),
		newStatsCmd(opts),
		newChartsCmd(opts),
		newChartCmd(opts),
		newMigrateCmd(),
		newSampleCmd(),
	)
	return rootCmd
}

func loadFrame(path string, opts *loadOptions) (*dataset.Frame, []dataset.Notice, error) {
	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = opts.sheet
	table, err := excel.NewDataReader(readerConfig).ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	coercion := coercer.DefaultCoercionConfig()
	coercion.LenientNumbers = opts.lenient
	frame, notices, err := coercer.NewTypeCoercer(coercion).BuildFrame(path, table.Headers, table.Columns())
	if err != nil {
		return nil, nil, err
	}
	if table.SkippedRows > 0 {
		notices = append([]dataset.Notice{{
			Level:   dataset.NoticeWarning,
			Message: fmt.Sprintf("Skipped %d malformed line(s) while reading the file.", table.SkippedRows),
		}}, notices...)
	}
	return frame, notices, nil
}

func newOverviewCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview [file]",
		Short: "Show the first rows, shape and column types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, notices, err := loadFrame(args[0], opts)
			if err != nil {
				return err
			}
			overview := profiling.BuildOverview(frame)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"notices": notices, "overview": overview})
			}

			out := cmd.OutOrStdout()
			printNotices(out, notices)
			fmt.Fprintln(out, "First 5 rows")
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\t"+strings.Join(overview.Columns, "\t"))
			for i, row := range overview.Head {
				fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(row, "\t"))
			}
			tw.Flush()

			fmt.Fprintf(out, "\nRows: %d, Columns: %d\n\nColumn Types\n", overview.Rows, overview.Cols)
			tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, d := range overview.Dtypes {
				fmt.Fprintf(tw, "%s\t%s\n", d.Column, d.Dtype)
			}
			return tw.Flush()
		},
	}
}

func newStatsCmd(opts *loadOptions) *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Print descriptive statistics, missing values and categorical summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, _, err := loadFrame(args[0], opts)
			if err != nil {
				return err
			}
			stats := profiling.NewDataProfiler().Profile(frame)

			var counts []profiling.ValueCount
			if column != "" {
				if counts, err = profiling.ValueCounts(frame, column); err != nil {
					return err
				}
			}
			if opts.asJSON {
				payload := map[string]any{"statistics": stats}
				if column != "" {
					payload["value_counts"] = counts
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}

			out := cmd.OutOrStdout()
			printDescribe(out, stats.Describe)
			printMissing(out, stats.Missing)
			printCategorical(out, stats.Categorical)
			if column != "" {
				fmt.Fprintf(out, "\nValue Counts: %s\n", column)
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, vc := range counts {
					fmt.Fprintf(tw, "%s\t%d\n", vc.Value, vc.Count)
				}
				return tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "value-counts", "", "Categorical column to count values of")
	return cmd
}

func newChartsCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "charts [file]",
		Short: "List the visualizations the file supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, _, err := loadFrame(args[0], opts)
			if err != nil {
				return err
			}
			available := charts.Available(frame)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), available)
			}
			for _, t := range available {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", t.Slug(), t)
			}
			return nil
		},
	}
}

func newChartCmd(opts *loadOptions) *cobra.Command {
	var req charts.Request
	var chartType, output string
	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Build one visualization and print its plotly figure JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := charts.ParseType(chartType)
			if !ok {
				return fmt.Errorf("unknown chart type %q", chartType)
			}
			req.Type = typ
			if !cmd.Flags().Changed("dims") {
				req.Dims = nil
			}
			if !cmd.Flags().Changed("path") {
				req.Path = nil
			}

			frame, _, err := loadFrame(args[0], opts)
			if err != nil {
				return err
			}
			result := charts.Build(frame, req)
			if !result.Drawn() {
				return fmt.Errorf("%s: %s", result.Notice.Level, result.Notice.Message)
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeJSON(out, result.Figure)
		},
	}
	cmd.Flags().StringVarP(&chartType, "type", "t", "heatmap", "Chart type (slug or display name)")
	cmd.Flags().StringVar(&req.X, "x", "", "X axis column")
	cmd.Flags().StringVar(&req.Y, "y", "", "Y axis column")
	cmd.Flags().StringVar(&req.Color, "color", "", "Color column or None")
	cmd.Flags().StringVar(&req.Group, "group", "", "Group column or None")
	cmd.Flags().StringSliceVar(&req.Dims, "dims", nil, "Scatter matrix dimensions")
	cmd.Flags().StringSliceVar(&req.Path, "path", nil, "Hierarchy path columns")
	cmd.Flags().StringVar(&req.Values, "values", "", "Hierarchy values column or Count")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the figure to a file")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the dataset tables of the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == container.DriverMemory {
				return fmt.Errorf("the memory driver has no schema to migrate")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := container.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s database is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	config := testkit.DefaultShoppingConfig()
	cmd := &cobra.Command{
		Use:   "sample [file.csv|file.xlsx]",
		Short: "Write a generated shopping orders file to try the dashboard with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := dataset.FormatFromFilename(args[0])
			if !ok {
				return fmt.Errorf("sample files must end in .csv or .xlsx")
			}
			gen := testkit.NewShoppingGenerator(config)

			var content []byte
			var err error
			if format == dataset.FormatXLSX {
				content, err = gen.XLSX("Orders")
			} else {
				content, err = gen.CSV()
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d orders to %s\n", config.Orders, args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&config.Orders, "orders", config.Orders, "Number of orders to generate")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed")
	cmd.Flags().Float64Var(&config.MissingRate, "missing-rate", config.MissingRate, "Share of prices and devices left blank")
	return cmd
}

func printNotices(out io.Writer, notices []dataset.Notice) {
	for _, n := range notices {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	}
	if len(notices) > 0 {
		fmt.Fprintln(out)
	}
}

func printDescribe(out io.Writer, summaries []profiling.NumericSummary) {
	fmt.Fprintln(out, "Descriptive Statistics (Numeric Data)")
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No numeric columns found for descriptive statistics.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := ""
	for _, s := range summaries {
		header += "\t" + s.Column
	}
	fmt.Fprintln(tw, header+"\t")
	for _, label := range profiling.DescribeRows {
		line := label
		for _, s := range summaries {
			cell := "NaN"
			if v := s.Cell(label); v != nil {
				cell = dataset.FormatFloat(*v)
			}
			line += "\t" + cell
		}
		fmt.Fprintln(tw, line+"\t")
	}
	tw.Flush()
}

func printMissing(out io.Writer, missing []profiling.MissingCount) {
	fmt.Fprintln(out, "\nMissing Values")
	if len(missing) == 0 {
		fmt.Fprintln(out, "No missing values found!")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, m := range missing {
		fmt.Fprintf(tw, "%s\t%d\n", m.Column, m.Missing)
	}
	tw.Flush()
}

func printCategorical(out io.Writer, stats []profiling.CategoricalStat) {
	fmt.Fprintln(out, "\nCategorical Column Analysis")
	if len(stats) == 0 {
		fmt.Fprintln(out, "No categorical columns found for detailed analysis.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Column\tUnique Values\tMost Frequent Value")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Column, s.Unique, s.MostFrequent)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
