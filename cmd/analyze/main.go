package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fininsight/app"
	"fininsight/internal"
	"fininsight/internal/config"
	"fininsight/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fininsight-cli",
		Short:         "Analyze CSV datasets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newAnalyzeCmd())
	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	var outDir string
	var prefix string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file.csv>",
		Short: "Profile, segment and score a CSV file",
		Long: `Run the full analysis on a CSV file: type inference, cleaning, column profiles,
segmentation, anomaly scoring and charts. Charts and the analysis workbook are written
to --out.

Example: fininsight-cli analyze transactions.csv --out ./artifacts --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Paths.PlotDir = outDir
				cfg.Paths.PlotURLPrefix = outDir
			}

			logger := internal.NewLoggerTo(cmd.ErrOrStderr(), internal.ParseLevel(cfg.LogLevel))
			service := app.NewAnalysisService(app.OptionsFromConfig(cfg), logger)

			r, err := service.Analyze(cmd.Context(), app.AnalysisRequest{
				Path:   args[0],
				Prefix: prefix,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printSummary(cmd.OutOrStdout(), r, cfg.Paths.PlotDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory for charts and the workbook (default: PLOTS_DIR)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Artifact file name prefix (default: input file name)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")

	return cmd
}

func printSummary(w io.Writer, r *report.Report, dir string) {
	s := r.Summary
	fmt.Fprintf(w, "File:          %s (%s)\n", r.Filename, s.SummarySource)
	fmt.Fprintf(w, "Shape:         %d rows x %d columns\n", r.Rows, r.Cols)
	fmt.Fprintf(w, "Numeric:       %s\n", strings.Join(s.NumericColumns, ", "))
	fmt.Fprintf(w, "Categorical:   %s\n", strings.Join(s.CategoricalColumns, ", "))
	fmt.Fprintf(w, "Completeness:  %.1f%% (%s)\n", s.CompletenessPercent, s.QualityStatus)
	fmt.Fprintf(w, "Duplicates:    %d\n", s.DuplicateRows)
	fmt.Fprintf(w, "Memory:        %.2f MB\n", s.MemoryMB)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "Warning:       %s\n", warning)
	}

	fmt.Fprintf(w, "\nFeatures:      %s\n", strings.Join(r.ML.Features, ", "))
	for _, st := range r.Stages {
		line := st.Status
		if st.Reason != "" {
			line += " (" + st.Reason + ")"
		}
		fmt.Fprintf(w, "  %-16s %s\n", st.Stage, line)
	}
	for _, seg := range r.SegmentProfiles {
		fmt.Fprintf(w, "  segment %d: %d rows\n", seg.SegmentID, seg.Size)
	}
	fmt.Fprintf(w, "Potential fraud rows: %d\n", r.FraudCount)

	fmt.Fprintf(w, "\nCharts (%d):\n", len(r.Charts))
	for _, c := range r.Charts {
		fmt.Fprintf(w, "  %s\n", filepath.Join(dir, c.File))
	}
	if r.ExportURL != "" {
		fmt.Fprintf(w, "Workbook:      %s\n", r.ExportURL)
	}
}
