package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/venue-cli/internal/analysis"
	"github.com/sells-group/venue-cli/internal/model"
)

const defaultXLSXPath = "venue-report.xlsx"

var (
	analyzeBusinessType  string
	analyzeLocation      string
	analyzeFormat        string
	analyzeOutput        string
	analyzeNoCompetitors bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a location for a business type",
	Long: "Fetches demographics, parking and competitor counts for the location, scores each metric " +
		"of the business type, and lists nearby competitors. Metrics whose source is unavailable are estimated.",
	Example: `  venue-cli analyze --business-type restaurant_cafe --location "Byward Market, Ottawa"
  venue-cli analyze -b office_clinic -l "Kanata, ON" --format xlsx --output kanata.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := validFormat(analyzeFormat); err != nil {
			return err
		}
		if strings.TrimSpace(analyzeLocation) == "" {
			return eris.New("--location is required")
		}

		env, err := initAnalysis(cfg, "analyze", nil)
		if err != nil {
			return err
		}

		businessType := analyzeBusinessType
		if businessType == "" {
			businessType = cfg.Analysis.DefaultBusinessType
		}

		var comp *analysis.CompetitorAggregator
		if !analyzeNoCompetitors {
			comp = env.CompetitorSource
		}

		report, err := analysis.Run(ctx, env.Aggregator, comp, businessType, analyzeLocation)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		return writeReport(analyzeFormat, analyzeOutput, report)
	},
}

// writeReport renders the report in format to path (stdout when empty).
// xlsx always writes a file.
func writeReport(format, path string, report *model.Report) error {
	if format == formatXLSX {
		if path == "" || path == "-" {
			path = defaultXLSXPath
		}
		if err := writeReportXLSX(path, report); err != nil {
			return err
		}
		zap.L().Info("report written", zap.String("path", path), zap.String("run_id", report.ID))
		return nil
	}

	out, closeFn, err := openOutput(path)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	if format == formatTable {
		formatReport(out, report)
		return nil
	}
	return writeStructured(out, format, report)
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeBusinessType, "business-type", "b", "", "business type key, e.g. restaurant_cafe (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeLocation, "location", "l", "", "address or area to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", formatTable, "output format: table, json, yaml or xlsx")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write output to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeNoCompetitors, "no-competitors", false, "skip the competitor listing")
	rootCmd.AddCommand(analyzeCmd)
}
