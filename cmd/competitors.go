package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	competitorsBusinessType string
	competitorsLocation     string
	competitorsFormat       string
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "List competitors near a location",
	Long:  "Loads the competitor listing and market insights for a business type at a location. A failed lookup prints the error and exits non-zero.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if competitorsFormat == formatXLSX {
			return eris.New("competitors supports table, json and yaml output")
		}
		if err := validFormat(competitorsFormat); err != nil {
			return err
		}
		if strings.TrimSpace(competitorsLocation) == "" {
			return eris.New("--location is required")
		}

		env, err := initAnalysis(cfg, "analyze", nil)
		if err != nil {
			return err
		}

		businessType := competitorsBusinessType
		if businessType == "" {
			businessType = cfg.Analysis.DefaultBusinessType
		}

		report := env.CompetitorSource.Competitors(ctx, businessType, competitorsLocation)

		out := cmd.OutOrStdout()
		if competitorsFormat == formatTable {
			formatCompetitors(out, report)
		} else if err := writeStructured(out, competitorsFormat, report); err != nil {
			return err
		}

		if report.Failed() {
			return eris.New("competitor lookup failed")
		}
		return nil
	},
}

func init() {
	competitorsCmd.Flags().StringVarP(&competitorsBusinessType, "business-type", "b", "", "business type, e.g. restaurant_cafe (default from config)")
	competitorsCmd.Flags().StringVarP(&competitorsLocation, "location", "l", "", "address or area to search")
	competitorsCmd.Flags().StringVarP(&competitorsFormat, "format", "f", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(competitorsCmd)
}
