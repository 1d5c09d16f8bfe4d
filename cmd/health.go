package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/venue-cli/internal/monitoring"
)

var healthFormat string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the upstream analysis services are reachable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if healthFormat == formatXLSX {
			return eris.New("health supports table, json and yaml output")
		}
		if err := validFormat(healthFormat); err != nil {
			return err
		}

		env, err := initAnalysis(cfg, "analyze", nil)
		if err != nil {
			return err
		}

		results := env.Checker.CheckAll(cmd.Context())

		out := cmd.OutOrStdout()
		if healthFormat == formatTable {
			formatHealth(out, results)
		} else if err := writeStructured(out, healthFormat, results); err != nil {
			return err
		}

		if down := countDown(results); down > 0 {
			return eris.Errorf("%d of %d services unreachable", down, len(results))
		}
		return nil
	},
}

func formatHealth(out io.Writer, results []monitoring.ServiceHealth) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVICE\tSTATUS\tLATENCY\tERROR")
	_, _ = fmt.Fprintln(w, "-------\t------\t-------\t-----")
	for _, h := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", h.Service, h.Status, h.DurationMS, h.Error)
	}
	_ = w.Flush()
}

func countDown(results []monitoring.ServiceHealth) int {
	n := 0
	for _, h := range results {
		if !h.Up {
			n++
		}
	}
	return n
}

func init() {
	healthCmd.Flags().StringVarP(&healthFormat, "format", "f", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(healthCmd)
}
