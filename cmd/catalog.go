package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/venue-cli/internal/catalog"
	"github.com/sells-group/venue-cli/internal/scorer"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List business types and their weighted metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if catalogFormat == formatXLSX {
			return eris.New("catalog supports table, json and yaml output")
		}
		if err := validFormat(catalogFormat); err != nil {
			return err
		}

		types := catalog.BusinessTypes()
		if catalogFormat == formatTable {
			formatCatalog(cmd.OutOrStdout(), types)
			return nil
		}
		return writeStructured(cmd.OutOrStdout(), catalogFormat, types)
	},
}

// formatCatalog writes one block per business type.
func formatCatalog(out io.Writer, types []catalog.BusinessType) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUSINESS TYPE\tMETRIC\tWEIGHT\tDATA")
	_, _ = fmt.Fprintln(w, "-------------\t------\t------\t----")
	for _, bt := range types {
		for i, e := range bt.Metrics {
			key := ""
			if i == 0 {
				key = bt.Key
			}
			data := "estimated"
			if scorer.HasLiveSource(e.Metric) {
				data = "live"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, catalog.DisplayName(e.Metric), weightPercent(e.Weight), data)
		}
	}
	_ = w.Flush()
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(catalogCmd)
}
