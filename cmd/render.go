package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/venue-cli/internal/model"
	"github.com/sells-group/venue-cli/pkg/competitors"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatXLSX  = "xlsx"
)

var printer = message.NewPrinter(language.English)

func validFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatYAML, formatXLSX:
		return nil
	default:
		return eris.Errorf("unknown format %q (want table, json, yaml or xlsx)", f)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("format %q is not a structured format", format)
	}
}

// formatReport writes the score summary and metric table to out, followed by
// the competitor panel when the report carries one.
func formatReport(out io.Writer, r *model.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Location:\t%s\n", r.Location)
	_, _ = fmt.Fprintf(w, "Business type:\t%s\n", r.Key)
	_, _ = fmt.Fprintf(w, "Overall score:\t%d/100 (%d of %d metrics from live data)\n",
		r.OverallScore, r.LiveCount(), len(r.Metrics))
	_ = w.Flush()
	_, _ = fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tSCORE\tWEIGHT\tSOURCE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "------\t-----\t------\t------\t-----------")
	for _, m := range r.Metrics {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			m.Name, m.Score, weightPercent(m.Weight), m.Source, m.Description)
	}
	_ = w.Flush()

	for _, s := range r.Sources {
		if !s.OK {
			_, _ = fmt.Fprintf(out, "warning: %s unavailable: %s\n", s.Service, s.Error)
		}
	}

	if r.Competitors != nil {
		_, _ = fmt.Fprintln(out)
		formatCompetitors(out, r.Competitors)
	}
}

// formatCompetitors writes the competitor panel. A failed fetch renders the
// error and a retry hint instead of the list.
func formatCompetitors(out io.Writer, cr *model.CompetitorReport) {
	if cr.Failed() {
		_, _ = fmt.Fprintln(out, "Unable to load competitors")
		_, _ = fmt.Fprintf(out, "  %s\n", cr.Error)
		_, _ = fmt.Fprintf(out, "  Try again: venue-cli competitors --business-type %s --location %s\n",
			strconv.Quote(cr.BusinessType), strconv.Quote(cr.Location))
		return
	}

	_, _ = fmt.Fprintf(out, "Competitors near %s (%d found)\n", cr.Location, len(cr.Competitors))
	if len(cr.Competitors) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tRATING\tREVIEWS\tPRICE\tADDRESS")
	_, _ = fmt.Fprintln(w, "----\t------\t-------\t-----\t-------")
	for _, c := range cr.Competitors {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(c.Name, 40), ratingText(c.Rating), reviewText(c.ReviewCount), dash(c.PriceLevel), c.Address)
	}
	_ = w.Flush()

	if mi := cr.Insights; mi != nil {
		_, _ = fmt.Fprintf(out, "\nMarket: saturation %s, average rating %s, %d highly rated, %s reviews\n",
			mi.MarketSaturation, ratingText(mi.AverageRating), mi.HighlyRatedCount, printer.Sprintf("%d", mi.TotalReviews))
	}

	for _, c := range cr.Competitors {
		if c.CompetitorAnalysis == "" {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s\n  %s\n", c.Name, c.CompetitorAnalysis)
	}
}

// writeReportXLSX saves the report as a workbook with Metrics, Competitors
// and Sources sheets.
func writeReportXLSX(path string, r *model.Report) error {
	f := xlsx.NewFile()

	metrics, err := f.AddSheet("Metrics")
	if err != nil {
		return eris.Wrap(err, "xlsx: add metrics sheet")
	}
	addRow(metrics, "Metric", "Key", "Score", "Weight", "Source", "Description")
	for _, m := range r.Metrics {
		row := metrics.AddRow()
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(m.Key)
		row.AddCell().SetInt(m.Score)
		row.AddCell().SetFloat(m.Weight)
		row.AddCell().SetString(string(m.Source))
		row.AddCell().SetString(m.Description)
	}
	total := metrics.AddRow()
	total.AddCell().SetString("Overall")
	total.AddCell().SetString(r.Key)
	total.AddCell().SetInt(r.OverallScore)

	if r.Competitors != nil {
		sheet, err := f.AddSheet("Competitors")
		if err != nil {
			return eris.Wrap(err, "xlsx: add competitors sheet")
		}
		if r.Competitors.Failed() {
			addRow(sheet, "Error", r.Competitors.Error)
		} else {
			addRow(sheet, "Name", "Address", "Rating", "Reviews", "Price", "Website", "Analysis")
			for _, c := range r.Competitors.Competitors {
				row := sheet.AddRow()
				row.AddCell().SetString(c.Name)
				row.AddCell().SetString(c.Address)
				if c.Rating != nil {
					row.AddCell().SetFloat(*c.Rating)
				} else {
					row.AddCell()
				}
				if c.ReviewCount != nil {
					row.AddCell().SetInt(*c.ReviewCount)
				} else {
					row.AddCell()
				}
				row.AddCell().SetString(c.PriceLevel)
				row.AddCell().SetString(c.Website)
				row.AddCell().SetString(c.CompetitorAnalysis)
			}
		}
	}

	sources, err := f.AddSheet("Sources")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sources sheet")
	}
	addRow(sources, "Service", "OK", "Duration (ms)", "Error")
	for _, s := range r.Sources {
		row := sources.AddRow()
		row.AddCell().SetString(s.Service)
		row.AddCell().SetBool(s.OK)
		row.AddCell().SetInt64(s.DurationMS)
		row.AddCell().SetString(s.Error)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// openOutput returns stdout for an empty path.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create %s", path)
	}
	return f, f.Close, nil
}

func weightPercent(w float64) string {
	return fmt.Sprintf("%.0f%%", w*100)
}

func ratingText(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

func reviewText(n *int) string {
	if n == nil {
		return "-"
	}
	return printer.Sprintf("%d", *n)
}

func dash(s string) string {
	if s == "" || s == competitors.PriceUnknown {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
