// Package model defines the value types produced by a venue analysis.
package model

import (
	"time"

	"github.com/sells-group/venue-cli/pkg/competitors"
)

// SourceStatus records the outcome of one upstream fetch.
type SourceStatus struct {
	Service    string `json:"service" yaml:"service"`
	OK         bool   `json:"ok" yaml:"ok"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Transient  bool   `json:"transient,omitempty" yaml:"transient,omitempty"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// Report is the result of scoring one location for one business type.
type Report struct {
	ID           string                `json:"id" yaml:"id"`
	BusinessType string                `json:"business_type" yaml:"business_type"`
	Key          string                `json:"key" yaml:"key"`
	Location     string                `json:"location" yaml:"location"`
	OverallScore int                   `json:"overall_score" yaml:"overall_score"`
	Metrics      []MetricScore         `json:"metrics" yaml:"metrics"`
	Sources      []SourceStatus        `json:"sources" yaml:"sources"`
	Demographics *DemographicsSnapshot `json:"demographics,omitempty" yaml:"demographics,omitempty"`
	Competitors  *CompetitorReport     `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	StartedAt    time.Time             `json:"started_at" yaml:"started_at"`
	DurationMS   int64                 `json:"duration_ms" yaml:"duration_ms"`
}

// LiveCount returns how many metrics were scored from live data.
func (r *Report) LiveCount() int {
	n := 0
	for _, m := range r.Metrics {
		if m.Source == SourceLive {
			n++
		}
	}
	return n
}

// CompetitorReport is the competitor listing for a location. On failure
// Error is set, Competitors is empty and Insights is nil.
type CompetitorReport struct {
	BusinessType string                      `json:"business_type" yaml:"business_type"`
	Location     string                      `json:"location" yaml:"location"`
	Source       string                      `json:"source" yaml:"source"`
	Competitors  []competitors.Competitor    `json:"competitors" yaml:"competitors"`
	Insights     *competitors.MarketInsights `json:"market_insights,omitempty" yaml:"market_insights,omitempty"`
	Error        string                      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the competitor fetch failed.
func (r *CompetitorReport) Failed() bool {
	return r.Error != ""
}
