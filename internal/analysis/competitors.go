package analysis

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/venue-cli/internal/apiclient"
	"github.com/sells-group/venue-cli/internal/config"
	"github.com/sells-group/venue-cli/internal/model"
	"github.com/sells-group/venue-cli/internal/monitoring"
	"github.com/sells-group/venue-cli/pkg/competitors"
)

// Source names.
const (
	SourceService = "service"
	SourcePlaces  = "places"
)

// Source provides competitor listings. competitors.Client and *PlacesSource
// both satisfy it.
type Source interface {
	Analyze(ctx context.Context, req competitors.AnalysisRequest) (*competitors.AnalysisResponse, error)
}

// CompetitorAggregator fetches the competitor listing for a location.
type CompetitorAggregator struct {
	source     Source
	sourceName string
	params     config.AnalysisConfig
	metrics    *monitoring.Metrics
}

// NewCompetitorAggregator creates a competitor aggregator over source.
func NewCompetitorAggregator(params config.AnalysisConfig, source Source, sourceName string, opts ...Option) *CompetitorAggregator {
	o := buildOptions(opts)
	return &CompetitorAggregator{
		source:     source,
		sourceName: sourceName,
		params:     params,
		metrics:    o.metrics,
	}
}

// Competitors issues one call to the source. It never returns an error: a
// failure is reported in the Error field with an empty competitor list.
func (c *CompetitorAggregator) Competitors(ctx context.Context, businessType, location string) *model.CompetitorReport {
	location = strings.TrimSpace(location)
	report := &model.CompetitorReport{
		BusinessType: businessType,
		Location:     location,
		Source:       c.sourceName,
		Competitors:  []competitors.Competitor{},
	}
	log := zap.L().With(
		zap.String("business_type", businessType),
		zap.String("location", location),
		zap.String("source", c.sourceName),
	)

	if location == "" {
		report.Error = ErrMissingLocation.Error()
		return report
	}

	start := time.Now()
	resp, err := c.call(ctx, competitors.AnalysisRequest{
		BusinessType:       businessType,
		Location:           location,
		MaxResults:         c.params.CompetitorMaxResults,
		MinRating:          c.params.CompetitorMinRating,
		EnableDeepAnalysis: c.params.CompetitorDeepAnalyze,
	})
	elapsed := time.Since(start)

	if err != nil {
		transient := apiclient.IsTransient(err)
		outcome := monitoring.OutcomeError
		if transient {
			outcome = monitoring.OutcomeTransient
		}
		c.metrics.ObserveFetch(competitors.AnalysisServiceName, outcome, elapsed)
		report.Error = apiclient.Message(err)
		log.Warn("analysis: competitor fetch failed",
			zap.Bool("transient", transient),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return report
	}

	c.metrics.ObserveFetch(competitors.AnalysisServiceName, monitoring.OutcomeOK, elapsed)
	if resp.Competitors != nil {
		report.Competitors = resp.Competitors
	}
	report.Insights = resp.MarketInsights
	log.Info("analysis: competitors loaded",
		zap.Int("competitors", len(report.Competitors)),
		zap.Duration("elapsed", elapsed),
	)
	return report
}

// call invokes the source, turning a panic in a source implementation into
// an error so the listing still renders.
func (c *CompetitorAggregator) call(ctx context.Context, req competitors.AnalysisRequest) (resp *competitors.AnalysisResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &apiclient.Error{Service: competitors.AnalysisServiceName, Detail: "unexpected failure"}
			zap.L().Error("analysis: competitor source panicked", zap.Any("panic", r))
		}
	}()

	resp, err = c.source.Analyze(ctx, req)
	if err == nil && resp == nil {
		err = &apiclient.Error{Service: competitors.AnalysisServiceName, Detail: "empty response"}
	}
	return resp, err
}
