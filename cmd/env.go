package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sells-group/venue-cli/internal/analysis"
	"github.com/sells-group/venue-cli/internal/config"
	"github.com/sells-group/venue-cli/internal/monitoring"
	anthropicpkg "github.com/sells-group/venue-cli/pkg/anthropic"
	"github.com/sells-group/venue-cli/pkg/census"
	"github.com/sells-group/venue-cli/pkg/competitors"
	"github.com/sells-group/venue-cli/pkg/google"
	"github.com/sells-group/venue-cli/pkg/proximity"
)

// analysisEnv holds the initialized clients and aggregators needed by the
// analyze/competitors/health/serve commands.
type analysisEnv struct {
	Census      census.Client
	Proximity   proximity.Client
	Competitors competitors.Client

	Aggregator       *analysis.Aggregator
	CompetitorSource *analysis.CompetitorAggregator
	Checker          *monitoring.Checker
	Metrics          *monitoring.Metrics
}

// initAnalysis validates cfg for mode and builds every client from it.
// reg may be nil, in which case nothing is recorded.
func initAnalysis(c *config.Config, mode string, reg prometheus.Registerer) (*analysisEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	var metrics *monitoring.Metrics
	if reg != nil {
		metrics = monitoring.NewMetrics(reg)
	}

	env := &analysisEnv{
		Census: census.NewClient(
			census.WithBaseURL(c.Census.BaseURL),
			census.WithTimeout(seconds(c.Census.TimeoutSecs)),
		),
		Proximity: proximity.NewClient(
			proximity.WithBaseURL(c.Proximity.BaseURL),
			proximity.WithTimeout(seconds(c.Proximity.TimeoutSecs)),
		),
		Competitors: competitors.NewClient(
			competitors.WithBaseURL(c.Competitors.BaseURL),
			competitors.WithTimeout(seconds(c.Competitors.TimeoutSecs)),
			competitors.WithAnalyzeTimeout(seconds(c.Competitors.AnalyzeTimeoutSecs)),
		),
		Metrics: metrics,
	}

	env.Aggregator = analysis.NewAggregator(c.Analysis, env.Census, env.Proximity, env.Competitors,
		analysis.WithMetrics(metrics),
	)

	source, sourceName := competitorSource(c, env.Competitors)
	env.CompetitorSource = analysis.NewCompetitorAggregator(c.Analysis, source, sourceName,
		analysis.WithMetrics(metrics),
	)

	env.Checker = monitoring.NewChecker(healthProbes(env), metrics, seconds(c.Server.HealthCheckSecs))

	zap.L().Debug("analysis clients initialized",
		zap.String("census", c.Census.BaseURL),
		zap.String("proximity", c.Proximity.BaseURL),
		zap.String("competitors", c.Competitors.BaseURL),
		zap.String("competitor_source", sourceName),
	)
	return env, nil
}

// competitorSource picks the competitor listing backend. The "places" source
// searches Google directly and, with an Anthropic key, writes the
// per-competitor analysis itself.
func competitorSource(c *config.Config, svc competitors.Client) (analysis.Source, string) {
	if c.Competitors.Source != analysis.SourcePlaces {
		return svc, analysis.SourceService
	}

	placesOpts := []google.Option{}
	if c.Google.BaseURL != "" {
		placesOpts = append(placesOpts, google.WithBaseURL(c.Google.BaseURL))
	}
	places := google.NewClient(c.Google.Key, placesOpts...)

	var ai anthropicpkg.Client
	if c.Anthropic.Key != "" {
		ai = anthropicpkg.NewClient(c.Anthropic.Key)
	}
	src := analysis.NewPlacesSource(places, ai, c.Anthropic.Model, c.Anthropic.MaxTokens,
		analysis.WithWriteUpRate(c.Anthropic.RequestsPerSecond),
	)
	return src, analysis.SourcePlaces
}

// healthProbes returns one probe per upstream service, in display order.
func healthProbes(env *analysisEnv) []monitoring.Probe {
	return []monitoring.Probe{
		{Service: census.ServiceName, Check: func(ctx context.Context) (string, error) {
			resp, err := env.Census.Health(ctx)
			if err != nil {
				return "", err
			}
			return resp.Status, nil
		}},
		{Service: proximity.ServiceName, Check: func(ctx context.Context) (string, error) {
			resp, err := env.Proximity.Health(ctx)
			if err != nil {
				return "", err
			}
			return resp.Status, nil
		}},
		{Service: competitors.AnalysisServiceName, Check: func(ctx context.Context) (string, error) {
			resp, err := env.Competitors.Health(ctx)
			if err != nil {
				return "", err
			}
			return resp.Status, nil
		}},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
