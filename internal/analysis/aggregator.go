// Package analysis scores a candidate location for a business type by fanning
// out to the census, parking and competitor services, and builds the
// competitor listing shown next to the score.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venue-cli/internal/apiclient"
	"github.com/sells-group/venue-cli/internal/catalog"
	"github.com/sells-group/venue-cli/internal/config"
	"github.com/sells-group/venue-cli/internal/model"
	"github.com/sells-group/venue-cli/internal/monitoring"
	"github.com/sells-group/venue-cli/internal/scorer"
	"github.com/sells-group/venue-cli/pkg/census"
	"github.com/sells-group/venue-cli/pkg/competitors"
	"github.com/sells-group/venue-cli/pkg/proximity"
)

// ErrMissingLocation is returned when an analysis is requested without a location.
var ErrMissingLocation = eris.New("analysis: location is required")

// Aggregator produces scored metrics for a location.
type Aggregator struct {
	census      census.Client
	proximity   proximity.Client
	competitors competitors.Client
	scorer      *scorer.Scorer
	metrics     *monitoring.Metrics
	params      config.AnalysisConfig
}

// Option configures an Aggregator or CompetitorAggregator.
type Option func(*options)

type options struct {
	scorer  *scorer.Scorer
	metrics *monitoring.Metrics
}

// WithScorer overrides the scorer (and so its randomness).
func WithScorer(s *scorer.Scorer) Option {
	return func(o *options) { o.scorer = s }
}

// WithMetrics records fetch and fallback metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.scorer == nil {
		o.scorer = scorer.New(nil)
	}
	return o
}

// NewAggregator creates a metric aggregator.
func NewAggregator(
	params config.AnalysisConfig,
	censusClient census.Client,
	proximityClient proximity.Client,
	competitorClient competitors.Client,
	opts ...Option,
) *Aggregator {
	o := buildOptions(opts)
	return &Aggregator{
		census:      censusClient,
		proximity:   proximityClient,
		competitors: competitorClient,
		scorer:      o.scorer,
		metrics:     o.metrics,
		params:      params,
	}
}

// Metrics returns one score per catalog metric for the business type, in
// catalog order. Upstream failures never fail the call: affected metrics
// fall back to an estimate.
func (a *Aggregator) Metrics(ctx context.Context, businessType, location string) []model.MetricScore {
	report, err := a.Analyze(ctx, businessType, location)
	if err != nil {
		return nil
	}
	return report.Metrics
}

// Analyze scores the location and returns the full report. The only error is
// ErrMissingLocation.
func (a *Aggregator) Analyze(ctx context.Context, businessType, location string) (*model.Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrMissingLocation
	}

	start := time.Now()
	key, entries, found := catalog.ResolveWithDefault(businessType, a.params.DefaultBusinessType)
	log := zap.L().With(
		zap.String("business_type", businessType),
		zap.String("key", key),
		zap.String("location", location),
	)
	if !found {
		log.Debug("analysis: unknown business type, using default")
	}

	report := &model.Report{
		ID:           uuid.New().String(),
		BusinessType: businessType,
		Key:          key,
		Location:     location,
		StartedAt:    start.UTC(),
	}
	log = log.With(zap.String("run_id", report.ID))

	snaps, sources := a.fetch(ctx, log, businessType, location)

	report.Metrics = a.scorer.ScoreAll(entries, snaps, scorer.Input{BusinessType: businessType, Location: location})
	report.OverallScore = scorer.OverallScore(report.Metrics)
	report.Sources = sources
	report.Demographics = snaps.Demographics
	report.DurationMS = time.Since(start).Milliseconds()

	for _, m := range report.Metrics {
		if m.Source == model.SourceEstimated && scorer.HasLiveSource(m.Key) {
			a.metrics.ObserveFallback(m.Key)
		}
	}
	a.metrics.ObserveAnalysis(key, report.OverallScore)

	log.Info("analysis: complete",
		zap.Int("overall_score", report.OverallScore),
		zap.Int("live_metrics", report.LiveCount()),
		zap.Int("metrics", len(report.Metrics)),
		zap.Int64("duration_ms", report.DurationMS),
	)
	return report, nil
}

// fetch issues the three lookups concurrently. Each task records its own
// outcome and returns nil so a failure never cancels its siblings.
func (a *Aggregator) fetch(ctx context.Context, log *zap.Logger, businessType, location string) (scorer.Snapshots, []model.SourceStatus) {
	var snaps scorer.Snapshots
	sources := make([]model.SourceStatus, 3)

	var g errgroup.Group
	g.Go(func() error {
		sources[0] = a.track(ctx, log, census.ServiceName, func(ctx context.Context) error {
			d, err := a.fetchDemographics(ctx, location)
			snaps.Demographics = d
			return err
		})
		return nil
	})
	g.Go(func() error {
		sources[1] = a.track(ctx, log, proximity.ServiceName, func(ctx context.Context) error {
			p, err := a.fetchParking(ctx, location)
			snaps.Parking = p
			return err
		})
		return nil
	})
	g.Go(func() error {
		sources[2] = a.track(ctx, log, competitors.CountServiceName, func(ctx context.Context) error {
			c, err := a.fetchCompetitorCount(ctx, businessType, location)
			snaps.Competitors = c
			return err
		})
		return nil
	})
	_ = g.Wait()

	return snaps, sources
}

func (a *Aggregator) track(ctx context.Context, log *zap.Logger, service string, fn func(context.Context) error) model.SourceStatus {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	status := model.SourceStatus{
		Service:    service,
		OK:         err == nil,
		DurationMS: elapsed.Milliseconds(),
	}
	if err == nil {
		a.metrics.ObserveFetch(service, monitoring.OutcomeOK, elapsed)
		log.Debug("analysis: fetch complete",
			zap.String("service", service),
			zap.Int64("duration_ms", status.DurationMS),
		)
		return status
	}

	status.Error = apiclient.Message(err)
	status.Transient = apiclient.IsTransient(err)
	outcome := monitoring.OutcomeError
	if status.Transient {
		outcome = monitoring.OutcomeTransient
	}
	a.metrics.ObserveFetch(service, outcome, elapsed)
	log.Warn("analysis: fetch failed, using estimates",
		zap.String("service", service),
		zap.Bool("transient", status.Transient),
		zap.Int64("duration_ms", status.DurationMS),
		zap.Error(err),
	)
	return status
}

func (a *Aggregator) fetchDemographics(ctx context.Context, location string) (*model.DemographicsSnapshot, error) {
	resp, err := a.census.Analyze(ctx, census.AnalysisRequest{
		Address:         location,
		WalkingRadiusKm: a.params.WalkingRadiusKm,
		DrivingRadiusKm: a.params.DrivingRadiusKm,
	})
	if err != nil {
		return nil, err
	}
	return &model.DemographicsSnapshot{
		Latitude:  resp.Location.Latitude,
		Longitude: resp.Location.Longitude,
		Walking:   summarize(resp.Radii.WalkingKm, resp.WalkingRadius),
		Driving:   summarize(resp.Radii.DrivingKm, resp.DrivingRadius),
	}, nil
}

func summarize(radiusKm float64, s census.RadiusStats) model.RadiusSummary {
	return model.RadiusSummary{
		RadiusKm:               radiusKm,
		TotalPopulation:        s.TotalPopulation,
		NumAreas:               s.NumAreas,
		AvgPopulationDensity:   s.AvgPopulationDensity,
		AvgMedianIncome:        s.AvgMedianIncome,
		AvgMedianDwellingValue: s.AvgMedianDwellingValue,
		TotalHouseholds:        s.TotalHouseholds,
	}
}

func (a *Aggregator) fetchParking(ctx context.Context, location string) (*model.ParkingSnapshot, error) {
	resp, err := a.proximity.Analyze(ctx, proximity.AnalysisRequest{
		PlacesType:         a.params.ParkingPlacesType,
		Location:           location,
		MaxResults:         a.params.ParkingMaxResults,
		MinRating:          a.params.ParkingMinRating,
		EnableDeepAnalysis: a.params.ParkingDeepAnalyze,
	})
	if err != nil {
		return nil, err
	}

	places := resp.Parking()
	snap := &model.ParkingSnapshot{SpotsFound: len(places)}
	switch {
	case resp.DeepAnalysis != nil:
		snap.AverageRating = resp.DeepAnalysis.AverageRating
	case len(places) > 0:
		var sum float64
		for _, p := range places {
			sum += p.Rating
		}
		snap.AverageRating = sum / float64(len(places))
	}
	return snap, nil
}

func (a *Aggregator) fetchCompetitorCount(ctx context.Context, businessType, location string) (*model.CompetitorCountSnapshot, error) {
	resp, err := a.competitors.Count(ctx, competitors.CountRequest{
		BusinessType: businessType,
		Location:     location,
		MaxResults:   a.params.CountMaxResults,
		MinRating:    a.params.CountMinRating,
	})
	if err != nil {
		return nil, err
	}
	return &model.CompetitorCountSnapshot{Count: resp.CompetitorCount}, nil
}
