package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venue-cli/internal/model"
)

// Run scores the location and, when comp is non-nil, loads the competitor
// listing at the same time. The competitor fetch never fails the run; its
// outcome is attached to the report.
func Run(ctx context.Context, agg *Aggregator, comp *CompetitorAggregator, businessType, location string) (*model.Report, error) {
	var (
		report      *model.Report
		competitors *model.CompetitorReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := agg.Analyze(gctx, businessType, location)
		report = r
		return err
	})
	if comp != nil {
		g.Go(func() error {
			competitors = comp.Competitors(gctx, businessType, location)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Competitors = competitors
	return report, nil
}
