package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe checks one upstream service. It returns the reported status string.
type Probe struct {
	Service string
	Check   func(ctx context.Context) (string, error)
}

// ServiceHealth is the result of one probe.
type ServiceHealth struct {
	Service    string `json:"service" yaml:"service"`
	Status     string `json:"status" yaml:"status"`
	Up         bool   `json:"up" yaml:"up"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// Checker probes the upstream services, once or periodically.
type Checker struct {
	probes   []Probe
	metrics  *Metrics
	interval time.Duration
}

// NewChecker creates a checker. A non-positive interval defaults to 5 minutes
// when Run is used.
func NewChecker(probes []Probe, metrics *Metrics, interval time.Duration) *Checker {
	return &Checker{
		probes:   probes,
		metrics:  metrics,
		interval: interval,
	}
}

// CheckAll runs every probe concurrently and returns results in probe order.
func (c *Checker) CheckAll(ctx context.Context) []ServiceHealth {
	results := make([]ServiceHealth, len(c.probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range c.probes {
		g.Go(func() error {
			start := time.Now()
			status, err := p.Check(gctx)
			h := ServiceHealth{
				Service:    p.Service,
				Status:     status,
				Up:         err == nil,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				h.Status = "unreachable"
				h.Error = err.Error()
			}

			results[i] = h

			c.metrics.SetUpstream(p.Service, h.Up)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Run probes on every tick until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := c.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting upstream health checker", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.check(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("upstream health checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

func (c *Checker) check(ctx context.Context, log *zap.Logger) {
	for _, h := range c.CheckAll(ctx) {
		if !h.Up {
			log.Warn("monitoring: upstream unhealthy",
				zap.String("service", h.Service),
				zap.String("error", h.Error),
			)
			continue
		}
		log.Debug("monitoring: upstream healthy",
			zap.String("service", h.Service),
			zap.String("status", h.Status),
			zap.Int64("duration_ms", h.DurationMS),
		)
	}
}
