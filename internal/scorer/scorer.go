// Package scorer turns fetched location snapshots into 0-100 metric scores
// and a weighted overall score.
package scorer

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/sells-group/venue-cli/internal/catalog"
	"github.com/sells-group/venue-cli/internal/model"
)

// Fallback score bounds: a uniform base in [fallbackMin, fallbackMin+fallbackSpan)
// plus location and business-type bonuses.
const (
	fallbackMin       = 40.0
	fallbackSpan      = 40.0
	downtownBonus     = 10.0
	cafeBonus         = 5.0
	estimatedSuffix   = "(estimated; live data unavailable)"
	downtownKeyword   = "downtown"
	cafeKeyword       = "cafe"
	maxScore          = 100.0
	minCompetitorRank = 10.0
)

// Rand is the randomness used by fallback scores. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the auto-seeded math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// Snapshots holds whatever each fetcher returned for one analysis. A nil
// field means that fetch failed.
type Snapshots struct {
	Demographics *model.DemographicsSnapshot
	Parking      *model.ParkingSnapshot
	Competitors  *model.CompetitorCountSnapshot
}

// Input is the request context a score is computed for.
type Input struct {
	BusinessType string
	Location     string
}

// Scorer scores catalog metrics.
type Scorer struct {
	rand Rand
}

// New creates a Scorer. A nil r uses DefaultRand.
func New(r Rand) *Scorer {
	if r == nil {
		r = DefaultRand
	}
	return &Scorer{rand: r}
}

// Score computes one metric. A metric with a live strategy whose snapshot is
// present is scored from data; anything else gets a randomized estimate.
func (s *Scorer) Score(entry catalog.Entry, snaps Snapshots, in Input) model.MetricScore {
	ms := model.MetricScore{
		Key:    entry.Metric,
		Name:   catalog.DisplayName(entry.Metric),
		Weight: entry.Weight,
	}
	desc := catalog.Description(entry.Metric)

	if strategy, ok := strategies[entry.Metric]; ok {
		if score, detail, live := strategy(snaps); live {
			ms.Score = score
			ms.Description = desc + " " + detail
			ms.Source = model.SourceLive
			return ms
		}
	}

	ms.Score = s.Fallback(in)
	ms.Description = desc + " " + estimatedSuffix
	ms.Source = model.SourceEstimated
	return ms
}

// ScoreAll scores every entry in catalog order.
func (s *Scorer) ScoreAll(entries []catalog.Entry, snaps Snapshots, in Input) []model.MetricScore {
	out := make([]model.MetricScore, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.Score(e, snaps, in))
	}
	return out
}

// Fallback returns a randomized estimate in [40, 95].
func (s *Scorer) Fallback(in Input) int {
	score := fallbackMin + s.rand.Float64()*fallbackSpan
	if strings.Contains(strings.ToLower(in.Location), downtownKeyword) {
		score += downtownBonus
	}
	if strings.Contains(strings.ToLower(in.BusinessType), cafeKeyword) {
		score += cafeBonus
	}
	return int(math.Round(clamp(score)))
}

// OverallScore is round(Σ score×weight). Weights are trusted to sum to 1.
func OverallScore(metrics []model.MetricScore) int {
	var sum float64
	for _, m := range metrics {
		sum += float64(m.Score) * m.Weight
	}
	return int(math.Round(sum))
}

func clamp(v float64) float64 {
	return math.Min(maxScore, math.Max(0, v))
}
