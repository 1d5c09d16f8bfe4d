package scorer

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/venue-cli/internal/catalog"
)

// Normalization anchors: the value at which a metric reaches 100.
const (
	incomeCeiling   = 100_000.0
	dwellingCeiling = 800_000.0
	densityCeiling  = 5_000.0

	parkingSpotsFull   = 10.0
	parkingSpotsPoints = 60.0
	parkingRatingMax   = 5.0
	parkingRatingPts   = 40.0

	competitorPenalty = 4.5
)

// strategy scores a metric from snapshots. live is false when the snapshot
// it needs is missing.
type strategy func(Snapshots) (score int, detail string, live bool)

var strategies = map[string]strategy{
	catalog.LocalIncome:         incomeStrategy,
	catalog.RentCost:            dwellingStrategy,
	catalog.FootTraffic:         densityStrategy,
	catalog.PopulationDensity:   densityStrategy,
	catalog.ParkingAvailability: parkingStrategy,
	catalog.CompetitorCount:     competitorStrategy,
}

// HasLiveSource reports whether a metric can be scored from fetched data.
func HasLiveSource(metric string) bool {
	_, ok := strategies[metric]
	return ok
}

var printer = message.NewPrinter(language.English)

func incomeStrategy(s Snapshots) (int, string, bool) {
	if s.Demographics == nil {
		return 0, "", false
	}
	v := s.Demographics.Walking.AvgMedianIncome
	return IncomeScore(v), printer.Sprintf("(avg median income: $%.0f)", v), true
}

func dwellingStrategy(s Snapshots) (int, string, bool) {
	if s.Demographics == nil {
		return 0, "", false
	}
	v := s.Demographics.Walking.AvgMedianDwellingValue
	return DwellingScore(v), printer.Sprintf("(avg median dwelling value: $%.0f)", v), true
}

func densityStrategy(s Snapshots) (int, string, bool) {
	if s.Demographics == nil {
		return 0, "", false
	}
	v := s.Demographics.Walking.AvgPopulationDensity
	return DensityScore(v), printer.Sprintf("(avg population density: %.0f/km²)", v), true
}

func parkingStrategy(s Snapshots) (int, string, bool) {
	if s.Parking == nil {
		return 0, "", false
	}
	p := s.Parking
	return ParkingScore(p.SpotsFound, p.AverageRating),
		printer.Sprintf("(%d parking spots found, avg rating %.1f)", p.SpotsFound, p.AverageRating), true
}

func competitorStrategy(s Snapshots) (int, string, bool) {
	if s.Competitors == nil {
		return 0, "", false
	}
	n := s.Competitors.Count
	return CompetitorScore(n), printer.Sprintf("(%d competitors nearby)", n), true
}

// IncomeScore maps average median income to 0-100, saturating at $100,000.
func IncomeScore(income float64) int {
	return ratio(income, incomeCeiling)
}

// DwellingScore maps average median dwelling value to 0-100, saturating at $800,000.
func DwellingScore(value float64) int {
	return ratio(value, dwellingCeiling)
}

// DensityScore maps population density (people/km²) to 0-100, saturating at 5,000.
func DensityScore(density float64) int {
	return ratio(density, densityCeiling)
}

// ParkingScore gives up to 60 points for availability and up to 40 for quality.
func ParkingScore(spots int, avgRating float64) int {
	availability := math.Min(parkingSpotsPoints, float64(spots)/parkingSpotsFull*parkingSpotsPoints)
	quality := math.Min(parkingRatingPts, avgRating/parkingRatingMax*parkingRatingPts)
	return int(math.Round(clamp(availability + quality)))
}

// CompetitorScore is 100 with no competitors, then loses 4.5 points per
// competitor down to a floor of 10.
func CompetitorScore(count int) int {
	if count <= 0 {
		return int(maxScore)
	}
	return int(math.Round(math.Max(minCompetitorRank, maxScore-float64(count)*competitorPenalty)))
}

func ratio(v, ceiling float64) int {
	return int(math.Round(clamp(v / ceiling * maxScore)))
}
