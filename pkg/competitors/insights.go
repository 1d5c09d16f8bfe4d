package competitors

import (
	"fmt"
	"math"
)

// Saturation thresholds by competitor count, and the labels used when a value
// could not be determined.
const (
	highSaturationCount   = 15
	mediumSaturationCount = 8
	highlyRatedThreshold  = 4.0

	SaturationUnknown = "Unknown"
	PriceUnknown      = "Unknown"
)

// ComputeMarketInsights aggregates a competitor list the same way the
// competitor service does, for callers that build the list themselves.
func ComputeMarketInsights(competitors []Competitor) *MarketInsights {
	mi := &MarketInsights{
		RatingDistribution:     map[string]int{},
		PriceLevelDistribution: map[string]int{},
		MarketSaturation:       SaturationUnknown,
	}
	if len(competitors) == 0 {
		return mi
	}
	mi.MarketSaturation = Saturation(len(competitors))

	var sum float64
	var rated int
	for _, c := range competitors {
		if c.Rating != nil {
			r := *c.Rating
			sum += r
			rated++
			// Zero means unrated and stays out of the distribution.
			if r != 0 {
				lo := int(math.Floor(r))
				mi.RatingDistribution[fmt.Sprintf("%d-%d", lo, lo+1)]++
			}
			if r >= highlyRatedThreshold {
				mi.HighlyRatedCount++
			}
		}
		if c.ReviewCount != nil {
			mi.TotalReviews += *c.ReviewCount
		}
		if c.PriceLevel != "" && c.PriceLevel != PriceUnknown {
			mi.PriceLevelDistribution[c.PriceLevel]++
		}
	}

	if rated > 0 {
		avg := sum / float64(rated)
		mi.AverageRating = &avg
	}
	return mi
}

// Saturation labels market density from the number of competitors found.
func Saturation(count int) string {
	switch {
	case count >= highSaturationCount:
		return "High"
	case count >= mediumSaturationCount:
		return "Medium"
	default:
		return "Low"
	}
}

// PriceLevelLabel maps a Places API price level enum to a dollar-sign label.
func PriceLevelLabel(level string) string {
	switch level {
	case "PRICE_LEVEL_FREE":
		return "Free"
	case "PRICE_LEVEL_INEXPENSIVE":
		return "$"
	case "PRICE_LEVEL_MODERATE":
		return "$$"
	case "PRICE_LEVEL_EXPENSIVE":
		return "$$$"
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return "$$$$"
	default:
		return PriceUnknown
	}
}
