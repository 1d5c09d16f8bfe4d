package model

// Source says where a metric score came from.
type Source string

const (
	SourceLive      Source = "live"      // derived from a fetched snapshot
	SourceEstimated Source = "estimated" // randomized fallback
)

// MetricScore is one scored dimension of a location. Created per analysis,
// never persisted.
type MetricScore struct {
	Key         string  `json:"key" yaml:"key"`
	Name        string  `json:"name" yaml:"name"`
	Score       int     `json:"score" yaml:"score"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Description string  `json:"description" yaml:"description"`
	Source      Source  `json:"source" yaml:"source"`
}

// RadiusSummary is the subset of census statistics kept for one radius.
type RadiusSummary struct {
	RadiusKm               float64 `json:"radius_km" yaml:"radius_km"`
	TotalPopulation        int     `json:"total_population" yaml:"total_population"`
	NumAreas               int     `json:"num_areas" yaml:"num_areas"`
	AvgPopulationDensity   float64 `json:"avg_population_density" yaml:"avg_population_density"`
	AvgMedianIncome        float64 `json:"avg_median_income" yaml:"avg_median_income"`
	AvgMedianDwellingValue float64 `json:"avg_median_dwelling_value" yaml:"avg_median_dwelling_value"`
	TotalHouseholds        int     `json:"total_households" yaml:"total_households"`
}

// DemographicsSnapshot holds census figures around the resolved coordinate.
// Scoring reads the walking radius only.
type DemographicsSnapshot struct {
	Latitude  float64       `json:"latitude" yaml:"latitude"`
	Longitude float64       `json:"longitude" yaml:"longitude"`
	Walking   RadiusSummary `json:"walking" yaml:"walking"`
	Driving   RadiusSummary `json:"driving" yaml:"driving"`
}

// ParkingSnapshot summarizes the parking search.
type ParkingSnapshot struct {
	SpotsFound    int     `json:"spots_found" yaml:"spots_found"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating"`
}

// CompetitorCountSnapshot is the number of competitors near the location.
type CompetitorCountSnapshot struct {
	Count int `json:"count" yaml:"count"`
}
