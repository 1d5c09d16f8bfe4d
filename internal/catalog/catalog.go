// Package catalog holds the immutable business-type → metric weight table
// used to score candidate locations.
package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultBusinessType is used whenever a business-type key is not in the catalog.
const DefaultBusinessType = "restaurant_cafe"

// Metric keys with a live data source. Every other metric is estimated.
const (
	FootTraffic         = "foot_traffic"
	CompetitorCount     = "competitor_count"
	ParkingAvailability = "parking_availability"
	LocalIncome         = "local_income"
	RentCost            = "rent_cost"
	PopulationDensity   = "population_density"
)

// Entry is a single weighted metric for a business type.
type Entry struct {
	Metric string  `json:"metric" yaml:"metric"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// BusinessType is a business-type key and its ordered metric set.
type BusinessType struct {
	Key     string  `json:"key" yaml:"key"`
	Metrics []Entry `json:"metrics" yaml:"metrics"`
}

// table is ordered so listings are stable; weights per key sum to 1.0.
var table = []BusinessType{
	{Key: "restaurant_cafe", Metrics: []Entry{
		{FootTraffic, 0.35},
		{CompetitorCount, 0.3},
		{"school_business_proximity", 0.2},
		{ParkingAvailability, 0.1},
		{LocalIncome, 0.05},
	}},
	{Key: "office_clinic", Metrics: []Entry{
		{RentCost, 0.4},
		{"quiet_zone", 0.3},
		{ParkingAvailability, 0.2},
		{"public_transit_access", 0.1},
	}},
	{Key: "boutique_storefront", Metrics: []Entry{
		{"visibility_from_street", 0.3},
		{"walkability", 0.25},
		{FootTraffic, 0.2},
		{"nearby_shops", 0.15},
		{"aesthetic_quality", 0.1},
	}},
	{Key: "studio_gym", Metrics: []Entry{
		{"floor_space_estimate", 0.4},
		{"noise_tolerance_zone", 0.2},
		{PopulationDensity, 0.2},
		{"accessibility", 0.2},
	}},
	{Key: "services", Metrics: []Entry{
		{"low_crime_rate", 0.3},
		{"reputation_area_score", 0.25},
		{"nearby_complementary_services", 0.2},
		{"commute_accessibility", 0.15},
		{ParkingAvailability, 0.1},
	}},
}

var descriptions = map[string]string{
	"foot_traffic":                  "Pedestrian activity and potential customer flow",
	"competitor_count":              "Number of similar businesses in the area",
	"school_business_proximity":     "Distance to educational institutions",
	"parking_availability":          "Available parking spaces for customers",
	"local_income":                  "Average household income in the area",
	"rent_cost":                     "Commercial rental prices in the location",
	"quiet_zone":                    "Noise levels and peaceful environment",
	"public_transit_access":         "Proximity to public transportation",
	"visibility_from_street":        "How visible the location is from main roads",
	"walkability":                   "Pedestrian-friendly infrastructure",
	"nearby_shops":                  "Complementary businesses in the vicinity",
	"aesthetic_quality":             "Visual appeal of the neighborhood",
	"floor_space_estimate":          "Available space for business operations",
	"noise_tolerance_zone":          "Suitability for noise-generating activities",
	"population_density":            "Number of potential customers in the area",
	"accessibility":                 "Ease of access for people with disabilities",
	"low_crime_rate":                "Safety and security of the location",
	"reputation_area_score":         "Overall reputation of the neighborhood",
	"nearby_complementary_services": "Related services that could drive traffic",
	"commute_accessibility":         "Ease of commuting to the location",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases a business type and replaces whitespace runs with
// underscores ("Restaurant Cafe" → "restaurant_cafe").
func Normalize(businessType string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(businessType)), "_")
}

// Lookup returns the metric set for an exact, already-normalized key.
func Lookup(key string) ([]Entry, bool) {
	for _, bt := range table {
		if bt.Key == key {
			return clone(bt.Metrics), true
		}
	}
	return nil, false
}

// Resolve normalizes businessType and returns the matched key and its
// metric set, falling back to DefaultBusinessType for unknown keys. The
// boolean reports whether the key was found.
func Resolve(businessType string) (string, []Entry, bool) {
	return ResolveWithDefault(businessType, DefaultBusinessType)
}

// ResolveWithDefault is Resolve with a configurable fallback key. An
// unknown fallback key falls back again to DefaultBusinessType.
func ResolveWithDefault(businessType, fallback string) (string, []Entry, bool) {
	key := Normalize(businessType)
	if metrics, ok := Lookup(key); ok {
		return key, metrics, true
	}
	if metrics, ok := Lookup(Normalize(fallback)); ok {
		return Normalize(fallback), metrics, false
	}
	metrics, _ := Lookup(DefaultBusinessType)
	return DefaultBusinessType, metrics, false
}

// BusinessTypes returns every business type in catalog order.
func BusinessTypes() []BusinessType {
	out := make([]BusinessType, len(table))
	for i, bt := range table {
		out[i] = BusinessType{Key: bt.Key, Metrics: clone(bt.Metrics)}
	}
	return out
}

// Keys returns the business-type keys in catalog order.
func Keys() []string {
	keys := make([]string, len(table))
	for i, bt := range table {
		keys[i] = bt.Key
	}
	return keys
}

// Description returns the human-readable description of a metric.
func Description(metric string) string {
	if d, ok := descriptions[metric]; ok {
		return d
	}
	return "Analysis for " + strings.ReplaceAll(metric, "_", " ")
}

// DisplayName turns a metric key into a title-cased label ("foot_traffic" →
// "Foot Traffic").
func DisplayName(metric string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(metric, "_", " "))
}

// WeightSum returns the sum of the weights in entries.
func WeightSum(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Weight
	}
	return sum
}

// Validate checks that every business type has non-negative weights summing
// to 1.0 and no duplicate metrics.
func Validate() error {
	var errs []string
	seen := make(map[string]bool, len(table))
	for _, bt := range table {
		if seen[bt.Key] {
			errs = append(errs, fmt.Sprintf("%s: duplicate business type", bt.Key))
		}
		seen[bt.Key] = true

		metrics := make(map[string]bool, len(bt.Metrics))
		for _, e := range bt.Metrics {
			if e.Weight < 0 || e.Weight > 1 {
				errs = append(errs, fmt.Sprintf("%s.%s: weight %.2f out of range", bt.Key, e.Metric, e.Weight))
			}
			if metrics[e.Metric] {
				errs = append(errs, fmt.Sprintf("%s.%s: duplicate metric", bt.Key, e.Metric))
			}
			metrics[e.Metric] = true
		}
		if sum := WeightSum(bt.Metrics); math.Abs(sum-1) > 1e-9 {
			errs = append(errs, fmt.Sprintf("%s: weights sum to %.4f, must sum to 1.0", bt.Key, sum))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("catalog: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
