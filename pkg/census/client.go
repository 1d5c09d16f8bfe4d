// Package census is a client for the census demographics service, which
// summarizes census areas inside a walking and a driving radius around an
// address.
package census

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sells-group/venue-cli/internal/apiclient"
)

// ServiceName prefixes every error returned by this client.
const ServiceName = "Census"

const defaultBaseURL = "http://localhost:8001/api/v1"

// Client performs census demographics operations.
type Client interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
}

// AnalysisRequest is the body of POST /census/analyze. Either Address or
// Latitude/Longitude must be set.
type AnalysisRequest struct {
	Address              string   `json:"address,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	WalkingRadiusKm      float64  `json:"walking_radius_km,omitempty"`
	DrivingRadiusKm      float64  `json:"driving_radius_km,omitempty"`
	IncludeDetailedAreas bool     `json:"include_detailed_areas,omitempty"`
}

// AnalysisResponse is the census service's analysis result.
type AnalysisResponse struct {
	Location          Location           `json:"location"`
	Radii             Radii              `json:"radii"`
	WalkingRadius     RadiusStats        `json:"walking_radius"`
	DrivingRadius     RadiusStats        `json:"driving_radius"`
	AddressValidation *AddressValidation `json:"address_validation,omitempty"`
}

// Location is the resolved coordinate of the analyzed address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Radii echoes the radii used for the analysis.
type Radii struct {
	WalkingKm float64 `json:"walking_km"`
	DrivingKm float64 `json:"driving_km"`
}

// RadiusStats aggregates census areas within one radius.
type RadiusStats struct {
	TotalPopulation        int     `json:"total_population"`
	NumAreas               int     `json:"num_areas"`
	AvgPopulationDensity   float64 `json:"avg_population_density"`
	AvgMedianIncome        float64 `json:"avg_median_income"`
	AvgMedianDwellingValue float64 `json:"avg_median_dwelling_value"`
	AvgAge                 float64 `json:"avg_age"`
	AvgHouseholdSize       float64 `json:"avg_household_size"`
	TotalHouseholds        int     `json:"total_households"`
	TotalDwellings         int     `json:"total_dwellings"`
	TotalAreaKm2           float64 `json:"total_area_km2"`
}

// AddressValidation describes how the address was resolved to coordinates.
type AddressValidation struct {
	OriginalAddress   string `json:"original_address,omitempty"`
	ValidatedAddress  string `json:"validated_address,omitempty"`
	Confidence        string `json:"confidence,omitempty"`
	CoordinatesSource string `json:"coordinates_source"`
}

// HealthResponse is the body of GET /census/health.
type HealthResponse struct {
	Status                    string `json:"status"`
	CensusProcessorAvailable  bool   `json:"census_processor_available"`
	AddressValidatorAvailable bool   `json:"address_validator_available"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http = apiclient.NewHTTPClient(d)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a census service client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    apiclient.NewHTTPClient(30 * time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	var resp AnalysisResponse
	if err := apiclient.PostJSON(ctx, c.http, ServiceName, c.baseURL+"/census/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := apiclient.GetJSON(ctx, c.http, ServiceName, c.baseURL+"/census/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
