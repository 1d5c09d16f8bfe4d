// Package proximity is a client for the business proximity service, which
// finds places of a given type near a location. Parking availability is a
// proximity search for places_type "parking".
package proximity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sells-group/venue-cli/internal/apiclient"
)

// ServiceName prefixes every error returned by this client.
const ServiceName = "Parking"

const defaultBaseURL = "http://localhost:8002/api/v1"

// Client performs business proximity operations.
type Client interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
}

// AnalysisRequest is the body of POST /business-proximity/analyze.
type AnalysisRequest struct {
	PlacesType         string  `json:"places_type"`
	Location           string  `json:"location"`
	MaxResults         int     `json:"max_results,omitempty"`
	MinRating          float64 `json:"min_rating"`
	EnableDeepAnalysis bool    `json:"enable_deep_analysis"`
}

// AnalysisResponse is the proximity service's result. Results is keyed by
// place type ("parking").
type AnalysisResponse struct {
	QueryInfo    QueryInfo          `json:"query_info"`
	Results      map[string][]Place `json:"results"`
	DeepAnalysis *DeepAnalysis      `json:"deep_analysis,omitempty"`
}

// QueryInfo echoes the query parameters.
type QueryInfo struct {
	Location   string   `json:"location"`
	PlaceTypes []string `json:"place_types"`
	Timestamp  string   `json:"timestamp"`
	MaxResults int      `json:"max_results"`
	MinRating  float64  `json:"min_rating"`
}

// Place is one matched place.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	PriceLevel       string  `json:"price_level"`
	PlaceID          string  `json:"place_id"`
}

// DeepAnalysis summarizes the matched places.
type DeepAnalysis struct {
	AverageRating float64 `json:"average_rating"`
	TotalPlaces   int     `json:"total_places"`
}

// Parking returns the parking results.
func (r *AnalysisResponse) Parking() []Place {
	return r.Results["parking"]
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
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

// NewClient creates a business proximity client.
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
	if err := apiclient.PostJSON(ctx, c.http, ServiceName, c.baseURL+"/business-proximity/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health hits the service root health route, which sits outside /api/v1.
func (c *httpClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := apiclient.GetJSON(ctx, c.http, ServiceName, healthURL(c.baseURL), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func healthURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/api/v1") + "/health"
}
