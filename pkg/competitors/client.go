// Package competitors is a client for the competitor analysis service,
// which counts and describes businesses of a given type near a location.
package competitors

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sells-group/venue-cli/internal/apiclient"
)

// Service names prefix errors from the two competitor endpoints.
const (
	CountServiceName    = "Competitor Count"
	AnalysisServiceName = "Competitor Analysis"
)

const defaultBaseURL = "http://localhost:8000/api/v1"

// Client performs competitor service operations.
type Client interface {
	Count(ctx context.Context, req CountRequest) (*CountResponse, error)
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
}

// CountRequest is the body of POST /competitors/count.
type CountRequest struct {
	BusinessType string  `json:"business_type"`
	Location     string  `json:"location"`
	MaxResults   int     `json:"max_results,omitempty"`
	MinRating    float64 `json:"min_rating"`
}

// CountResponse is the competitor count result.
type CountResponse struct {
	CompetitorCount int    `json:"competitor_count"`
	BusinessType    string `json:"business_type"`
	Location        string `json:"location"`
	SearchQuery     string `json:"search_query"`
}

// AnalysisRequest is the body of POST /competitors/analyze.
type AnalysisRequest struct {
	BusinessType       string  `json:"business_type"`
	Location           string  `json:"location"`
	RadiusMeters       int     `json:"radius_meters,omitempty"`
	MaxResults         int     `json:"max_results,omitempty"`
	MinRating          float64 `json:"min_rating"`
	OpenNow            bool    `json:"open_now,omitempty"`
	EnableDeepAnalysis bool    `json:"enable_deep_analysis"`
}

// AnalysisResponse is the competitor analysis result.
type AnalysisResponse struct {
	QueryInfo      QueryInfo       `json:"query_info"`
	Competitors    []Competitor    `json:"competitors"`
	MarketInsights *MarketInsights `json:"market_insights,omitempty"`
}

// TimestampLayout is the service's timestamp format: ISO 8601 without a
// zone offset.
const TimestampLayout = "2006-01-02T15:04:05.999999"

// QueryInfo echoes the search that produced the competitor list. Timestamp
// is kept as sent since the service omits the zone offset.
type QueryInfo struct {
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
	SearchQuery  string `json:"search_query"`
	RadiusMeters int    `json:"radius_meters"`
	Timestamp    string `json:"timestamp"`
	TotalResults int    `json:"total_results"`
}

// Competitor is one business returned by the competitor search.
type Competitor struct {
	Name               string        `json:"name" yaml:"name"`
	Address            string        `json:"address" yaml:"address"`
	Rating             *float64      `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount        *int          `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	PriceLevel         string        `json:"price_level,omitempty" yaml:"price_level,omitempty"`
	Phone              string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website            string        `json:"website,omitempty" yaml:"website,omitempty"`
	BusinessStatus     string        `json:"business_status,omitempty" yaml:"business_status,omitempty"`
	OpeningHours       *OpeningHours `json:"opening_hours,omitempty" yaml:"opening_hours,omitempty"`
	TopReviews         []Review      `json:"top_reviews" yaml:"top_reviews"`
	PlaceID            string        `json:"place_id" yaml:"place_id"`
	CompetitorAnalysis string        `json:"competitor_analysis,omitempty" yaml:"competitor_analysis,omitempty"`
	DataSources        []string      `json:"data_sources" yaml:"data_sources"`
	AnalysisConfidence *float64      `json:"analysis_confidence,omitempty" yaml:"analysis_confidence,omitempty"`
}

// OpeningHours describes a competitor's regular hours.
type OpeningHours struct {
	OpenNow     bool             `json:"open_now" yaml:"open_now"`
	Periods     []map[string]any `json:"periods,omitempty" yaml:"periods,omitempty"`
	WeekdayText []string         `json:"weekday_text,omitempty" yaml:"weekday_text,omitempty"`
}

// Review is one of a competitor's recent reviews.
type Review struct {
	AuthorName string `json:"author_name" yaml:"author_name"`
	Rating     int    `json:"rating" yaml:"rating"`
	Text       string `json:"text" yaml:"text"`
	Time       string `json:"time,omitempty" yaml:"time,omitempty"`
}

// MarketInsights aggregates the competitor list.
type MarketInsights struct {
	AverageRating          *float64       `json:"average_rating,omitempty" yaml:"average_rating,omitempty"`
	RatingDistribution     map[string]int `json:"rating_distribution" yaml:"rating_distribution"`
	PriceLevelDistribution map[string]int `json:"price_level_distribution" yaml:"price_level_distribution"`
	TotalReviews           int            `json:"total_reviews" yaml:"total_reviews"`
	HighlyRatedCount       int            `json:"highly_rated_count" yaml:"highly_rated_count"`
	MarketSaturation       string         `json:"market_saturation" yaml:"market_saturation"`
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

// WithHTTPClient overrides the http.Client used by every endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
		c.analyzeHTTP = hc
	}
}

// WithTimeout sets the per-call timeout for count and health calls.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http = apiclient.NewHTTPClient(d)
	}
}

// WithAnalyzeTimeout sets the per-call timeout for the analysis endpoint,
// which runs deep analysis upstream and is slower than a count.
func WithAnalyzeTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.analyzeHTTP = apiclient.NewHTTPClient(d)
	}
}

type httpClient struct {
	baseURL     string
	http        *http.Client
	analyzeHTTP *http.Client
}

// NewClient creates a competitor service client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:     defaultBaseURL,
		http:        apiclient.NewHTTPClient(30 * time.Second),
		analyzeHTTP: apiclient.NewHTTPClient(50 * time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Count(ctx context.Context, req CountRequest) (*CountResponse, error) {
	var resp CountResponse
	if err := apiclient.PostJSON(ctx, c.http, CountServiceName, c.baseURL+"/competitors/count", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	var resp AnalysisResponse
	if err := apiclient.PostJSON(ctx, c.analyzeHTTP, AnalysisServiceName, c.baseURL+"/competitors/analyze", req, &resp); err != nil {
		return nil, err
	}
	if resp.Competitors == nil {
		resp.Competitors = []Competitor{}
	}
	return &resp, nil
}

func (c *httpClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	url := strings.TrimSuffix(c.baseURL, "/api/v1") + "/health"
	if err := apiclient.GetJSON(ctx, c.http, AnalysisServiceName, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
