package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/venue-cli/internal/apiclient"
	"github.com/sells-group/venue-cli/pkg/anthropic"
	"github.com/sells-group/venue-cli/pkg/competitors"
	"github.com/sells-group/venue-cli/pkg/google"
)

const (
	maxPageSize         = 20
	maxTopReviews       = 3
	promptReviews       = 2
	reviewExcerptLen    = 150
	defaultRadiusMeters = 1000
	writeUpConcurrency  = 4
	defaultWriteUpRate  = 5

	dataSourcePlaces    = "google_places"
	dataSourceAnthropic = "anthropic"
)

const writeUpSystemPrompt = `You are a business analyst specializing in competitive intelligence.

Write a concise 3-4 sentence competitive analysis of the business described by the user. Cover its market positioning, customer sentiment from ratings and reviews, its competitive strengths and weaknesses, and an overall threat level.

Be specific and fact-based; the reader is a business owner deciding whether to open nearby.`

var writeUpTemperature = 0.3

// PlacesSource builds competitor listings in-process from Google Places text
// search. With an Anthropic client it also writes a short analysis of each
// competitor in deep-analysis mode.
type PlacesSource struct {
	places    google.Client
	ai        anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// PlacesOption configures a PlacesSource.
type PlacesOption func(*PlacesSource)

// WithWriteUpRate caps Anthropic write-up requests per second. A
// non-positive value removes the cap.
func WithWriteUpRate(perSecond float64) PlacesOption {
	return func(s *PlacesSource) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// NewPlacesSource creates a Places-backed competitor source. ai may be nil,
// in which case write-ups use the rule-based text.
func NewPlacesSource(places google.Client, ai anthropic.Client, model string, maxTokens int64, opts ...PlacesOption) *PlacesSource {
	s := &PlacesSource{
		places:    places,
		ai:        ai,
		model:     model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(defaultWriteUpRate, defaultWriteUpRate),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze searches for "<business type> in <location>" and returns the
// parsed competitors with locally computed market insights.
func (s *PlacesSource) Analyze(ctx context.Context, req competitors.AnalysisRequest) (*competitors.AnalysisResponse, error) {
	query := fmt.Sprintf("%s in %s", req.BusinessType, req.Location)

	pageSize := req.MaxResults
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	resp, err := s.places.TextSearch(ctx, google.TextSearchRequest{
		TextQuery: query,
		PageSize:  pageSize,
		MinRating: req.MinRating,
		OpenNow:   req.OpenNow,
	})
	if err != nil {
		return nil, &apiclient.Error{Service: competitors.AnalysisServiceName, Err: err}
	}

	list := make([]competitors.Competitor, 0, len(resp.Places))
	for _, p := range resp.Places {
		list = append(list, parseCompetitor(p))
	}

	if req.EnableDeepAnalysis {
		s.writeUps(ctx, list, req.BusinessType, req.Location)
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = defaultRadiusMeters
	}

	return &competitors.AnalysisResponse{
		QueryInfo: competitors.QueryInfo{
			BusinessType: req.BusinessType,
			Location:     req.Location,
			SearchQuery:  query,
			RadiusMeters: radius,
			Timestamp:    time.Now().UTC().Format(competitors.TimestampLayout),
			TotalResults: len(list),
		},
		Competitors:    list,
		MarketInsights: competitors.ComputeMarketInsights(list),
	}, nil
}

func parseCompetitor(p google.Place) competitors.Competitor {
	name := p.DisplayName.Text
	if name == "" {
		name = "Unknown"
	}
	c := competitors.Competitor{
		Name:           name,
		Address:        p.FormattedAddress,
		Rating:         p.Rating,
		ReviewCount:    p.UserRatingCount,
		PriceLevel:     competitors.PriceLevelLabel(p.PriceLevel),
		Phone:          p.NationalPhoneNumber,
		Website:        p.WebsiteURI,
		BusinessStatus: p.BusinessStatus,
		PlaceID:        p.ID,
		TopReviews:     []competitors.Review{},
		DataSources:    []string{dataSourcePlaces},
	}

	if h := p.RegularOpeningHours; h != nil {
		c.OpeningHours = &competitors.OpeningHours{
			OpenNow:     h.OpenNow,
			Periods:     h.Periods,
			WeekdayText: h.WeekdayDescriptions,
		}
	}

	for i, r := range p.Reviews {
		if i == maxTopReviews {
			break
		}
		author := r.AuthorAttribution.DisplayName
		if author == "" {
			author = "Anonymous"
		}
		review := competitors.Review{
			AuthorName: author,
			Rating:     r.Rating,
		}
		if r.PublishTime != nil {
			review.Time = r.PublishTime.UTC().Format(competitors.TimestampLayout)
		}
		if r.Text != nil {
			review.Text = r.Text.Text
		}
		c.TopReviews = append(c.TopReviews, review)
	}
	return c
}

// writeUps fills CompetitorAnalysis and AnalysisConfidence for every
// competitor. Individual failures fall back to rule-based text.
func (s *PlacesSource) writeUps(ctx context.Context, list []competitors.Competitor, businessType, location string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeUpConcurrency)

	for i := range list {
		g.Go(func() error {
			c := &list[i]
			c.AnalysisConfidence = ptr(Confidence(*c))

			text, err := s.writeUp(gctx, *c, businessType, location)
			if err != nil {
				zap.L().Debug("analysis: competitor write-up failed, using fallback",
					zap.String("competitor", c.Name),
					zap.Error(err),
				)
				c.CompetitorAnalysis = FallbackWriteUp(*c)
				return nil
			}
			c.CompetitorAnalysis = text
			c.DataSources = append(c.DataSources, dataSourceAnthropic)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *PlacesSource) writeUp(ctx context.Context, c competitors.Competitor, businessType, location string) (string, error) {
	if s.ai == nil {
		return "", errNoWriter
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "analysis: write-up rate limit")
	}
	resp, err := s.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		System:      writeUpSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: competitorContext(c, businessType, location)}},
		Temperature: &writeUpTemperature,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(s.model, c.Name)

	text := resp.Text()
	if text == "" {
		return "", errEmptyWriteUp
	}
	return text, nil
}

var (
	errNoWriter     = eris.New("analysis: no anthropic client configured")
	errEmptyWriteUp = eris.New("analysis: empty write-up")
)

func competitorContext(c competitors.Competitor, businessType, location string) string {
	lines := []string{
		"Business: " + c.Name,
		"Location: " + c.Address,
		fmt.Sprintf("Business Type: %s in %s", businessType, location),
		"Google Places Data:",
	}
	if c.Rating != nil {
		lines = append(lines, "- "+ratingLine(c))
	}
	if c.PriceLevel != "" && c.PriceLevel != competitors.PriceUnknown {
		lines = append(lines, "- Price Level: "+c.PriceLevel)
	}
	if c.Phone != "" {
		lines = append(lines, "- Phone: "+c.Phone)
	}
	if c.Website != "" {
		lines = append(lines, "- Website: "+c.Website)
	}
	if len(c.TopReviews) > 0 {
		lines = append(lines, "- Recent Reviews:")
		for i, r := range c.TopReviews {
			if i == promptReviews {
				break
			}
			lines = append(lines, fmt.Sprintf("  * %d/5: %s", r.Rating, truncate(r.Text, reviewExcerptLen)))
		}
	}
	return strings.Join(lines, "\n")
}

func ratingLine(c competitors.Competitor) string {
	reviews := 0
	if c.ReviewCount != nil {
		reviews = *c.ReviewCount
	}
	return fmt.Sprintf("Rating: %.1f/5.0 (%d reviews)", *c.Rating, reviews)
}

// FallbackWriteUp is the rule-based analysis used when no model output is
// available.
func FallbackWriteUp(c competitors.Competitor) string {
	name := c.Name
	if name == "" || name == "Unknown" {
		name = "This competitor"
	}
	rating := "Limited rating information available."
	if c.Rating != nil {
		rating = ratingLine(c) + "."
	}
	return fmt.Sprintf("%s appears to be an established competitor in the local market. %s "+
		"Based on available data, they represent a standard competitive presence worth monitoring "+
		"for market positioning and customer engagement.", name, rating)
}

// Confidence scores how much listing data backs a write-up, from 0 to 1.
func Confidence(c competitors.Competitor) float64 {
	score := 0.0
	if c.Rating != nil {
		score += 0.2
	}
	if c.ReviewCount != nil && *c.ReviewCount > 10 {
		score += 0.2
	}
	if len(c.TopReviews) > 0 {
		score += 0.1
	}
	if c.Website != "" {
		score += 0.1
	}
	return min(score, 1.0)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func ptr[T any](v T) *T { return &v }
