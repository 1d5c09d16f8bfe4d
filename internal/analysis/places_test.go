package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/venue-cli/pkg/anthropic"
	anthropicmocks "github.com/sells-group/venue-cli/pkg/anthropic/mocks"
	"github.com/sells-group/venue-cli/pkg/competitors"
	"github.com/sells-group/venue-cli/pkg/google"
	googlemocks "github.com/sells-group/venue-cli/pkg/google/mocks"
)

func samplePlaces() *google.TextSearchResponse {
	rating := 4.4
	count := 812
	low := 3.1
	published := time.Date(2025, 7, 1, 14, 3, 22, 0, time.FixedZone("EDT", -4*3600))
	return &google.TextSearchResponse{Places: []google.Place{
		{
			ID:                  "p1",
			DisplayName:         google.DisplayName{Text: "Bridgehead"},
			FormattedAddress:    "366 Bank St",
			Rating:              &rating,
			UserRatingCount:     &count,
			PriceLevel:          "PRICE_LEVEL_INEXPENSIVE",
			WebsiteURI:          "https://bridgehead.ca",
			RegularOpeningHours: &google.OpeningHours{OpenNow: true, WeekdayDescriptions: []string{"Monday: 7-7"}},
			Reviews: []google.Review{
				{Rating: 5, Text: &google.LocalizedText{Text: "Great"}, AuthorAttribution: google.AuthorAttribution{DisplayName: "Ann"}, PublishTime: &published},
				{Rating: 4, Text: &google.LocalizedText{Text: "Good"}},
				{Rating: 3},
				{Rating: 1},
			},
		},
		{ID: "p2", Rating: &low},
	}}
}

func TestPlacesSource_Analyze(t *testing.T) {
	g := googlemocks.NewMockClient(t)
	g.On("TextSearch", mock.Anything, google.TextSearchRequest{
		TextQuery: "cafe in Glebe, Ottawa",
		PageSize:  10,
		MinRating: 3.0,
	}).Return(samplePlaces(), nil)

	src := NewPlacesSource(g, nil, "claude-haiku-4-5-20251001", 200)
	resp, err := src.Analyze(context.Background(), competitors.AnalysisRequest{
		BusinessType: "cafe",
		Location:     "Glebe, Ottawa",
		MaxResults:   10,
		MinRating:    3.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "cafe in Glebe, Ottawa", resp.QueryInfo.SearchQuery)
	assert.Equal(t, 1000, resp.QueryInfo.RadiusMeters)
	assert.Equal(t, 2, resp.QueryInfo.TotalResults)
	require.Len(t, resp.Competitors, 2)

	c := resp.Competitors[0]
	assert.Equal(t, "Bridgehead", c.Name)
	assert.Equal(t, "$", c.PriceLevel)
	assert.Equal(t, "p1", c.PlaceID)
	require.NotNil(t, c.OpeningHours)
	assert.Equal(t, []string{"Monday: 7-7"}, c.OpeningHours.WeekdayText)
	require.Len(t, c.TopReviews, 3)
	assert.Equal(t, "Ann", c.TopReviews[0].AuthorName)
	assert.Equal(t, "2025-07-01T18:03:22", c.TopReviews[0].Time)
	assert.Equal(t, "Anonymous", c.TopReviews[1].AuthorName)
	assert.Empty(t, c.TopReviews[1].Time)
	_, err = time.Parse(competitors.TimestampLayout, resp.QueryInfo.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, []string{"google_places"}, c.DataSources)
	assert.Empty(t, c.CompetitorAnalysis, "no write-ups without deep analysis")

	unnamed := resp.Competitors[1]
	assert.Equal(t, "Unknown", unnamed.Name)
	assert.Equal(t, "Unknown", unnamed.PriceLevel)

	require.NotNil(t, resp.MarketInsights)
	assert.Equal(t, "Low", resp.MarketInsights.MarketSaturation)
	assert.Equal(t, 1, resp.MarketInsights.HighlyRatedCount)
	assert.Equal(t, map[string]int{"$": 1}, resp.MarketInsights.PriceLevelDistribution)
}

func TestPlacesSource_PageSizeCapped(t *testing.T) {
	g := googlemocks.NewMockClient(t)
	g.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool {
		return r.PageSize == 20
	})).Return(&google.TextSearchResponse{}, nil)

	resp, err := NewPlacesSource(g, nil, "", 0).Analyze(context.Background(), competitors.AnalysisRequest{MaxResults: 50})
	require.NoError(t, err)
	assert.NotNil(t, resp.Competitors)
	assert.Equal(t, "Unknown", resp.MarketInsights.MarketSaturation)
}

func TestPlacesSource_SearchError(t *testing.T) {
	g := googlemocks.NewMockClient(t)
	g.On("TextSearch", mock.Anything, mock.Anything).Return(nil, errors.New("google: unexpected status 403: denied"))

	_, err := NewPlacesSource(g, nil, "", 0).Analyze(context.Background(), competitors.AnalysisRequest{BusinessType: "gym", Location: "glebe"})
	require.Error(t, err)
	assert.Equal(t, "Competitor Analysis API Error: google: unexpected status 403: denied", err.Error())
}

func TestPlacesSource_DeepAnalysisWithAnthropic(t *testing.T) {
	g := googlemocks.NewMockClient(t)
	g.On("TextSearch", mock.Anything, mock.Anything).Return(samplePlaces(), nil)

	ai := anthropicmocks.NewMockClient(t)
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(r anthropic.MessageRequest) bool {
		return strings.Contains(r.Messages[0].Content, "Business: Bridgehead")
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Bridgehead dominates the morning rush."}},
	}, nil)
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(r anthropic.MessageRequest) bool {
		return strings.Contains(r.Messages[0].Content, "Business: Unknown")
	})).Return(nil, errors.New("overloaded"))

	src := NewPlacesSource(g, ai, "claude-haiku-4-5-20251001", 200)
	resp, err := src.Analyze(context.Background(), competitors.AnalysisRequest{
		BusinessType:       "cafe",
		Location:           "glebe",
		EnableDeepAnalysis: true,
	})
	require.NoError(t, err)

	first := resp.Competitors[0]
	assert.Equal(t, "Bridgehead dominates the morning rush.", first.CompetitorAnalysis)
	assert.Equal(t, []string{"google_places", "anthropic"}, first.DataSources)
	require.NotNil(t, first.AnalysisConfidence)
	assert.InDelta(t, 0.6, *first.AnalysisConfidence, 1e-9)

	second := resp.Competitors[1]
	assert.Contains(t, second.CompetitorAnalysis, "This competitor appears to be an established competitor")
	assert.Contains(t, second.CompetitorAnalysis, "Rating: 3.1/5.0 (0 reviews).")
	require.NotNil(t, second.AnalysisConfidence)
	assert.InDelta(t, 0.2, *second.AnalysisConfidence, 1e-9)
}

func TestPlacesSource_DeepAnalysisWithoutAnthropic(t *testing.T) {
	g := googlemocks.NewMockClient(t)
	g.On("TextSearch", mock.Anything, mock.Anything).Return(samplePlaces(), nil)

	resp, err := NewPlacesSource(g, nil, "", 0).Analyze(context.Background(), competitors.AnalysisRequest{EnableDeepAnalysis: true})
	require.NoError(t, err)
	for _, c := range resp.Competitors {
		assert.NotEmpty(t, c.CompetitorAnalysis)
		assert.Equal(t, []string{"google_places"}, c.DataSources)
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(competitors.Competitor{}))

	rating := 4.0
	few, many := 5, 50
	assert.InDelta(t, 0.2, Confidence(competitors.Competitor{Rating: &rating, ReviewCount: &few}), 1e-9)
	assert.InDelta(t, 0.6, Confidence(competitors.Competitor{
		Rating:      &rating,
		ReviewCount: &many,
		TopReviews:  []competitors.Review{{Rating: 5}},
		Website:     "https://x.ca",
	}), 1e-9)
}

func TestFallbackWriteUp(t *testing.T) {
	assert.Equal(t,
		"Iron Works appears to be an established competitor in the local market. Limited rating information available. "+
			"Based on available data, they represent a standard competitive presence worth monitoring "+
			"for market positioning and customer engagement.",
		FallbackWriteUp(competitors.Competitor{Name: "Iron Works"}))
}

func TestCompetitorContext(t *testing.T) {
	rating := 4.4
	count := 812
	long := strings.Repeat("a", 200)
	ctx := competitorContext(competitors.Competitor{
		Name:        "Bridgehead",
		Address:     "366 Bank St",
		Rating:      &rating,
		ReviewCount: &count,
		PriceLevel:  "$",
		TopReviews:  []competitors.Review{{Rating: 5, Text: long}, {Rating: 4, Text: "ok"}, {Rating: 1, Text: "skip"}},
	}, "cafe", "glebe")

	assert.Contains(t, ctx, "Business Type: cafe in glebe")
	assert.Contains(t, ctx, "- Rating: 4.4/5.0 (812 reviews)")
	assert.Contains(t, ctx, "- Price Level: $")
	assert.Contains(t, ctx, strings.Repeat("a", 150)+"...")
	assert.NotContains(t, ctx, "skip")
}

func TestWithWriteUpRate(t *testing.T) {
	s := NewPlacesSource(nil, nil, "", 0)
	assert.InDelta(t, float64(defaultWriteUpRate), float64(s.limiter.Limit()), 1e-9)

	s = NewPlacesSource(nil, nil, "", 0, WithWriteUpRate(2))
	assert.InDelta(t, 2.0, float64(s.limiter.Limit()), 1e-9)
	assert.Equal(t, 2, s.limiter.Burst())

	s = NewPlacesSource(nil, nil, "", 0, WithWriteUpRate(0))
	assert.Equal(t, rate.Inf, s.limiter.Limit())
}
