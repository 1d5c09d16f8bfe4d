package proximity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/business-proximity/analyze", r.URL.Path)

		var body AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "parking", body.PlacesType)
		assert.Equal(t, "centretown ottawa", body.Location)
		assert.Equal(t, 20, body.MaxResults)
		assert.True(t, body.EnableDeepAnalysis)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query_info": {"location": "centretown ottawa", "place_types": ["parking"], "max_results": 20},
			"results": {"parking": [
				{"name": "Lot A", "rating": 4.1, "place_id": "a"},
				{"name": "Lot B", "rating": 3.5, "place_id": "b"}
			]},
			"deep_analysis": {"average_rating": 3.8, "total_places": 2}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/api/v1"))
	resp, err := client.Analyze(context.Background(), AnalysisRequest{
		PlacesType:         "parking",
		Location:           "centretown ottawa",
		MaxResults:         20,
		EnableDeepAnalysis: true,
	})

	require.NoError(t, err)
	require.Len(t, resp.Parking(), 2)
	assert.Equal(t, "Lot A", resp.Parking()[0].Name)
	require.NotNil(t, resp.DeepAnalysis)
	assert.InDelta(t, 3.8, resp.DeepAnalysis.AverageRating, 0.001)
}

func TestAnalyze_NoParkingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": {}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), AnalysisRequest{PlacesType: "parking"})
	require.NoError(t, err)
	assert.Empty(t, resp.Parking())
	assert.Nil(t, resp.DeepAnalysis)
}

func TestAnalyze_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "Places quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), AnalysisRequest{PlacesType: "parking"})
	require.Error(t, err)
	assert.Equal(t, "Parking API Error: Places quota exceeded", err.Error())
}

func TestHealth_StripsAPIPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL+"/api/v1"), WithHTTPClient(srv.Client())).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8002/health", healthURL("http://localhost:8002/api/v1"))
	assert.Equal(t, "http://parking.internal/health", healthURL("http://parking.internal"))
}
