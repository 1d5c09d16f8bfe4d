package census

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/census/analyze", r.URL.Path)

		var body AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "350 Sparks St, Ottawa", body.Address)
		assert.InDelta(t, 1.0, body.WalkingRadiusKm, 0.001)
		assert.InDelta(t, 5.0, body.DrivingRadiusKm, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"location": {"latitude": 45.42, "longitude": -75.70},
			"radii": {"walking_km": 1.0, "driving_km": 5.0},
			"walking_radius": {
				"total_population": 12000, "num_areas": 14,
				"avg_population_density": 4200.5, "avg_median_income": 61000,
				"avg_median_dwelling_value": 520000, "total_households": 7000
			},
			"driving_radius": {"total_population": 250000, "num_areas": 300}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/"))
	resp, err := client.Analyze(context.Background(), AnalysisRequest{
		Address:         "350 Sparks St, Ottawa",
		WalkingRadiusKm: 1.0,
		DrivingRadiusKm: 5.0,
	})

	require.NoError(t, err)
	assert.InDelta(t, 45.42, resp.Location.Latitude, 0.001)
	assert.InDelta(t, 61000, resp.WalkingRadius.AvgMedianIncome, 0.001)
	assert.InDelta(t, 520000, resp.WalkingRadius.AvgMedianDwellingValue, 0.001)
	assert.InDelta(t, 4200.5, resp.WalkingRadius.AvgPopulationDensity, 0.001)
	assert.Equal(t, 14, resp.WalkingRadius.NumAreas)
	assert.Equal(t, 300, resp.DrivingRadius.NumAreas)
}

func TestAnalyze_OmitsUnsetCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "latitude")
		assert.NotContains(t, raw, "longitude")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), AnalysisRequest{Address: "Ottawa"})
	require.NoError(t, err)
}

func TestAnalyze_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Could not geocode address"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), AnalysisRequest{Address: "nowhere"})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, "Census API Error: Could not geocode address", err.Error())
}

func TestAnalyze_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := client.Analyze(context.Background(), AnalysisRequest{Address: "Ottawa"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Census API Error: ")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/census/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","census_processor_available":true,"address_validator_available":false}`))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.CensusProcessorAvailable)
	assert.False(t, resp.AddressValidatorAvailable)
}
