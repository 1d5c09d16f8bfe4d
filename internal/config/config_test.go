package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 60, cfg.Server.HealthCheckSecs)
	assert.Equal(t, "http://localhost:8001/api/v1", cfg.Census.BaseURL)
	assert.Equal(t, 30, cfg.Census.TimeoutSecs)
	assert.Equal(t, "http://localhost:8002/api/v1", cfg.Proximity.BaseURL)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Competitors.BaseURL)
	assert.Equal(t, 50, cfg.Competitors.AnalyzeTimeoutSecs)
	assert.Equal(t, "service", cfg.Competitors.Source)
	assert.Equal(t, "restaurant_cafe", cfg.Analysis.DefaultBusinessType)
	assert.InDelta(t, 1.0, cfg.Analysis.WalkingRadiusKm, 0.001)
	assert.InDelta(t, 5.0, cfg.Analysis.DrivingRadiusKm, 0.001)
	assert.Equal(t, "parking", cfg.Analysis.ParkingPlacesType)
	assert.Equal(t, 10, cfg.Analysis.CompetitorMaxResults)
	assert.InDelta(t, 3.0, cfg.Analysis.CompetitorMinRating, 0.001)
	assert.True(t, cfg.Analysis.CompetitorDeepAnalyze)
	assert.Equal(t, int64(200), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 5.0, cfg.Anthropic.RequestsPerSecond, 1e-9)

	assert.NoError(t, cfg.Validate("analyze"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
census:
  base_url: http://census.internal/api/v1
analysis:
  competitor_max_results: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://census.internal/api/v1", cfg.Census.BaseURL)
	assert.Equal(t, 5, cfg.Analysis.CompetitorMaxResults)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Census.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
competitors:
  source: places
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("VENUE_COMPETITORS_SOURCE", "service")
	t.Setenv("VENUE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "service", cfg.Competitors.Source)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VENUE_SERVER_PORT", "3000")
	t.Setenv("VENUE_ANALYSIS_WALKING_RADIUS_KM", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 0.5, cfg.Analysis.WalkingRadiusKm, 0.001)
}

func TestLoadAPIKeysFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VENUE_GOOGLE_KEY", "g-key")
	t.Setenv("VENUE_ANTHROPIC_KEY", "a-key")
	t.Setenv("VENUE_COMPETITORS_SOURCE", "places")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Google.Key)
	assert.Equal(t, "a-key", cfg.Anthropic.Key)
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestLoadAPIKeysFromServiceEnvNames(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VENUE_GOOGLE_KEY", "")
	t.Setenv("VENUE_ANTHROPIC_KEY", "")
	t.Setenv("GOOGLE_PLACES_API_KEY", "places-key")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "places-key", cfg.Google.Key)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unterminated"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Census = ServiceConfig{BaseURL: "http://localhost:8001/api/v1", TimeoutSecs: 30}
	cfg.Proximity = ServiceConfig{BaseURL: "http://localhost:8002/api/v1", TimeoutSecs: 30}
	cfg.Competitors = CompetitorsConfig{
		BaseURL:            "http://localhost:8000/api/v1",
		TimeoutSecs:        30,
		AnalyzeTimeoutSecs: 50,
		Source:             "service",
	}
	cfg.Analysis = AnalysisConfig{
		DefaultBusinessType:  "restaurant_cafe",
		WalkingRadiusKm:      1,
		DrivingRadiusKm:      5,
		CompetitorMaxResults: 10,
		CompetitorMinRating:  3,
	}
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateAnalyze_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("analyze"))
}

func TestValidateAnalyze_MissingServices(t *testing.T) {
	cfg := validDefaults()
	cfg.Census.BaseURL = ""
	cfg.Proximity.TimeoutSecs = 0

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "census.base_url is required")
	assert.Contains(t, err.Error(), "proximity.timeout_secs must be > 0")
}

func TestValidate_WalkingLargerThanDriving(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.WalkingRadiusKm = 6

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "walking_radius_km cannot be larger")
}

func TestValidate_RadiusLimits(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.WalkingRadiusKm = 10
	cfg.Analysis.DrivingRadiusKm = 50
	assert.NoError(t, cfg.Validate("analyze"))

	cfg.Analysis.WalkingRadiusKm = 12
	cfg.Analysis.DrivingRadiusKm = 20
	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.walking_radius_km must be <= 10")

	cfg.Analysis.WalkingRadiusKm = 1
	cfg.Analysis.DrivingRadiusKm = 60
	err = cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.driving_radius_km must be <= 50")
}

func TestValidate_UnknownDefaultBusinessType(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.DefaultBusinessType = "bowling_alley"

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"bowling_alley" is not a known business type`)

	cfg.Analysis.DefaultBusinessType = "Studio Gym"
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestValidate_PlacesSourceRequiresKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Competitors.Source = "places"

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "google.key is required")

	cfg.Google.Key = "test-key"
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestValidate_UnknownSource(t *testing.T) {
	cfg := validDefaults()
	cfg.Competitors.Source = "scrape"

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `competitors.source must be service or places (got "scrape")`)
}

func TestValidate_RatingBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.CompetitorMinRating = 5.5

	err := cfg.Validate("analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.competitor_min_rating must be between 0 and 5")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_NegativeHealthCheck(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.HealthCheckSecs = -1

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.health_check_secs cannot be negative")
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
