package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/venue-cli/internal/catalog"
)

// Config holds the full application configuration.
type Config struct {
	Census      ServiceConfig     `yaml:"census" mapstructure:"census"`
	Proximity   ServiceConfig     `yaml:"proximity" mapstructure:"proximity"`
	Competitors CompetitorsConfig `yaml:"competitors" mapstructure:"competitors"`
	Google      GoogleConfig      `yaml:"google" mapstructure:"google"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServiceConfig points at one of the upstream analysis services.
type ServiceConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CompetitorsConfig configures the competitor service. Source selects
// between the HTTP service ("service") and an in-process Google Places
// search ("places").
type CompetitorsConfig struct {
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AnalyzeTimeoutSecs int    `yaml:"analyze_timeout_secs" mapstructure:"analyze_timeout_secs"`
	Source             string `yaml:"source" mapstructure:"source"`
}

// Service returns the base URL and count timeout as a ServiceConfig.
func (c CompetitorsConfig) Service() ServiceConfig {
	return ServiceConfig{BaseURL: c.BaseURL, TimeoutSecs: c.TimeoutSecs}
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings used for competitor write-ups.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`

	// RequestsPerSecond caps write-up calls; zero or less is unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AnalysisConfig holds the fixed query parameters sent to the upstream
// services on every analysis.
type AnalysisConfig struct {
	DefaultBusinessType string  `yaml:"default_business_type" mapstructure:"default_business_type"`
	WalkingRadiusKm     float64 `yaml:"walking_radius_km" mapstructure:"walking_radius_km"`
	DrivingRadiusKm     float64 `yaml:"driving_radius_km" mapstructure:"driving_radius_km"`

	ParkingPlacesType  string  `yaml:"parking_places_type" mapstructure:"parking_places_type"`
	ParkingMaxResults  int     `yaml:"parking_max_results" mapstructure:"parking_max_results"`
	ParkingMinRating   float64 `yaml:"parking_min_rating" mapstructure:"parking_min_rating"`
	ParkingDeepAnalyze bool    `yaml:"parking_deep_analysis" mapstructure:"parking_deep_analysis"`

	CountMaxResults int     `yaml:"count_max_results" mapstructure:"count_max_results"`
	CountMinRating  float64 `yaml:"count_min_rating" mapstructure:"count_min_rating"`

	CompetitorMaxResults  int     `yaml:"competitor_max_results" mapstructure:"competitor_max_results"`
	CompetitorMinRating   float64 `yaml:"competitor_min_rating" mapstructure:"competitor_min_rating"`
	CompetitorDeepAnalyze bool    `yaml:"competitor_deep_analysis" mapstructure:"competitor_deep_analysis"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// HealthCheckSecs is how often serve probes the upstream services.
	// Zero disables the probe.
	HealthCheckSecs int `yaml:"health_check_secs" mapstructure:"health_check_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.health_check_secs", 60)
	v.SetDefault("census.base_url", "http://localhost:8001/api/v1")
	v.SetDefault("census.timeout_secs", 30)
	v.SetDefault("proximity.base_url", "http://localhost:8002/api/v1")
	v.SetDefault("proximity.timeout_secs", 30)
	v.SetDefault("competitors.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("competitors.timeout_secs", 30)
	v.SetDefault("competitors.analyze_timeout_secs", 50)
	v.SetDefault("competitors.source", "service")
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 200)
	v.SetDefault("anthropic.requests_per_second", 5.0)
	v.SetDefault("analysis.default_business_type", "restaurant_cafe")
	v.SetDefault("analysis.walking_radius_km", 1.0)
	v.SetDefault("analysis.driving_radius_km", 5.0)
	v.SetDefault("analysis.parking_places_type", "parking")
	v.SetDefault("analysis.parking_max_results", 20)
	v.SetDefault("analysis.parking_min_rating", 0.0)
	v.SetDefault("analysis.parking_deep_analysis", true)
	v.SetDefault("analysis.count_max_results", 20)
	v.SetDefault("analysis.count_min_rating", 0.0)
	v.SetDefault("analysis.competitor_max_results", 10)
	v.SetDefault("analysis.competitor_min_rating", 3.0)
	v.SetDefault("analysis.competitor_deep_analysis", true)

	// Unprefixed names used by the standalone services' .env files.
	_ = v.BindEnv("google.key", "VENUE_GOOGLE_KEY", "GOOGLE_PLACES_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("anthropic.key", "VENUE_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Radius limits accepted by the census service.
const (
	maxWalkingRadiusKm = 10
	maxDrivingRadiusKm = 50
)

// Validate checks the configuration required by the given mode
// ("analyze" or "serve").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "analyze":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.HealthCheckSecs < 0 {
			errs = append(errs, "server.health_check_secs cannot be negative")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	services := []struct {
		name string
		svc  ServiceConfig
	}{
		{"census", c.Census},
		{"proximity", c.Proximity},
		{"competitors", c.Competitors.Service()},
	}
	for _, s := range services {
		if s.svc.BaseURL == "" {
			errs = append(errs, fmt.Sprintf("%s.base_url is required", s.name))
		}
		if s.svc.TimeoutSecs <= 0 {
			errs = append(errs, fmt.Sprintf("%s.timeout_secs must be > 0", s.name))
		}
	}
	if c.Competitors.AnalyzeTimeoutSecs <= 0 {
		errs = append(errs, "competitors.analyze_timeout_secs must be > 0")
	}

	switch c.Competitors.Source {
	case "service":
	case "places":
		if c.Google.Key == "" {
			errs = append(errs, "google.key is required when competitors.source is places")
		}
	default:
		errs = append(errs, fmt.Sprintf("competitors.source must be service or places (got %q)", c.Competitors.Source))
	}

	a := c.Analysis
	if a.DefaultBusinessType == "" {
		errs = append(errs, "analysis.default_business_type is required")
	} else if _, ok := catalog.Lookup(catalog.Normalize(a.DefaultBusinessType)); !ok {
		errs = append(errs, fmt.Sprintf("analysis.default_business_type %q is not a known business type", a.DefaultBusinessType))
	}
	if a.WalkingRadiusKm <= 0 || a.DrivingRadiusKm <= 0 {
		errs = append(errs, "analysis radii must be > 0")
	} else if a.WalkingRadiusKm > maxWalkingRadiusKm {
		errs = append(errs, fmt.Sprintf("analysis.walking_radius_km must be <= %d", maxWalkingRadiusKm))
	} else if a.DrivingRadiusKm > maxDrivingRadiusKm {
		errs = append(errs, fmt.Sprintf("analysis.driving_radius_km must be <= %d", maxDrivingRadiusKm))
	} else if a.WalkingRadiusKm > a.DrivingRadiusKm {
		errs = append(errs, "analysis.walking_radius_km cannot be larger than analysis.driving_radius_km")
	}
	if a.CompetitorMaxResults < 1 || a.CompetitorMaxResults > 20 {
		errs = append(errs, "analysis.competitor_max_results must be between 1 and 20")
	}
	for name, r := range map[string]float64{
		"parking_min_rating":    a.ParkingMinRating,
		"count_min_rating":      a.CountMinRating,
		"competitor_min_rating": a.CompetitorMinRating,
	} {
		if r < 0 || r > 5 {
			errs = append(errs, fmt.Sprintf("analysis.%s must be between 0 and 5", name))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
