// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pkordes/tripshare/internal/geocode"
)

// Config holds every setting for the API server and tripctl.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// AutoMigrate applies pending goose migrations at server start.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// SearchTimezone is the IANA zone whose calendar day bounds a search.
	// "Local" uses the process zone.
	SearchTimezone string `env:"SEARCH_TIMEZONE" envDefault:"Local"`

	Maps

	loc   *time.Location
	level slog.Level
}

// Maps holds the map provider settings. tripctl loads it on its own so the
// map commands run without a database.
type Maps struct {
	// MapProvider selects the directions backend: gomaps or goong.
	MapProvider     string        `env:"MAP_PROVIDER" envDefault:"gomaps"`
	GoongAPIKey     string        `env:"GOONG_API_KEY"`
	GoMapsAPIKey    string        `env:"GOMAPS_API_KEY"`
	GoongBaseURL    string        `env:"GOONG_BASE_URL" envDefault:"https://rsapi.goong.io"`
	GoMapsBaseURL   string        `env:"GOMAPS_BASE_URL" envDefault:"https://maps.gomaps.pro/maps/api"`
	GeocoderTimeout time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"8s"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL %q: must be debug, info, warn or error", cfg.LogLevel)
	}

	if err := cfg.Maps.validate(); err != nil {
		return Config{}, err
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config: MAX_BODY_BYTES must be positive")
	}

	cfg.loc, err = time.LoadLocation(cfg.SearchTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("config: SEARCH_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// LoadMaps reads only the map provider settings.
func LoadMaps() (Maps, error) {
	m, err := env.ParseAs[Maps]()
	if err != nil {
		return Maps{}, fmt.Errorf("config: %w", err)
	}
	if err := m.validate(); err != nil {
		return Maps{}, err
	}
	return m, nil
}

func (m Maps) validate() error {
	switch geocode.Provider(m.MapProvider) {
	case geocode.ProviderGoMaps, geocode.ProviderGoong:
	default:
		return fmt.Errorf("config: MAP_PROVIDER %q: must be gomaps or goong", m.MapProvider)
	}
	if m.GeocoderTimeout <= 0 {
		return fmt.Errorf("config: GEOCODER_TIMEOUT must be positive")
	}
	return nil
}

// SearchLocation is the resolved SEARCH_TIMEZONE.
func (c Config) SearchLocation() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// SlogLevel is the parsed LOG_LEVEL.
func (c Config) SlogLevel() slog.Level { return c.level }

// Geocode returns the map gateway settings.
func (m Maps) Geocode() geocode.Config {
	return geocode.Config{
		Provider:      geocode.Provider(m.MapProvider),
		GoongAPIKey:   m.GoongAPIKey,
		GoMapsAPIKey:  m.GoMapsAPIKey,
		GoongBaseURL:  m.GoongBaseURL,
		GoMapsBaseURL: m.GoMapsBaseURL,
		Timeout:       m.GeocoderTimeout,
	}
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
