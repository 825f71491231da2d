package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// Fallback location used when device geolocation is unavailable, denied or slow.
	FallbackLat  float64 `validate:"latitude"`
	FallbackLon  float64 `validate:"longitude"`
	FallbackName string  `validate:"required"`

	GeoTimeout      time.Duration `validate:"gt=0"`
	RefreshInterval time.Duration `validate:"gt=0"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	DefaultUnit weather.Unit `validate:"oneof=C F"`

	Locator  string `validate:"oneof=ipapi none"`
	Geocoder string `validate:"oneof=nominatim google"`

	GeocoderAPIKey     string `validate:"required_if=Geocoder google"`
	GeocoderLanguage   string `validate:"required"`
	NominatimUserAgent string `validate:"required"`

	ProviderMaxRetries int `validate:"gte=0,lte=5"`

	LogLevel  string
	LogFormat string `validate:"omitempty,oneof=json text"`
}

// Fallback returns the configured fallback coordinates.
func (c *AppConfig) Fallback() weather.Coordinates {
	return weather.Coordinates{Latitude: c.FallbackLat, Longitude: c.FallbackLon}
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.NewLogger("config").Debugf("no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.FallbackLat, err = getenvFloat("FALLBACK_LAT", 41.9028); err != nil {
		return nil, err
	}
	if cfg.FallbackLon, err = getenvFloat("FALLBACK_LON", 12.4964); err != nil {
		return nil, err
	}
	cfg.FallbackName = getenvDefault("FALLBACK_NAME", "Roma")

	if cfg.GeoTimeout, err = getenvDuration("GEO_TIMEOUT", "4s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	unit, err := weather.ParseUnit(getenvDefault("DEFAULT_UNIT", "C"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNIT: %w", err)
	}
	cfg.DefaultUnit = unit

	cfg.Locator = strings.ToLower(getenvDefault("LOCATOR", "ipapi"))
	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", "nominatim"))
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.GeocoderLanguage = getenvDefault("GEOCODER_LANGUAGE", "en")
	cfg.NominatimUserAgent = getenvDefault("NOMINATIM_USER_AGENT", "weather-sync/1.0")
	cfg.ProviderMaxRetries = getenvInt("PROVIDER_MAX_RETRIES", 0)

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = strings.ToLower(os.Getenv("LOG_FORMAT"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
