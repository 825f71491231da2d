package main

import (
	"net/http"

	"github.com/i474232898/weather-sync/internal/config"
	"github.com/i474232898/weather-sync/internal/geo"
	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/scheduler"
	"github.com/i474232898/weather-sync/internal/weather"
	"github.com/i474232898/weather-sync/internal/weather/providers"
)

// geocoder is both a place-name and a search resolver.
type geocoder interface {
	weather.NameResolver
	weather.SearchResolver
}

// buildEngine wires providers, the geo resolver and the scheduler from cfg.
func buildEngine(cfg *config.AppConfig) *scheduler.Scheduler {
	logging.Configure(cfg.LogLevel, cfg.LogFormat, nil)
	log := logging.NewLogger("main")

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.DefaultHTTPConfig(&http.Client{Timeout: cfg.HTTPTimeout})
	httpCfg.UserAgent = cfg.NominatimUserAgent
	httpCfg.Language = cfg.GeocoderLanguage
	httpCfg.Backoff.MaxRetries = cfg.ProviderMaxRetries

	var geocoder geocoder
	switch cfg.Geocoder {
	case "google":
		geocoder = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	default:
		geocoder = providers.NewNominatimGeocoder(httpCfg)
	}

	var locator weather.Locator
	if cfg.Locator == "ipapi" {
		locator = providers.NewIPLocator(httpCfg)
	}

	log.WithField("geocoder", cfg.Geocoder).WithField("locator", cfg.Locator).Info("engine configured")

	client := weather.NewForecastClient(providers.NewOpenMeteoProvider(httpCfg), geocoder)
	return scheduler.New(client, geocoder, geo.NewResolver(locator, geo.DefaultPositionOptions), scheduler.Options{
		Unit:            cfg.DefaultUnit,
		RefreshInterval: cfg.RefreshInterval,
		GeoTimeout:      cfg.GeoTimeout,
		FetchTimeout:    cfg.FetchTimeout,
	})
}
