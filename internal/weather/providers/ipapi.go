package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/weather"
)

const ipAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPLocator approximates the host's device position from its public IP.
// It implements weather.Locator.
type IPLocator struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewIPLocator creates a locator against the public ip-api.com endpoint.
func NewIPLocator(cfg HTTPClientConfig) *IPLocator {
	return NewIPLocatorWithURL(cfg, ipAPIURL)
}

// NewIPLocatorWithURL creates a locator against a custom lookup URL.
func NewIPLocatorWithURL(cfg HTTPClientConfig, url string) *IPLocator {
	return &IPLocator{
		url:     url,
		httpCfg: cfg,
		circuit: newCircuit("ipapi"),
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition performs one lookup. A lookup the service refuses is
// reported as a permission denial. HighAccuracy has no effect on IP lookups.
func (l *IPLocator) CurrentPosition(ctx context.Context, opts weather.PositionOptions) (weather.Coordinates, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var resp ipAPIResponse
	if err := getJSON(ctx, l.httpCfg, l.circuit, l.url, &resp); err != nil {
		return weather.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	if resp.Status != "success" {
		return weather.Coordinates{}, apperrors.PermissionDenied(errors.New(resp.Message))
	}

	return weather.Coordinates{Latitude: resp.Lat, Longitude: resp.Lon}, nil
}
