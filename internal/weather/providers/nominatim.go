package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-sync/internal/common"
	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/weather"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves place names and search queries using OpenStreetMap.
// It implements both weather.NameResolver and weather.SearchResolver.
type NominatimGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

// NewNominatimGeocoder creates a geocoder against the public Nominatim API.
func NewNominatimGeocoder(cfg HTTPClientConfig) *NominatimGeocoder {
	return NewNominatimGeocoderWithURL(cfg, nominatimBaseURL)
}

// NewNominatimGeocoderWithURL creates a geocoder against a custom Nominatim endpoint.
func NewNominatimGeocoderWithURL(cfg HTTPClientConfig, baseURL string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: cfg,
		circuit: newCircuit("nominatim"),
		log:     logging.NewLogger("nominatim"),
	}
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City string `json:"city"`
		Town string `json:"town"`
	} `json:"address"`
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ResolveName reverse-geocodes coords. Any failure yields "".
func (g *NominatimGeocoder) ResolveName(ctx context.Context, coords weather.Coordinates) string {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', 6, 64))
	params.Set("zoom", "10")

	var resp nominatimReverse
	if err := getJSON(ctx, g.httpCfg, g.circuit, g.baseURL+"/reverse?"+params.Encode(), &resp); err != nil {
		g.log.WithError(err).Debug("reverse geocode failed")
		return ""
	}

	return common.FirstNonEmpty(resp.Address.City, resp.Address.Town, common.FirstSegment(resp.DisplayName))
}

// ResolveQuery forward-geocodes text to its top match.
func (g *NominatimGeocoder) ResolveQuery(ctx context.Context, text string) (weather.Place, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return weather.Place{}, apperrors.InvalidInput("empty search query")
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", "1")

	var results []nominatimResult
	if err := getJSON(ctx, g.httpCfg, g.circuit, g.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return weather.Place{}, apperrors.Network("place lookup failed", err)
	}
	if len(results) == 0 {
		return weather.Place{}, apperrors.NotFound("place not found").WithDetail("query", query)
	}

	top := results[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return weather.Place{}, apperrors.Network("place lookup failed", fmt.Errorf("parse lat %q: %w", top.Lat, err))
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return weather.Place{}, apperrors.Network("place lookup failed", fmt.Errorf("parse lon %q: %w", top.Lon, err))
	}

	return weather.Place{
		Coordinates: weather.Coordinates{Latitude: lat, Longitude: lon},
		Name:        common.FirstSegment(top.DisplayName),
	}, nil
}
