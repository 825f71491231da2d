package providers

import (
	"context"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-sync/internal/common"
	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/weather"
)

// geocoder keeps its key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder resolves names and queries through the Google Geocoding API.
// It implements both weather.NameResolver and weather.SearchResolver.
type GoogleGeocoder struct {
	forward func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
	log     *logrus.Entry
}

// NewGoogleGeocoder configures the geocoder package with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	googleKeyMu.Lock()
	geocoder.ApiKey = apiKey
	googleKeyMu.Unlock()

	return &GoogleGeocoder{
		forward: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
		log:     logging.NewLogger("google-geocoder"),
	}
}

// ResolveName returns the city, county or first formatted-address segment of
// the best reverse match, or "" on any failure.
func (g *GoogleGeocoder) ResolveName(ctx context.Context, coords weather.Coordinates) string {
	var addresses []geocoder.Address
	err := runBlocking(ctx, func() error {
		var err error
		addresses, err = g.reverse(geocoder.Location{Latitude: coords.Latitude, Longitude: coords.Longitude})
		return err
	})
	if err != nil {
		g.log.WithError(err).Debug("reverse geocode failed")
		return ""
	}
	if len(addresses) == 0 {
		return ""
	}

	top := addresses[0]
	return common.FirstNonEmpty(top.City, top.County, common.FirstSegment(top.FormattedAddress))
}

// ResolveQuery forward-geocodes text. The Google API offers no display name
// for a bare query, so the trimmed query's first segment is used.
func (g *GoogleGeocoder) ResolveQuery(ctx context.Context, text string) (weather.Place, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return weather.Place{}, apperrors.InvalidInput("empty search query")
	}

	var loc geocoder.Location
	err := runBlocking(ctx, func() error {
		var err error
		loc, err = g.forward(geocoder.Address{City: query})
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return weather.Place{}, apperrors.NotFound("place not found").WithDetail("query", query)
		}
		return weather.Place{}, apperrors.Network("place lookup failed", err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return weather.Place{}, apperrors.NotFound("place not found").WithDetail("query", query)
	}

	return weather.Place{
		Coordinates: weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude},
		Name:        common.FirstSegment(query),
	}, nil
}

// runBlocking runs fn, returning early with ctx.Err() if ctx ends first.
// fn keeps running in the background in that case.
func runBlocking(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
