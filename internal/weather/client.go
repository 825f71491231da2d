package weather

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/logging"
)

// ForecastClient fetches a forecast and turns it into a WeatherSnapshot.
// It never mutates shared state; callers install the returned value.
type ForecastClient struct {
	source ForecastSource
	names  NameResolver
	log    *logrus.Entry
}

// NewForecastClient creates a ForecastClient. names may be nil, in which case
// snapshots without a known name are labelled with their coordinates.
func NewForecastClient(source ForecastSource, names NameResolver) *ForecastClient {
	return &ForecastClient{
		source: source,
		names:  names,
		log:    logging.NewLogger("forecast"),
	}
}

// FetchSnapshot fetches weather for coords in unit. An empty knownName is
// resolved through the NameResolver, falling back to the coordinate label.
func (c *ForecastClient) FetchSnapshot(ctx context.Context, coords Coordinates, unit Unit, knownName string) (WeatherSnapshot, error) {
	log := c.log.WithFields(logrus.Fields{
		"provider": c.source.Name(),
		"lat":      coords.Latitude,
		"lon":      coords.Longitude,
		"unit":     unit,
	})

	pf, err := c.source.FetchForecast(ctx, coords, unit)
	if err != nil {
		log.WithError(err).Warn("forecast request failed")
		return WeatherSnapshot{}, apperrors.Network("forecast unavailable", err)
	}

	snapshot, err := NormalizeForecast(pf, coords, unit, "")
	if err != nil {
		log.WithError(err).Warn("forecast payload rejected")
		return WeatherSnapshot{}, apperrors.Network("forecast unavailable", err)
	}

	name := strings.TrimSpace(knownName)
	if name == "" && c.names != nil {
		name = c.names.ResolveName(ctx, coords)
	}
	if name == "" {
		name = coords.Label()
	}
	snapshot.PlaceName = name

	log.WithField("place", name).Debug("forecast normalized")
	return snapshot, nil
}
