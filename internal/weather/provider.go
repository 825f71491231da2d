package weather

import (
	"context"
	"time"
)

// ProviderForecast is a provider's decoded forecast payload before normalization.
// Daily slices are aligned by index.
type ProviderForecast struct {
	Timezone string

	CurrentTemperature float64
	ApparentTemp       float64
	Humidity           float64
	WindSpeed          float64
	CurrentCode        int

	DailyTime    []string
	DailyCode    []int
	DailyTempMax []float64
	DailyTempMin []float64
}

// ForecastSource abstracts the weather provider (e.g. Open-Meteo).
type ForecastSource interface {
	Name() string
	FetchForecast(ctx context.Context, coords Coordinates, unit Unit) (ProviderForecast, error)
}

// NameResolver reverse-geocodes coordinates. It returns "" when no name can be
// resolved and never fails.
type NameResolver interface {
	ResolveName(ctx context.Context, coords Coordinates) string
}

// SearchResolver forward-geocodes free text to a single place.
type SearchResolver interface {
	ResolveQuery(ctx context.Context, text string) (Place, error)
}

// PositionOptions configures a device geolocation request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Locator is the device geolocation capability: a one-shot position request.
type Locator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Coordinates, error)
}
