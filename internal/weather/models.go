package weather

import (
	"fmt"
	"strings"
)

// ForecastDays is the fixed forecast horizon.
const ForecastDays = 7

// Coordinates is a WGS84 position. It is a value type and is replaced wholesale.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Label formats the coordinates as "lat, lon" with two decimals.
func (c Coordinates) Label() string {
	return fmt.Sprintf("%.2f, %.2f", c.Latitude, c.Longitude)
}

// Unit is the temperature unit requested from the provider.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// Token returns the provider-specific temperature unit token.
func (u Unit) Token() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}

// ParseUnit accepts "C", "F", "celsius" or "fahrenheit" in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// ConditionKind is the closed semantic category of a provider weather code.
type ConditionKind string

const (
	KindClear        ConditionKind = "clear"
	KindClouds       ConditionKind = "clouds"
	KindRain         ConditionKind = "rain"
	KindDrizzle      ConditionKind = "drizzle"
	KindThunderstorm ConditionKind = "thunderstorm"
	KindSnow         ConditionKind = "snow"
	KindMist         ConditionKind = "mist"
	KindFog          ConditionKind = "fog"
	KindUnknown      ConditionKind = "unknown"
)

// Condition is a classified weather condition with a short description.
type Condition struct {
	Kind        ConditionKind `json:"kind"`
	Description string        `json:"description"`
}

// ForecastDay is one day of the daily forecast. TempMax >= TempMin is not
// guaranteed; values are passed through as the provider reports them.
type ForecastDay struct {
	DayLabel string        `json:"day"`
	TempMax  int           `json:"tempMax"`
	TempMin  int           `json:"tempMin"`
	Kind     ConditionKind `json:"kind"`
}

// WeatherSnapshot is the complete, immutable weather result for one location.
// Forecast[0] is the provider's "today".
type WeatherSnapshot struct {
	PlaceName   string                    `json:"placeName"`
	Coordinates Coordinates               `json:"coordinates"`
	Unit        Unit                      `json:"unit"`
	Temperature int                       `json:"temperature"`
	FeelsLike   int                       `json:"feelsLike"`
	Humidity    int                       `json:"humidity"`
	WindSpeed   float64                   `json:"windSpeed"`
	Condition   Condition                 `json:"condition"`
	Forecast    [ForecastDays]ForecastDay `json:"forecast"`
}

// Place is a geocoded location.
type Place struct {
	Coordinates Coordinates `json:"coordinates"`
	Name        string      `json:"name"`
}
