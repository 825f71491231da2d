package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-sync/internal/weather"
)

const openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoCurrentFields = "temperature_2m,apparent_temperature,precipitation,weathercode,relative_humidity_2m,wind_speed_10m"
	openMeteoHourlyFields  = "temperature_2m,weathercode,precipitation_probability"
	openMeteoDailyFields   = "weathercode,temperature_2m_max,temperature_2m_min"
)

// OpenMeteoProvider implements weather.ForecastSource for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider against the public Open-Meteo API.
func NewOpenMeteoProvider(cfg HTTPClientConfig) *OpenMeteoProvider {
	return NewOpenMeteoProviderWithURL(cfg, openMeteoForecastURL)
}

// NewOpenMeteoProviderWithURL creates a provider against a custom forecast endpoint.
func NewOpenMeteoProviderWithURL(cfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuit("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Temperature   float64 `json:"temperature_2m"`
		ApparentTemp  float64 `json:"apparent_temperature"`
		Humidity      float64 `json:"relative_humidity_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WeatherCode   int     `json:"weathercode"`
		Precipitation float64 `json:"precipitation"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// FetchForecast requests current, hourly and 7-day daily fields for coords.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coords weather.Coordinates, unit weather.Unit) (weather.ProviderForecast, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("current", openMeteoCurrentFields)
	values.Set("hourly", openMeteoHourlyFields)
	values.Set("daily", openMeteoDailyFields)
	values.Set("timezone", "auto")
	values.Set("forecast_days", strconv.Itoa(weather.ForecastDays))
	values.Set("temperature_unit", unit.Token())
	values.Set("wind_speed_unit", "ms")
	values.Set("precipitation_unit", "mm")

	var payload openMeteoResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return weather.ProviderForecast{}, fmt.Errorf("openmeteo: %w", err)
	}

	return weather.ProviderForecast{
		Timezone:           payload.Timezone,
		CurrentTemperature: payload.Current.Temperature,
		ApparentTemp:       payload.Current.ApparentTemp,
		Humidity:           payload.Current.Humidity,
		WindSpeed:          payload.Current.WindSpeed,
		CurrentCode:        payload.Current.WeatherCode,
		DailyTime:          payload.Daily.Time,
		DailyCode:          payload.Daily.WeatherCode,
		DailyTempMax:       payload.Daily.TempMax,
		DailyTempMin:       payload.Daily.TempMin,
	}, nil
}
