package weather

import (
	"fmt"
	"math"
	"time"
)

// dayNames is indexed by time.Weekday (0 = Sunday).
var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// NormalizeForecast converts a provider payload into a WeatherSnapshot.
// The result depends only on its inputs.
func NormalizeForecast(pf ProviderForecast, coords Coordinates, unit Unit, placeName string) (WeatherSnapshot, error) {
	n := len(pf.DailyTime)
	if len(pf.DailyCode) < n {
		n = len(pf.DailyCode)
	}
	if len(pf.DailyTempMax) < n {
		n = len(pf.DailyTempMax)
	}
	if len(pf.DailyTempMin) < n {
		n = len(pf.DailyTempMin)
	}
	if n < ForecastDays {
		return WeatherSnapshot{}, fmt.Errorf("daily forecast has %d aligned entries, want %d", n, ForecastDays)
	}

	loc := time.UTC
	if pf.Timezone != "" {
		if l, err := time.LoadLocation(pf.Timezone); err == nil {
			loc = l
		}
	}

	snapshot := WeatherSnapshot{
		PlaceName:   placeName,
		Coordinates: coords,
		Unit:        unit,
		Temperature: round(pf.CurrentTemperature),
		FeelsLike:   round(pf.ApparentTemp),
		Humidity:    clampPercent(pf.Humidity),
		WindSpeed:   pf.WindSpeed,
		Condition:   Classify(pf.CurrentCode),
	}

	for i := 0; i < ForecastDays; i++ {
		label, err := DayLabel(pf.DailyTime[i], loc)
		if err != nil {
			return WeatherSnapshot{}, err
		}
		snapshot.Forecast[i] = ForecastDay{
			DayLabel: label,
			TempMax:  round(pf.DailyTempMax[i]),
			TempMin:  round(pf.DailyTempMin[i]),
			Kind:     Classify(pf.DailyCode[i]).Kind,
		}
	}

	return snapshot, nil
}

// DayLabel returns the weekday name of a "2006-01-02" date, evaluated at noon
// in loc so that offsets never push it across a date boundary.
func DayLabel(date string, loc *time.Location) (string, error) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return "", fmt.Errorf("invalid daily date %q: %w", date, err)
	}
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
	return dayNames[noon.Weekday()], nil
}

func round(v float64) int {
	return int(math.Round(v))
}

func clampPercent(v float64) int {
	p := round(v)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
