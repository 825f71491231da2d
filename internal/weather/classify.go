package weather

// Classify maps an Open-Meteo (WMO) weather code to a Condition.
// It is total: codes outside the table map to KindUnknown.
func Classify(code int) Condition {
	switch code {
	case 0, 1:
		return Condition{Kind: KindClear, Description: "Clear sky"}
	case 2, 3:
		return Condition{Kind: KindClouds, Description: "Cloudy"}
	case 51, 53, 55, 61, 63, 65:
		return Condition{Kind: KindRain, Description: "Rain"}
	case 80, 81, 82:
		return Condition{Kind: KindRain, Description: "Heavy showers"}
	case 95, 96, 99:
		return Condition{Kind: KindThunderstorm, Description: "Thunderstorm"}
	case 71, 73, 75, 77:
		return Condition{Kind: KindSnow, Description: "Snow"}
	case 45, 48:
		return Condition{Kind: KindMist, Description: "Mist"}
	default:
		return Condition{Kind: KindUnknown, Description: "Uncertain sky"}
	}
}
