package weather

import "fmt"

// Forecast holds a daily forecast for one location.
type Forecast struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Days      []Day
}

// Day is one day of forecast data.
type Day struct {
	Date         string
	Code         int
	Description  string
	TempMax      float64
	TempMin      float64
	PrecipChance int
}

// Summary renders the day as a one-line digest.
func (d Day) Summary() string {
	return fmt.Sprintf("%s: %s, %.0f–%.0f°C, %d%% chance of precipitation",
		d.Date, d.Description, d.TempMin, d.TempMax, d.PrecipChance)
}

// forecastResponse is the upstream forecast payload.
type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time          []string  `json:"time"`
		WeatherCode   []int     `json:"weather_code"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		PrecipMaxProb []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// describeCode maps WMO weather codes to short descriptions.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "mixed conditions"
	}
}
