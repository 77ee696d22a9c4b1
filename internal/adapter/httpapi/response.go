package httpapi

import (
	"github.com/weatherwise/district-forecast/internal/domain"
)

// The response schema is explicit and versioned with the route so consumers
// never need defensive null-checking: every day carries the three mandatory
// parameter blocks, optional blocks are omitted when absent.

type queryResponse struct {
	Forecast    forecastDTO `json:"forecast"`
	Explanation string      `json:"explanation"`
	Warnings    []string    `json:"warnings"`
}

type forecastDTO struct {
	District string      `json:"district"`
	Location locationDTO `json:"location"`
	Days     []dayDTO    `json:"days"`
}

type locationDTO struct {
	Name             string  `json:"area_name"`
	Lat              float64 `json:"latitude"`
	Lon              float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Source           string  `json:"source"`
}

type dayDTO struct {
	Date       string        `json:"date"`
	Parameters parametersDTO `json:"parameters"`
}

type parametersDTO struct {
	Temperature   rangeDTO  `json:"temperature"`
	Precipitation precipDTO `json:"precipitation"`
	Humidity      valueDTO  `json:"humidity"`
	SoilMoisture  *rangeDTO `json:"soil_moisture,omitempty"`
	Wind          *rangeDTO `json:"wind,omitempty"`
	WindDirection *valueDTO `json:"wind_direction,omitempty"`
	Clouds        *valueDTO `json:"clouds,omitempty"`
}

type rangeDTO struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

type precipDTO struct {
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Probability float64 `json:"probability"`
}

type valueDTO struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func toQueryResponse(result domain.Result) queryResponse {
	days := make([]dayDTO, 0, len(result.Forecast.Days))
	for _, day := range result.Forecast.Days {
		days = append(days, toDayDTO(day))
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Message)
	}

	return queryResponse{
		Forecast: forecastDTO{
			District: result.Forecast.District.Name,
			Location: locationDTO{
				Name:             result.Location.Name,
				Lat:              result.Location.Lat,
				Lon:              result.Location.Lon,
				FormattedAddress: result.Location.FormattedAddress,
				Source:           result.Location.Source,
			},
			Days: days,
		},
		Explanation: result.Explanation.Text,
		Warnings:    warnings,
	}
}

func toDayDTO(day domain.DayForecast) dayDTO {
	dto := dayDTO{
		Date: day.Date.Format("2006-01-02"),
		Parameters: parametersDTO{
			Temperature: rangeDTO{
				Min:  day.Temperature.Min.Value,
				Max:  day.Temperature.Max.Value,
				Unit: "celsius",
			},
			Precipitation: precipDTO{
				Value:       day.Rain.Total.Value,
				Unit:        day.Rain.Unit,
				Probability: day.RainProbability(),
			},
			Humidity: valueDTO{
				Value: day.Humidity.Headline().Value,
				Unit:  "percent",
			},
		},
	}

	if day.SoilMoisture.Min.Valid && day.SoilMoisture.Max.Valid {
		dto.Parameters.SoilMoisture = &rangeDTO{
			Min:  day.SoilMoisture.Min.Value,
			Max:  day.SoilMoisture.Max.Value,
			Unit: "percent",
		}
	}
	if day.WindSpeed.Min.Valid && day.WindSpeed.Max.Valid {
		dto.Parameters.Wind = &rangeDTO{
			Min:  day.WindSpeed.Min.Value,
			Max:  day.WindSpeed.Max.Value,
			Unit: "km/h",
		}
	}
	if dir := day.WindDirection.Headline(); dir.Valid {
		dto.Parameters.WindDirection = &valueDTO{Value: dir.Value, Unit: "degrees"}
	}
	if day.Clouds.Medium.Valid {
		dto.Parameters.Clouds = &valueDTO{Value: day.Clouds.Medium.Value, Unit: "fraction"}
	}

	return dto
}
