// Package explain produces the natural-language answer for a resolved
// forecast. The deterministic templates are the source of truth; the
// optional polisher collaborator only rephrases, and its output is rejected
// whenever it stops tracing back to the forecast figures.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weatherwise/district-forecast/internal/domain"
	"github.com/weatherwise/district-forecast/internal/observability"
)

// Rainfall below this many millimetres on the headline day is insufficient
// for most crops and triggers the irrigation advisory.
const adequateRainfallMM = 5.0

// Humidity above this percentage means fungal-disease risk for crops and
// discomfort for everyone else.
const highHumidityPct = 70.0

// Composer selects a role template and fills it from the normalized data.
type Composer struct {
	polisher domain.Polisher
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Composer. Pass a nil polisher to always use the
// deterministic templates.
func New(polisher domain.Polisher, logger *slog.Logger, metrics *observability.Metrics) *Composer {
	return &Composer{polisher: polisher, logger: logger, metrics: metrics}
}

// Compose builds the explanation for a forecast. The first day anchors the
// text (the headline day). Composition is deterministic for identical
// inputs; the polisher, when configured and trustworthy, only replaces the
// phrasing.
func (c *Composer) Compose(ctx context.Context, forecast domain.Forecast, role domain.Role) domain.Explanation {
	day := forecast.Days[0]

	var text string
	if role == domain.RoleFarmer {
		text = farmerText(forecast.District.Name, day)
	} else {
		// Unknown defaults to the citizen template: umbrella advice is
		// safe for everyone, irrigation advice is not.
		text = citizenText(forecast.District.Name, day)
	}

	expl := domain.Explanation{
		Role:         role,
		District:     forecast.District.Name,
		HeadlineDate: day.Date,
		Text:         text,
	}

	if c.polisher == nil {
		return expl
	}

	polished, err := c.polisher.Polish(ctx, forecast, role, text)
	if err != nil {
		c.logger.Warn("polisher failed, keeping deterministic text",
			"district", forecast.District.Name, "error", err)
		c.metrics.PolishFallbacks.Inc()
		return expl
	}
	if !tracesToForecast(polished, forecast.District.Name, day) {
		c.logger.Warn("polisher output does not trace to forecast figures, keeping deterministic text",
			"district", forecast.District.Name)
		c.metrics.PolishFallbacks.Inc()
		return expl
	}

	expl.Text = strings.TrimSpace(polished)
	expl.Polished = true
	return expl
}

func farmerText(district string, day domain.DayForecast) string {
	rain := day.Rain.Total.Value
	tempMax := day.Temperature.Max.Value
	humidity := day.Humidity.Headline().Value

	var advice string
	if rain < adequateRainfallMM {
		advice = "Rainfall is insufficient for most crops; consider irrigation"
	} else {
		advice = "Rainfall is adequate; monitor fields for drainage"
	}

	text := fmt.Sprintf("For farmers near %s: %.1fmm rain expected on %s. %s. Max temperature %.1f°C, humidity %.0f%%.",
		district, rain, day.Date.Format("Jan 2"), advice, tempMax, humidity)

	if humidity > highHumidityPct {
		text += " High humidity raises fungal disease risk; inspect crops closely."
	}
	return text
}

func citizenText(district string, day domain.DayForecast) string {
	rain := day.Rain.Total.Value
	tempMax := day.Temperature.Max.Value
	humidity := day.Humidity.Headline().Value

	var advice string
	if rain > 0 {
		advice = fmt.Sprintf("Carry an umbrella (about %.0f%% chance of rain)", day.RainProbability()*100)
	} else {
		advice = "No rain expected; a good day to be outdoors"
	}

	comfort := "comfortable"
	if humidity > highHumidityPct {
		comfort = "humid and uncomfortable"
	}

	return fmt.Sprintf("Forecast for %s on %s: %.1fmm rain, max temperature %.1f°C, humidity %.0f%% (%s). %s.",
		district, day.Date.Format("Jan 2"), rain, tempMax, humidity, comfort, advice)
}

// tracesToForecast accepts polished text only when it still names the
// district and quotes the headline rainfall figure. Figures in the final
// text must come from the forecast, never from the language model.
func tracesToForecast(text, district string, day domain.DayForecast) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !strings.Contains(strings.ToLower(text), strings.ToLower(district)) {
		return false
	}
	rain := day.Rain.Total.Value
	return strings.Contains(text, fmt.Sprintf("%.1f", rain)) ||
		strings.Contains(text, fmt.Sprintf("%g", rain))
}
