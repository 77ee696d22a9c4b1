package domain

import "time"

// District identifies one of the 64 districts of Bangladesh as known to the
// gazetteer. Loaded once at startup and read-only afterwards.
type District struct {
	// Name is the canonical English name, e.g. "Chattogram".
	Name     string   `json:"name"`
	Division string   `json:"division,omitempty"`
	// Aliases are accepted spellings: Bengali script, legacy Latin names
	// ("Chittagong"), and common misspellings.
	Aliases []string `json:"aliases,omitempty"`
	// URLNames are the path segments the upstream table pages accept, tried
	// in order by the retriever.
	URLNames []string `json:"url_names"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
}

// Sample is a single numeric cell from the forecast table. Valid is false
// when the cell was missing or non-numeric; a zero value with Valid true is a
// genuine zero reading.
type Sample struct {
	Value float64 `json:"value"`
	Valid bool    `json:"-"`
}

// Triple holds the min/avg/max readings of one parameter for one day.
type Triple struct {
	Min Sample `json:"min"`
	Avg Sample `json:"avg"`
	Max Sample `json:"max"`
}

// Headline picks the single figure used in user-facing text: the average
// when present, otherwise the midpoint of min and max.
func (t Triple) Headline() Sample {
	if t.Avg.Valid {
		return t.Avg
	}
	if t.Min.Valid && t.Max.Valid {
		return Sample{Value: (t.Min.Value + t.Max.Value) / 2, Valid: true}
	}
	return Sample{}
}

// Rainfall is the per-day precipitation total after reconciling the
// duplicated source rows.
type Rainfall struct {
	Total Sample `json:"total"`
	Unit  string `json:"unit"`
}

// CloudCover holds high/medium/low cloud fraction readings.
type CloudCover struct {
	High   Sample `json:"high"`
	Medium Sample `json:"medium"`
	Low    Sample `json:"low"`
}

// DayForecast is one forecast day's normalized parameter set. Temperature,
// rainfall, and humidity are guaranteed present (see HasMandatory); the rest
// may be absent depending on what the upstream table carried.
type DayForecast struct {
	Date          time.Time  `json:"date"`
	Temperature   Triple     `json:"temperature"`
	Humidity      Triple     `json:"humidity"`
	SoilMoisture  Triple     `json:"soil_moisture"`
	Rain          Rainfall   `json:"rainfall"`
	WindSpeed     Triple     `json:"wind"`
	WindDirection Triple     `json:"wind_direction"`
	Clouds        CloudCover `json:"clouds"`
}

// HasMandatory reports whether the day carries the three parameters every
// resolved forecast day must have.
func (d DayForecast) HasMandatory() bool {
	return d.Temperature.Min.Valid && d.Temperature.Max.Valid &&
		d.Rain.Total.Valid &&
		d.Humidity.Headline().Valid
}

// RainProbability derives a rough chance-of-rain figure from the daily total.
// The upstream table publishes no probability; this mirrors the heuristic the
// presentation layer has always used (total/20, capped at 1).
func (d DayForecast) RainProbability() float64 {
	if !d.Rain.Total.Valid || d.Rain.Total.Value <= 0 {
		return 0
	}
	p := d.Rain.Total.Value / 20.0
	if p > 1 {
		return 1
	}
	return p
}

// Forecast is the normalized multi-day forecast for one district. Owned by a
// single resolution call; never cached or mutated after construction.
type Forecast struct {
	District District      `json:"district"`
	Days     []DayForecast `json:"days"`
}

// Role is the inferred asker role that selects the explanation template.
type Role string

const (
	RoleFarmer  Role = "farmer"
	RoleCitizen Role = "citizen"
	RoleUnknown Role = "unknown"
)

// ForecastQuery is the structured form of a free-text query. District is nil
// until (and unless) a district span resolved.
type ForecastQuery struct {
	District *District
	Horizon  int
	Role     Role
	Warnings []Warning
}

// Explanation is the natural-language answer derived from a Forecast.
// Regenerated per query, never persisted.
type Explanation struct {
	Role         Role      `json:"role"`
	District     string    `json:"district"`
	HeadlineDate time.Time `json:"headline_date"`
	Text         string    `json:"text"`
	// Polished is true when the optional language-generation collaborator
	// produced the text; false means the deterministic template.
	Polished bool `json:"polished"`
}

// Result is the complete outcome of one resolution call.
type Result struct {
	Query       ForecastQuery
	Forecast    Forecast
	Location    Location
	Explanation Explanation
	Warnings    []Warning
}
