// Package bmdtable parses the BMD WRF per-district forecast table into
// normalized per-day records. It is a pure function over raw page bytes: no
// I/O, no clocks beyond the caller-supplied base date.
package bmdtable

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/weatherwise/district-forecast/internal/domain"
)

// ErrNoTable means the page carried no <table> at all, typically an error
// or placeholder page for a wrong district name variant.
var ErrNoTable = errors.New("no forecast table in document")

// ErrNoValidDays means a table was found but not a single day survived
// parsing, which indicates an upstream format change.
var ErrNoValidDays = errors.New("forecast table yielded no valid days")

// rainfallTolerance is the float tolerance for reconciling the duplicated
// rainfall rows, in millimetres.
const rainfallTolerance = 0.01

// numberRe extracts the first numeric literal from a cell, tolerating units
// and annotations around it ("12.4 mm", "(31.0)").
var numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// headerDateLayouts are tried in order against header cells. Cells that
// match none (e.g. "Day 1") fall back to base date + column index + 1.
var headerDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02 Jan 2006",
	"Jan 02, 2006",
}

// metric identifies one parameter row of the table.
type metric int

const (
	metricUnknown metric = iota
	metricTempMin
	metricTempAvg
	metricTempMax
	metricHumidityMin
	metricHumidityAvg
	metricHumidityMax
	metricSoilMin
	metricSoilAvg
	metricSoilMax
	metricRainfall
	metricWindSpeedMin
	metricWindSpeedAvg
	metricWindSpeedMax
	metricWindDirMin
	metricWindDirAvg
	metricWindDirMax
	metricCloudHigh
	metricCloudMedium
	metricCloudLow
)

// Parse converts raw page content into chronological day forecasts.
//
// The table layout: the header row carries one cell per forecast day, each
// body row is one parameter metric identified by keyword-matching its label
// (the labels drift between portal deployments, the keywords do not). The
// rainfall row appears twice in the source and is reconciled per day: equal
// within tolerance → either, differing → first occurrence plus a
// data-quality warning, never an average.
//
// Days missing a mandatory parameter (temperature, rainfall, humidity) or
// with a non-numeric mandatory cell are dropped individually with a warning
// naming the date; the remaining days are returned. The result is truncated
// to horizon entries.
func Parse(raw []byte, horizon int, base time.Time) ([]domain.DayForecast, []domain.Warning, error) {
	grid, err := extractGrid(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(grid) < 2 {
		return nil, nil, ErrNoValidDays
	}

	header := grid[0]
	dayCount := len(header) - 1
	if dayCount < 1 {
		return nil, nil, ErrNoValidDays
	}
	dates := parseHeaderDates(header[1:], base)

	days := make([]domain.DayForecast, dayCount)
	rainSeen := make([]int, dayCount) // occurrences of the duplicated rainfall row
	var warnings []domain.Warning

	for i := range days {
		days[i].Date = dates[i]
		days[i].Rain.Unit = "mm"
	}

	for _, row := range grid[1:] {
		if len(row) == 0 {
			continue
		}
		m := classifyLabel(row[0])
		if m == metricUnknown {
			continue
		}
		for col := 0; col < dayCount; col++ {
			var cell string
			if col+1 < len(row) {
				cell = row[col+1]
			}
			sample := parseSample(cell)
			if m == metricRainfall {
				warnings = appendRain(&days[col], sample, &rainSeen[col], warnings)
				continue
			}
			assign(&days[col], m, sample)
		}
	}

	valid := days[:0]
	for _, day := range days {
		if reason, ok := mandatoryGap(day); ok {
			warnings = append(warnings, domain.DayDroppedWarning(day.Date, reason))
			continue
		}
		valid = append(valid, day)
	}

	if len(valid) == 0 {
		return nil, warnings, ErrNoValidDays
	}
	if horizon > 0 && len(valid) > horizon {
		valid = valid[:horizon]
	}
	return valid, warnings, nil
}

// extractGrid walks the HTML tree, finds the first table, and flattens it
// into rows of trimmed cell text.
func extractGrid(raw []byte) ([][]string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, ErrNoTable
	}

	var grid [][]string
	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "tr" {
				grid = append(grid, cellTexts(c))
				continue
			}
			walkRows(c)
		}
	}
	walkRows(table)
	return grid, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, strings.TrimSpace(nodeText(c)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func parseHeaderDates(cells []string, base time.Time) []time.Time {
	dates := make([]time.Time, len(cells))
	for i, cell := range cells {
		dates[i] = parseHeaderDate(cell, base, i)
	}
	return dates
}

func parseHeaderDate(cell string, base time.Time, index int) time.Time {
	cell = strings.TrimSpace(cell)
	for _, layout := range headerDateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	// Upstream dates are table-relative; absent a parseable header the
	// first column is tomorrow relative to the fetch date.
	return base.AddDate(0, 0, index+1)
}

// classifyLabel keyword-matches a row label the same way the portal's own
// consumers do: the wording drifts ("Rainfall (mm)", "Rain fall", "RF") but
// the keywords survive redesigns.
func classifyLabel(label string) metric {
	l := strings.ToLower(label)
	stat := func(min, avg, max metric) metric {
		switch {
		case strings.Contains(l, "min"):
			return min
		case strings.Contains(l, "max"):
			return max
		case strings.Contains(l, "avg") || strings.Contains(l, "average") || strings.Contains(l, "mean"):
			return avg
		default:
			return avg
		}
	}

	switch {
	case strings.Contains(l, "rain"):
		return metricRainfall
	case strings.Contains(l, "temp"):
		return stat(metricTempMin, metricTempAvg, metricTempMax)
	case strings.Contains(l, "humid") || strings.Contains(l, "rh"):
		return stat(metricHumidityMin, metricHumidityAvg, metricHumidityMax)
	case strings.Contains(l, "soil"):
		return stat(metricSoilMin, metricSoilAvg, metricSoilMax)
	case strings.Contains(l, "wind") && strings.Contains(l, "dir"):
		return stat(metricWindDirMin, metricWindDirAvg, metricWindDirMax)
	case strings.Contains(l, "wind"):
		return stat(metricWindSpeedMin, metricWindSpeedAvg, metricWindSpeedMax)
	case strings.Contains(l, "cloud"):
		switch {
		case strings.Contains(l, "high"):
			return metricCloudHigh
		case strings.Contains(l, "low"):
			return metricCloudLow
		default:
			return metricCloudMedium
		}
	default:
		return metricUnknown
	}
}

// parseSample extracts a finite numeric reading from a cell. Missing or
// non-numeric cells are an explicit absent marker, never zero.
func parseSample(cell string) domain.Sample {
	match := numberRe.FindString(cell)
	if match == "" {
		return domain.Sample{}
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Sample{}
	}
	return domain.Sample{Value: v, Valid: true}
}

// appendRain reconciles the duplicated rainfall rows for one day.
func appendRain(day *domain.DayForecast, s domain.Sample, seen *int, warnings []domain.Warning) []domain.Warning {
	*seen++
	if !s.Valid {
		return warnings
	}
	if !day.Rain.Total.Valid {
		day.Rain.Total = s
		return warnings
	}
	if math.Abs(day.Rain.Total.Value-s.Value) > rainfallTolerance {
		warnings = append(warnings, domain.RainfallMismatchWarning(day.Date, day.Rain.Total.Value, s.Value))
	}
	return warnings
}

func assign(day *domain.DayForecast, m metric, s domain.Sample) {
	switch m {
	case metricTempMin:
		day.Temperature.Min = s
	case metricTempAvg:
		day.Temperature.Avg = s
	case metricTempMax:
		day.Temperature.Max = s
	case metricHumidityMin:
		day.Humidity.Min = s
	case metricHumidityAvg:
		day.Humidity.Avg = s
	case metricHumidityMax:
		day.Humidity.Max = s
	case metricSoilMin:
		day.SoilMoisture.Min = s
	case metricSoilAvg:
		day.SoilMoisture.Avg = s
	case metricSoilMax:
		day.SoilMoisture.Max = s
	case metricWindSpeedMin:
		day.WindSpeed.Min = s
	case metricWindSpeedAvg:
		day.WindSpeed.Avg = s
	case metricWindSpeedMax:
		day.WindSpeed.Max = s
	case metricWindDirMin:
		day.WindDirection.Min = s
	case metricWindDirAvg:
		day.WindDirection.Avg = s
	case metricWindDirMax:
		day.WindDirection.Max = s
	case metricCloudHigh:
		day.Clouds.High = s
	case metricCloudMedium:
		day.Clouds.Medium = s
	case metricCloudLow:
		day.Clouds.Low = s
	}
}

func mandatoryGap(day domain.DayForecast) (string, bool) {
	switch {
	case !day.Temperature.Min.Valid || !day.Temperature.Max.Valid:
		return "missing temperature", true
	case !day.Rain.Total.Valid:
		return "missing rainfall", true
	case !day.Humidity.Headline().Valid:
		return "missing humidity", true
	default:
		return "", false
	}
}
