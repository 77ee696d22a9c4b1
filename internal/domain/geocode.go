package domain

import (
	"context"
	"log/slog"
)

// EnrichLocation builds the response location for a district, optionally
// refining the gazetteer coordinates through a geocoding provider. If
// geocoder is nil or the lookup fails, the gazetteer coordinates stand
// (graceful degradation).
func EnrichLocation(ctx context.Context, district District, geocoder Geocoder, logger *slog.Logger) Location {
	loc := Location{
		Name:   district.Name,
		Lat:    district.Lat,
		Lon:    district.Lon,
		Source: "gazetteer",
	}

	if geocoder == nil {
		return loc
	}

	result, err := geocoder.ForwardGeocode(ctx, district.Name, "Bangladesh")
	if err != nil {
		logger.Warn("forward geocoding failed",
			"district", district.Name,
			"error", err,
		)
		return loc
	}
	if result.Lat == 0 && result.Lon == 0 {
		return loc
	}

	loc.Lat = result.Lat
	loc.Lon = result.Lon
	loc.FormattedAddress = result.FormattedAddress
	loc.Confidence = result.Confidence
	loc.Source = "geocoder"
	if result.PlaceName != "" {
		loc.Name = result.PlaceName
	}
	return loc
}
