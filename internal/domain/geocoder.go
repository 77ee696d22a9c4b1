package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder refines district coordinates for the map layer.
type Geocoder interface {
	// ForwardGeocode converts a place name and country to coordinates.
	ForwardGeocode(ctx context.Context, name, country string) (GeocodingResult, error)
}

// Location is the geometry block consumed by the map rendering layer.
type Location struct {
	Name             string  `json:"area_name"`
	Lat              float64 `json:"latitude"`
	Lon              float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	// Source is "gazetteer" or "geocoder".
	Source string `json:"source"`
}
