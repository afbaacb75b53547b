package types

import "fmt"

// Coordinate bounds. CONUS is the conterminous-US bounding box used by
// provider region selection.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0

	ConusMinLat = 24.0
	ConusMaxLat = 50.0
	ConusMinLon = -125.0
	ConusMaxLon = -66.0
)

// IsCONUS returns true if the coordinates fall within the CONUS bounding box.
func IsCONUS(lat, lon float64) bool {
	return lat >= ConusMinLat && lat <= ConusMaxLat && lon >= ConusMinLon && lon <= ConusMaxLon
}

// ValidateCoordinates rejects out-of-range latitude/longitude before any
// network call is made. Returns an AppError with the matching validation
// code, or nil when the pair is usable.
func ValidateCoordinates(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat {
		return NewAppError(
			ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude %.4f outside [%.0f, %.0f]", lat, MinLat, MaxLat),
			nil,
		)
	}
	if lon < MinLon || lon > MaxLon {
		return NewAppError(
			ErrCodeValidationInvalidLon,
			fmt.Sprintf("longitude %.4f outside [%.0f, %.0f]", lon, MinLon, MaxLon),
			nil,
		)
	}
	return nil
}
