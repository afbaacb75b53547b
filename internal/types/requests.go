package types

// FetchRequest carries the caller-resolved parameters for one fetch through
// the orchestrator. Coordinates arrive already geocoded; RegionLabel is the
// optional textual region name used by keyword-based region matching.
type FetchRequest struct {
	Lat         float64 `json:"lat" validate:"latitude"`
	Lon         float64 `json:"lon" validate:"longitude"`
	Metric      Metric  `json:"metric" validate:"required,oneof=weather marine biogeochemical"`
	RegionLabel string  `json:"region_label,omitempty"`
}
