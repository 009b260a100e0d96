package domain

import "context"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is a WGS84 extent.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Candidate is one ranked match returned in multi-result mode.
type Candidate struct {
	Label      string     `json:"label"`
	Coordinate Coordinate `json:"coordinate"`
}

// GeocodeResult describes where a place string resolved to.
// Candidates is ordered best first and may be empty.
type GeocodeResult struct {
	Center     Coordinate  `json:"center"`
	BBox       BoundingBox `json:"bbox"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Source     string      `json:"source,omitempty"`
}

// Geocoder resolves place names to coordinates, biased to the service region.
type Geocoder interface {
	// Geocode asks for at most limit candidates. It returns
	// ErrGeocodingNoMatch when nothing matched and ErrGeocodingUnavailable
	// (wrapped) when the provider could not be reached.
	Geocode(ctx context.Context, place string, limit int) (GeocodeResult, error)
}

// Region is the service area used for biasing and as a fallback.
var Region = struct {
	Center Coordinate
	BBox   BoundingBox
}{
	Center: Coordinate{Lat: 12.865, Lon: -85.207},
	BBox:   BoundingBox{West: -87.8, South: 10.6, East: -83.0, North: 15.1},
}

// FallbackGeocode is the result served when a place cannot be resolved.
func FallbackGeocode() GeocodeResult {
	return GeocodeResult{Center: Region.Center, BBox: Region.BBox, Source: "fallback"}
}
