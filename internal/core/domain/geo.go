package domain

// GeoPoint represents a geographic coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BottomLeft is the south-west corner.
func (b Bounds) BottomLeft() GeoPoint { return GeoPoint{Lat: b.MinLat, Lon: b.MinLon} }

// TopRight is the north-east corner.
func (b Bounds) TopRight() GeoPoint { return GeoPoint{Lat: b.MaxLat, Lon: b.MaxLon} }

// GeoFilter narrows a search to dogs within RadiusMiles of a zip code.
type GeoFilter struct {
	ZipCode     string  `json:"zip_code"`
	RadiusMiles float64 `json:"radius_miles"`
}
