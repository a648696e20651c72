package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// EarthRadiusMiles is the mean spherical radius of the Earth. Good enough for
// city-scale radius filtering, not for geodesic precision.
const EarthRadiusMiles = 3963.0

// ErrInvalidGeoInput is returned for inputs where the bounding box is undefined.
var ErrInvalidGeoInput = errors.New("invalid geo input")

// BoundingBox returns the lat/lon rectangle containing the disk of radiusMiles
// around center. The box over-approximates the disk at its corners; callers
// needing the disk itself should follow up with HaversineMiles.
//
// Latitude must lie strictly inside (-90, 90): at the poles the longitude
// offset divides by cos(90°) = 0.
func BoundingBox(center domain.GeoPoint, radiusMiles float64) (domain.Bounds, error) {
	if err := ValidatePoint(center); err != nil {
		return domain.Bounds{}, err
	}
	if math.IsNaN(radiusMiles) || math.IsInf(radiusMiles, 0) || radiusMiles <= 0 {
		return domain.Bounds{}, fmt.Errorf("%w: radius must be a positive number of miles, got %g", ErrInvalidGeoInput, radiusMiles)
	}

	latOffset := toDeg(radiusMiles / EarthRadiusMiles)
	lonOffset := toDeg(radiusMiles / EarthRadiusMiles / math.Cos(toRad(center.Lat)))
	if math.IsInf(lonOffset, 0) || math.IsNaN(lonOffset) {
		return domain.Bounds{}, fmt.Errorf("%w: longitude offset undefined at latitude %g", ErrInvalidGeoInput, center.Lat)
	}

	return domain.Bounds{
		MinLat: center.Lat - latOffset,
		MaxLat: center.Lat + latOffset,
		MinLon: center.Lon - lonOffset,
		MaxLon: center.Lon + lonOffset,
	}, nil
}

// ValidatePoint rejects non-finite coordinates, latitudes at or beyond the
// poles, and longitudes outside [-180, 180].
func ValidatePoint(p domain.GeoPoint) error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat <= -90 || p.Lat >= 90 {
		return fmt.Errorf("%w: latitude must be strictly between -90 and 90, got %g", ErrInvalidGeoInput, p.Lat)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %g", ErrInvalidGeoInput, p.Lon)
	}
	return nil
}

// HaversineMiles calculates the great-circle distance in miles between two points.
func HaversineMiles(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
