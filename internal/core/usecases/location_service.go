package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/pkg/geospatial"
	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

// ErrLocationNotFound is returned when the upstream has no record for a zip code.
var ErrLocationNotFound = errors.New("location not found")

// maxLocationResults is how deep the upstream lets /locations/search page.
const maxLocationResults = 10000

// LocationService resolves zip codes and turns a zip + radius into the set of
// zip codes inside that circle.
type LocationService struct {
	api      ports.LocationAPI
	cache    ports.CacheService
	ttl      int
	pageSize int
}

// NewLocationService creates a new LocationService. cache may be nil.
func NewLocationService(api ports.LocationAPI, cache ports.CacheService, ttlSeconds, pageSize int) *LocationService {
	if ttlSeconds <= 0 {
		ttlSeconds = 600
	}
	if pageSize <= 0 || pageSize > maxLocationResults {
		pageSize = 100
	}
	return &LocationService{api: api, cache: cache, ttl: ttlSeconds, pageSize: pageSize}
}

// Resolve returns the location for one zip code.
func (s *LocationService) Resolve(ctx context.Context, creds domain.Credentials, zip string) (*domain.Location, error) {
	if zip == "" {
		return nil, fmt.Errorf("zip code must not be empty")
	}

	cacheKey := "locations:zip:" + zip
	var loc domain.Location
	if s.getCached(ctx, cacheKey, &loc) {
		return &loc, nil
	}

	locs, err := s.api.LookupLocations(ctx, creds, []string{zip})
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, zip)
	}

	s.setCached(ctx, cacheKey, locs[0])
	return &locs[0], nil
}

// BoundingBox resolves a zip code and returns the box around it.
func (s *LocationService) BoundingBox(ctx context.Context, creds domain.Credentials, zip string, radiusMiles float64) (domain.Bounds, error) {
	center, err := s.Resolve(ctx, creds, zip)
	if err != nil {
		return domain.Bounds{}, err
	}
	return geospatial.BoundingBox(center.Point(), radiusMiles)
}

// ZipCodesNear returns the zip codes within radiusMiles of zip. The upstream
// is queried with the bounding box; box corners outside the circle are
// trimmed with a great-circle distance check. Pages are followed until the
// upstream total is reached.
func (s *LocationService) ZipCodesNear(ctx context.Context, creds domain.Credentials, zip string, radiusMiles float64) ([]string, error) {
	cacheKey := fmt.Sprintf("locations:near:%s:%.2f:%d", zip, radiusMiles, s.pageSize)
	var zips []string
	if s.getCached(ctx, cacheKey, &zips) {
		return zips, nil
	}

	center, err := s.Resolve(ctx, creds, zip)
	if err != nil {
		return nil, err
	}
	box, err := geospatial.BoundingBox(center.Point(), radiusMiles)
	if err != nil {
		return nil, err
	}

	zips = []string{}
	for from := 0; from < maxLocationResults; {
		res, err := s.api.SearchLocations(ctx, creds, box, s.pageSize, from)
		if err != nil {
			return nil, err
		}
		for _, loc := range res.Results {
			if geospatial.HaversineMiles(center.Point(), loc.Point()) <= radiusMiles {
				zips = append(zips, loc.ZipCode)
			}
		}

		from += len(res.Results)
		if len(res.Results) == 0 || from >= res.Total {
			break
		}
		if from >= maxLocationResults {
			slog.WarnContext(ctx, "location search truncated",
				"zip", zip, "radius_miles", radiusMiles, "total", res.Total, "fetched", from)
		}
	}

	s.setCached(ctx, cacheKey, zips)
	return zips, nil
}

func (s *LocationService) getCached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("locations").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false
	}
	metrics.CacheHits.WithLabelValues("locations").Inc()
	return true
}

func (s *LocationService) setCached(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
}
