package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

const breedsCacheKey = "breeds:all"

// BreedCatalog caches the upstream breed list. Entries live until the TTL
// runs out or Invalidate is called; the orchestrator invalidates on a 401.
type BreedCatalog struct {
	api   ports.DogAPI
	cache ports.CacheService
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	breeds    []string
	fetchedAt time.Time
	valid     bool
	// gen is bumped by Invalidate; fetches started under an older gen are not stored.
	gen uint64
}

// NewBreedCatalog creates a BreedCatalog. cache may be nil.
func NewBreedCatalog(api ports.DogAPI, cache ports.CacheService, ttl time.Duration) *BreedCatalog {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BreedCatalog{api: api, cache: cache, ttl: ttl, now: time.Now}
}

// List returns the breed names, fetching them once per TTL. Concurrent
// misses share a single upstream call.
func (b *BreedCatalog) List(ctx context.Context, creds domain.Credentials) ([]string, error) {
	if breeds, ok := b.cached(); ok {
		metrics.CacheHits.WithLabelValues("breeds").Inc()
		return breeds, nil
	}
	metrics.CacheMisses.WithLabelValues("breeds").Inc()

	gen := b.generation()
	v, err, _ := b.group.Do(fmt.Sprintf("%s:%d", breedsCacheKey, gen), func() (any, error) {
		if b.cache != nil {
			if data, err := b.cache.Get(ctx, breedsCacheKey); err == nil {
				var breeds []string
				if err := json.Unmarshal(data, &breeds); err == nil {
					b.store(gen, breeds)
					return breeds, nil
				}
			}
		}

		breeds, err := b.api.ListBreeds(ctx, creds)
		if err != nil {
			return nil, err
		}
		if !b.store(gen, breeds) {
			return breeds, nil
		}

		if b.cache != nil {
			if data, err := json.Marshal(breeds); err == nil {
				_ = b.cache.Set(ctx, breedsCacheKey, data, int(b.ttl.Seconds()))
			}
		}
		return breeds, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// Refresh drops the cached list and fetches it again.
func (b *BreedCatalog) Refresh(ctx context.Context, creds domain.Credentials) ([]string, error) {
	b.Invalidate(ctx)
	return b.List(ctx, creds)
}

// Invalidate drops the cached list, locally and in the shared cache.
func (b *BreedCatalog) Invalidate(ctx context.Context) {
	b.mu.Lock()
	b.breeds = nil
	b.valid = false
	b.gen++
	b.mu.Unlock()

	if b.cache != nil {
		if err := b.cache.Delete(ctx, breedsCacheKey); err != nil {
			slog.WarnContext(ctx, "invalidate breed cache", "error", err)
		}
	}
}

func (b *BreedCatalog) cached() ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid || b.now().Sub(b.fetchedAt) >= b.ttl {
		return nil, false
	}
	return append([]string(nil), b.breeds...), true
}

func (b *BreedCatalog) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// store keeps breeds unless the catalog was invalidated after gen was read.
func (b *BreedCatalog) store(gen uint64, breeds []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return false
	}
	b.breeds = append([]string(nil), breeds...)
	b.fetchedAt = b.now()
	b.valid = true
	return true
}
