package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// --- Mock DogAPI ---

type mockDogAPI struct {
	searchFn func(ctx context.Context, creds domain.Credentials, f domain.SearchFilter) (*domain.SearchResult, error)
	fetchFn  func(ctx context.Context, creds domain.Credentials, ids []string) ([]domain.Dog, error)
	breedsFn func(ctx context.Context, creds domain.Credentials) ([]string, error)

	mu          sync.Mutex
	searchCalls int
	fetchCalls  int
	breedCalls  int
}

func (m *mockDogAPI) SearchDogs(ctx context.Context, creds domain.Credentials, f domain.SearchFilter) (*domain.SearchResult, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, creds, f)
	}
	return &domain.SearchResult{}, nil
}

func (m *mockDogAPI) FetchDogs(ctx context.Context, creds domain.Credentials, ids []string) ([]domain.Dog, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, creds, ids)
	}
	dogs := make([]domain.Dog, 0, len(ids))
	for _, id := range ids {
		dogs = append(dogs, domain.Dog{ID: id, Name: "dog-" + id})
	}
	return dogs, nil
}

func (m *mockDogAPI) ListBreeds(ctx context.Context, creds domain.Credentials) ([]string, error) {
	m.mu.Lock()
	m.breedCalls++
	m.mu.Unlock()
	if m.breedsFn != nil {
		return m.breedsFn(ctx, creds)
	}
	return []string{"Akita", "Beagle"}, nil
}

func (m *mockDogAPI) calls() (search, fetch, breeds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls, m.fetchCalls, m.breedCalls
}

// --- Mock LocationAPI ---

type mockLocationAPI struct {
	lookupFn func(ctx context.Context, creds domain.Credentials, zips []string) ([]domain.Location, error)
	searchFn func(ctx context.Context, creds domain.Credentials, box domain.Bounds, size, from int) (*domain.LocationSearchResult, error)

	mu          sync.Mutex
	lookupCalls int
	searchCalls int
}

func (m *mockLocationAPI) LookupLocations(ctx context.Context, creds domain.Credentials, zips []string) ([]domain.Location, error) {
	m.mu.Lock()
	m.lookupCalls++
	m.mu.Unlock()
	if m.lookupFn != nil {
		return m.lookupFn(ctx, creds, zips)
	}
	return nil, nil
}

func (m *mockLocationAPI) SearchLocations(ctx context.Context, creds domain.Credentials, box domain.Bounds, size, from int) (*domain.LocationSearchResult, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, creds, box, size, from)
	}
	return &domain.LocationSearchResult{}, nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.SearchEvent
}

func (p *mockPublisher) PublishSearchEvent(ctx context.Context, e *domain.SearchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

// --- Navigator that counts redirects ---

type countingNav struct {
	mu    sync.Mutex
	count int
}

func (n *countingNav) RedirectToLogin(ctx context.Context) {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
}

func (n *countingNav) redirects() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
