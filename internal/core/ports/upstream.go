package ports

import (
	"context"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// DogAPI is the upstream dog search service. Every call carries the caller's
// credential explicitly; implementations return domain.ErrUnauthorized
// (possibly wrapped) when the upstream answers 401.
type DogAPI interface {
	SearchDogs(ctx context.Context, creds domain.Credentials, filter domain.SearchFilter) (*domain.SearchResult, error)
	FetchDogs(ctx context.Context, creds domain.Credentials, ids []string) ([]domain.Dog, error)
	ListBreeds(ctx context.Context, creds domain.Credentials) ([]string, error)
}

// LocationAPI resolves zip codes and searches locations inside a bounding box.
type LocationAPI interface {
	LookupLocations(ctx context.Context, creds domain.Credentials, zipCodes []string) ([]domain.Location, error)
	SearchLocations(ctx context.Context, creds domain.Credentials, box domain.Bounds, size, from int) (*domain.LocationSearchResult, error)
}
