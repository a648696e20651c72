package ports

import (
	"context"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSearchEvent(ctx context.Context, event *domain.SearchEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Navigator performs the login redirect when the upstream rejects a session.
type Navigator interface {
	RedirectToLogin(ctx context.Context)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(ctx context.Context)

// RedirectToLogin calls f(ctx).
func (f NavigatorFunc) RedirectToLogin(ctx context.Context) { f(ctx) }
