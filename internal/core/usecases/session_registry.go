package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// SessionRegistry keeps one SearchService per browser session so that each
// session gets its own sequence numbers and state. Idle sessions are evicted
// after ttl; the least recently used go first once maxSessions is reached.
type SessionRegistry struct {
	cache   *ccache.Cache[*SearchService]
	ttl     time.Duration
	factory func(session string) *SearchService

	// mu serializes creation; ccache's Fetch is a Get followed by a Set.
	mu sync.Mutex
}

// NewSessionRegistry creates a SessionRegistry.
func NewSessionRegistry(maxSessions int, ttl time.Duration, factory func(session string) *SearchService) *SessionRegistry {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRegistry{
		cache:   ccache.New(ccache.Configure[*SearchService]().MaxSize(int64(maxSessions))),
		ttl:     ttl,
		factory: factory,
	}
}

// Get returns the session's SearchService, creating it on first use.
func (r *SessionRegistry) Get(creds domain.Credentials) *SearchService {
	key := SessionKey(creds)
	if svc := r.live(key); svc != nil {
		return svc
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc := r.live(key); svc != nil {
		return svc
	}
	svc := r.factory(key)
	r.cache.Set(key, svc, r.ttl)
	return svc
}

func (r *SessionRegistry) live(key string) *SearchService {
	item := r.cache.Get(key)
	if item == nil || item.Expired() {
		return nil
	}
	item.Extend(r.ttl)
	return item.Value()
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.cache.ItemCount()
}

// Stop releases the registry's background worker.
func (r *SessionRegistry) Stop() {
	r.cache.Stop()
}

// SessionKey derives a stable, non-reversible key from the session cookie.
func SessionKey(creds domain.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Cookie))
	return hex.EncodeToString(sum[:8])
}
