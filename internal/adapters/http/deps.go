package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pawsearch/internal/adapters/upstream"
	"github.com/samirrijal/pawsearch/internal/adapters/valkey"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Upstream  *upstream.Client
	Sessions  *usecases.SessionRegistry
	Breeds    *usecases.BreedCatalog
	Locations *usecases.LocationService
	NATS      *nats.Conn
	Cache     *valkey.Cache

	// LoginPath is where unauthenticated callers are sent. Defaults to /login.
	LoginPath string
	// RequestTimeout bounds each API request. Defaults to 15s.
	RequestTimeout time.Duration
	// RateLimit is the per-IP request budget per minute. Defaults to 120.
	RateLimit int
	// OpenAPIPath is served at /docs/openapi.yaml. Defaults to api/openapi.yaml.
	OpenAPIPath string
}

func (d *Dependencies) loginPath() string {
	if d.LoginPath == "" {
		return "/login"
	}
	return d.LoginPath
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return 120
	}
	return d.RateLimit
}

func (d *Dependencies) openAPIPath() string {
	if d.OpenAPIPath == "" {
		return "api/openapi.yaml"
	}
	return d.OpenAPIPath
}
