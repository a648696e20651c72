package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        deps.rateLimit(),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	d := deps.requestTimeout()
	api := app.Group("/api")

	// Passthrough proxy to the upstream dog API
	api.Get("/dogs/search", timeout.NewWithContext(ProxySearchHandler(deps), d))
	api.Post("/dogs/search", timeout.NewWithContext(ProxyDogsHandler(deps), d))

	// Orchestrated search
	api.Post("/search", timeout.NewWithContext(SearchHandler(deps), d))
	api.Get("/search", SearchStateHandler(deps))
	api.Get("/breeds", timeout.NewWithContext(BreedsHandler(deps), d))
	api.Get("/geo/bbox", BoundingBoxHandler())

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), d))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.openAPIPath())

	// WebSocket
	app.Use("/ws", WebSocketUpgrade())
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
