package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pawsearch/internal/adapters/http"
	natsadapter "github.com/samirrijal/pawsearch/internal/adapters/nats"
	"github.com/samirrijal/pawsearch/internal/adapters/upstream"
	"github.com/samirrijal/pawsearch/internal/adapters/valkey"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
	"github.com/samirrijal/pawsearch/internal/pkg/config"
	"github.com/samirrijal/pawsearch/internal/pkg/logging"
	"github.com/samirrijal/pawsearch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("pawsearch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("pawsearch-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache. A nil *valkey.Cache must not end up inside the interface.
	var (
		cache    *valkey.Cache
		cacheSvc ports.CacheService
	)
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, "pawsearch")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	// Upstream
	client := upstream.New(cfg.Upstream.BaseURL, time.Duration(cfg.Upstream.Timeout)*time.Second)

	// Use cases
	breeds := usecases.NewBreedCatalog(client, cacheSvc, time.Duration(cfg.Cache.BreedsTTL)*time.Second)
	locations := usecases.NewLocationService(client, cacheSvc, cfg.Cache.LocationsTTL, 0)
	sessions := usecases.NewSessionRegistry(cfg.Session.MaxSessions, time.Duration(cfg.Session.IdleTTL)*time.Second,
		func(session string) *usecases.SearchService {
			opts := []usecases.SearchOption{
				usecases.WithBreedCatalog(breeds),
				usecases.WithLocations(locations),
				usecases.WithSession(session),
			}
			if publisher != nil {
				opts = append(opts, usecases.WithPublisher(publisher))
			}
			return usecases.NewSearchService(client, opts...)
		})
	defer sessions.Stop()

	deps := &http.Dependencies{
		Upstream:       client,
		Sessions:       sessions,
		Breeds:         breeds,
		Locations:      locations,
		NATS:           natsConn,
		Cache:          cache,
		LoginPath:      cfg.Session.LoginPath,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "PawSearch API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Cookie",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "upstream", cfg.Upstream.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
