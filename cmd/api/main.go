// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/domain/geo"
	"github.com/your-org/storefront-bff/internal/domain/shipping"
	"github.com/your-org/storefront-bff/internal/infrastructure/api"
	"github.com/your-org/storefront-bff/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-bff/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-bff/internal/interfaces/http"
	"github.com/your-org/storefront-bff/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/interfaces/http/routes"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
	"github.com/your-org/storefront-bff/internal/pkg/email"
	"github.com/your-org/storefront-bff/internal/pkg/logger"
	"github.com/your-org/storefront-bff/internal/pkg/pdf"
	"github.com/your-org/storefront-bff/internal/socket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs := logger.New(cfg.Logging)
	logs.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	// Connect to database
	db, err := postgres.NewConnection(cfg, logs)
	if err != nil {
		logs.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logs)
	if err != nil {
		logs.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logs)
	if err := migration.RunAutoMigrations(); err != nil {
		logs.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		logs.WithError(err).Warn("Index creation failed")
	}
	if err := migration.SeedKnownLocations(); err != nil {
		logs.WithError(err).Warn("Seeding known locations failed")
	}
	if cfg.IsDevelopment() {
		migration.GetTableInfo()
	}

	table := loadTable(migration, logs)

	// Coordinate resolution
	tableStrategy := geo.NewTableStrategy(table)
	nominatim := geo.NewNominatimStrategy(cfg.Geocoding, logs.WithField("component", "nominatim"),
		geo.WithResultCache(redis.NewGeocodeCache(redisClient, cfg.Geocoding.CacheTTL, logs)),
	)

	resolverLog := logs.WithField("component", "resolver")
	resolvers := map[string]*geo.Resolver{
		"table": geo.NewResolver(resolverLog, tableStrategy),
		"osm":   geo.NewResolver(resolverLog, nominatim),
	}
	resolvers["chain"] = resolvers["table"]
	if cfg.Geocoding.Strategy == "osm" {
		resolvers["chain"] = geo.NewResolver(resolverLog, nominatim, tableStrategy)
	}

	calculator := geo.NewCalculator(geo.Coordinate{
		Latitude:  cfg.Shipping.StoreLatitude,
		Longitude: cfg.Shipping.StoreLongitude,
	})
	shippingService := shipping.NewService(resolvers["chain"], calculator, cfg.Shipping.FallbackFee, logs.WithField("component", "shipping"))

	// Commerce API, carts and checkout
	apiClient := api.NewClient(cfg.Upstream, logs.WithField("component", "commerce_api"))
	registry := cart.NewRegistry(apiClient, cfg.Session.IdleTTL, logs.WithField("component", "cart"))
	defer registry.Stop()

	checkoutService := checkout.NewService(
		apiClient,
		shippingService,
		redis.NewConfirmationStore(redisClient, cfg.Session.ConfirmationTTL),
		cfg.Session.IdleTTL,
		logs.WithField("component", "checkout"),
	)
	defer checkoutService.Stop()

	mailer := email.NewService(cfg.Email, cfg.Company, logs.WithField("component", "email"))
	if mailer.Enabled() {
		checkoutService.SetNotifier(mailer)
	}

	hub := socket.NewHub(logs.WithField("component", "websocket"))

	server := http.NewServer(cfg, logs, redisClient.GetClient(), auth.NewJWTManager(cfg), routes.Handlers{
		Auth:      handlers.NewAuthHandler(registry, hub),
		Cart:      handlers.NewCartHandler(registry),
		Checkout:  handlers.NewCheckoutHandler(registry, checkoutService, pdf.NewService(cfg), logs),
		Shipping:  handlers.NewShippingHandler(shippingService, resolvers, "chain"),
		WebSocket: handlers.NewWebSocketHandler(registry, hub, middleware.OriginChecker(cfg), logs),
	}, map[string]http.HealthChecker{
		"database": db,
		"redis":    redisClient,
	})

	logs.Info("All systems operational")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logs.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logs.Info("Shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logs.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logs.Info("Server shutdown completed")
}

// loadTable reads the lookup table from the database, falling back to the
// built-in table when it is unavailable or empty.
func loadTable(migration *postgres.Migration, logs logrus.FieldLogger) *geo.Table {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locations, err := migration.LoadLocations(ctx)
	if err != nil {
		logs.WithError(err).Warn("Using built-in location table")
		return geo.DefaultTable()
	}
	if len(locations) == 0 {
		logs.Warn("Location table is empty, using built-in table")
		return geo.DefaultTable()
	}

	logs.WithField("locations", len(locations)).Info("Location table loaded")
	return geo.NewTable(locations)
}
