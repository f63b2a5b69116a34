package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghosttier/arsenal-server/internal/api"
	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/cache"
	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/config"
	"github.com/ghosttier/arsenal-server/internal/loadout"
	"github.com/ghosttier/arsenal-server/internal/logging"
	"github.com/ghosttier/arsenal-server/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: ARSENAL_CONFIG env)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Failed to initialise logging: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎯 Starting Arsenal Server (catalog, accounts, loadouts)...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Failed to load config: %v", err)
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Log.ConsoleLevel != "" {
		logging.SetDefaultConsoleLevel(logging.ParseLevel(cfg.Log.ConsoleLevel))
	}

	// === JWT ===
	if secret := cfg.JWT.GetSecret(); secret != "" {
		if err := auth.SetJWTSecret(secret); err != nil {
			log.Fatalf("❌ Invalid JWT secret: %v", err)
		}
	} else {
		logging.Warn("JWT secret not configured, using a random per-process secret")
	}
	auth.SetJWTTTL(time.Duration(cfg.JWT.GetTTLHours()) * time.Hour)

	// === Telemetry ===
	ctx := context.Background()
	telemetryShutdown, err := observability.InitTelemetry(ctx, "arsenal-server")
	if err != nil {
		logging.Warn("OpenTelemetry disabled: %v", err)
		telemetryShutdown = func(context.Context) error { return nil }
	}

	// === Stores ===
	var userRepo auth.UserRepository
	var catalogRepo catalog.Repository

	if cfg.Maria.Enabled {
		logging.Info("💾 User store: MariaDB %s:%d/%s", cfg.Maria.Host, cfg.Maria.Port, cfg.Maria.Database)
		userRepo, err = auth.NewMariaUserRepo(auth.MariaConfig{
			Host:     cfg.Maria.Host,
			Port:     cfg.Maria.Port,
			Database: cfg.Maria.Database,
			Username: cfg.Maria.Username,
			Password: cfg.Maria.Password,
		})
		if err != nil {
			log.Fatalf("❌ Failed to connect to MariaDB: %v", err)
		}
	} else {
		mongoURI := cfg.Mongo.GetMongoURI()
		mongoDB := cfg.Mongo.GetDatabase()
		logging.Info("💾 User store: MongoDB %s/%s", mongoURI, mongoDB)
		userRepo, err = auth.NewMongoUserRepo(auth.MongoConfig{
			URI:      mongoURI,
			Database: mongoDB,
		})
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
	}

	catalogRepo, err = catalog.NewMongoRepository(catalog.MongoCatalogConfig{
		URI:      cfg.Mongo.GetMongoURI(),
		Database: cfg.Mongo.GetDatabase(),
	})
	if err != nil {
		log.Fatalf("❌ Failed to open catalog store: %v", err)
	}

	// === Catalog cache (noop unless Redis is configured) ===
	var catalogCache cache.Cache = cache.NewNoopCache()
	ttl := time.Duration(cfg.Redis.GetTTL()) * time.Second
	if cfg.Redis.Enabled {
		var invalidator cache.Invalidator
		if cfg.Nats.Enabled {
			hostname, _ := os.Hostname()
			invalidator, err = cache.NewNATSInvalidator(cfg.Nats.URL, hostname)
			if err != nil {
				logging.Warn("NATS invalidation disabled: %v", err)
				invalidator = nil
			}
		}

		redisCache, err := cache.NewRedisCache(&cache.Config{
			RedisAddr:     cfg.Redis.Addr,
			RedisPassword: cfg.Redis.Password,
			RedisDB:       cfg.Redis.DB,
			DefaultTTL:    ttl,
		}, invalidator)
		if err != nil {
			logging.Warn("Redis cache disabled: %v", err)
		} else {
			logging.Info("⚡ Catalog cache: Redis %s (nats=%v)", cfg.Redis.Addr, cfg.Nats.Enabled)
			catalogCache = redisCache
		}
	}
	catalogRepo = catalog.NewCachedRepository(catalogRepo, catalogCache, ttl)

	manager := loadout.NewManager(userRepo, catalogRepo)

	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{
		Port:     restPort,
		UserRepo: userRepo,
		Catalog:  catalogRepo,
		Loadouts: manager,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logging.Info("✅ REST API listening on http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📈 Metrics: http://localhost%s/metrics", restPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Received signal %v, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ REST API failed: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Failed to stop REST API: %v", err)
	}
	if err := catalogCache.Close(); err != nil {
		logging.Error("❌ Failed to close cache: %v", err)
	}
	if err := telemetryShutdown(shutdownCtx); err != nil {
		logging.Error("❌ Failed to stop telemetry: %v", err)
	}

	logging.Info("👋 Server stopped")
}
