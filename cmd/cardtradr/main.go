// Package main starts the cardtradr server: the REST API over the card
// catalog, cache, collections, and wishlist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CALILU/cardtradr/internal/api"
	"github.com/CALILU/cardtradr/internal/cache"
	"github.com/CALILU/cardtradr/internal/config"
	"github.com/CALILU/cardtradr/internal/session"
	"github.com/CALILU/cardtradr/internal/storage"
	"github.com/CALILU/cardtradr/internal/storage/repository"
	"github.com/CALILU/cardtradr/internal/tcg"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.cardtradr/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	// Load configuration
	cfgPath := *configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.Path()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flag overrides
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *debugMode {
		cfg.App.DebugMode = true
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Open database
	finalDBPath := cfg.Database.Path
	if finalDBPath == "" {
		finalDBPath, err = config.DefaultDatabasePath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}

	dbConfig := storage.DefaultConfig(finalDBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Provider client over the cache store
	store := cache.New(db, logger)
	client, err := tcg.NewClient(tcg.ClientConfig{
		BaseURL:       cfg.Provider.BaseURL,
		APIKey:        cfg.Provider.APIKey,
		Timeout:       cfg.ProviderTimeout(),
		Cache:         store,
		Logger:        logger,
		GamesTTL:      cfg.GamesTTL(),
		ExpansionsTTL: cfg.ExpansionsTTL(),
		CardsTTL:      cfg.CardsTTL(),
	})
	if err != nil {
		log.Fatalf("Failed to create provider client: %v", err)
	}

	// Repositories and session
	settings := repository.NewSettingsRepository(db.Conn())
	sessions := session.NewProvider(settings, logger)
	if err := sessions.Hydrate(context.Background()); err != nil {
		log.Fatalf("Failed to hydrate session: %v", err)
	}

	// Hot-reload the API key when the config file changes on disk
	watcher, err := config.Watch(cfgPath, logger, func(updated *config.Config) {
		client.SetAPIKey(updated.Provider.APIKey)
	})
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
	}

	// Create and start the API server
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        version,
	}, api.Dependencies{
		Catalog:     client,
		Collections: repository.NewCollectionRepository(db.Conn()),
		Wishlist:    repository.NewWishlistRepository(db.Conn()),
		Stats:       repository.NewStatsRepository(db.Conn()),
		Sessions:    sessions,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Printf("cardtradr running at http://localhost:%d\n", server.Port())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("cardtradr stopped.")
}
