package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tarkovlens/backend/config"
	httpDelivery "github.com/tarkovlens/backend/internal/delivery/http"
	"github.com/tarkovlens/backend/internal/domain"
	"github.com/tarkovlens/backend/internal/infrastructure/ratelimit"
	"github.com/tarkovlens/backend/internal/infrastructure/tarkov"
	"github.com/tarkovlens/backend/internal/usecase"
)

// closableStore is a rate limit store that holds resources
type closableStore interface {
	domain.RateLimitStore
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting TarkovLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Rate limit store: %s (%d req/min per IP)", cfg.RateLimit.Store, cfg.RateLimit.PerIP)

	// Initialize infrastructure dependencies
	tarkovClient := tarkov.NewClient(tarkov.ClientConfig{
		BaseURL:           cfg.Tarkov.BaseURL,
		Timeout:           cfg.Tarkov.Timeout,
		RequestsPerSecond: cfg.Tarkov.RequestsPerSecond,
		Burst:             cfg.Tarkov.Burst,
		MaxRetries:        cfg.Tarkov.MaxRetries,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		tarkovClient.SetDebug(true)
		log.Printf("Tarkov client debug mode enabled")
	}

	log.Printf("tarkov.dev API: %s (%.1f req/s, burst %d, retries %d)",
		cfg.Tarkov.BaseURL, cfg.Tarkov.RequestsPerSecond, cfg.Tarkov.Burst, cfg.Tarkov.MaxRetries)

	store, err := newRateLimitStore(cfg.RateLimit)
	if err != nil {
		log.Fatalf("Failed to initialize rate limit store: %v", err)
	}
	defer store.Close()

	// Initialize usecase layer
	lookupService := usecase.NewItemLookupService(
		tarkovClient,
		usecase.ItemLookupServiceConfig{
			ExcludedVendor:     cfg.Matching.ExcludedVendor,
			MaxBatchSize:       cfg.Lookup.MaxBatchSize,
			Concurrency:        cfg.Lookup.Concurrency,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: excluded vendor=%q, debug=%v; batch: max=%d, concurrency=%d",
		cfg.Matching.ExcludedVendor,
		cfg.Matching.EnableDebugLogging,
		cfg.Lookup.MaxBatchSize,
		cfg.Lookup.Concurrency)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(lookupService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, store)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newRateLimitStore builds the configured per-IP rate limit store
func newRateLimitStore(cfg config.RateLimitConfig) (closableStore, error) {
	switch cfg.Store {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := ratelimit.NewRedisStore(ctx, cfg.RedisURL, cfg.PerIP)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return ratelimit.NewMemoryStore(cfg.PerIP), nil
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
