package main

import (
	"log"

	"github.com/personamatcher/backend/config"
	httpDelivery "github.com/personamatcher/backend/internal/delivery/http"
	"github.com/personamatcher/backend/internal/infrastructure/cache"
	"github.com/personamatcher/backend/internal/infrastructure/caption"
	"github.com/personamatcher/backend/internal/infrastructure/catalog"
	"github.com/personamatcher/backend/internal/infrastructure/duckduckgo"
	"github.com/personamatcher/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Persona Matcher backend in %s mode", cfg.Server.Environment)
	log.Printf("Catalog site: %s", cfg.Catalog.BaseURL)

	// Initialize cache
	memoryCache := cache.NewMemoryCache()

	// Initialize search provider
	searchClient := duckduckgo.NewClient(duckduckgo.ClientConfig{
		BaseURL:       cfg.Search.BaseURL,
		Timeout:       cfg.Search.Timeout,
		RatePerSecond: cfg.Search.RatePerSecond,
		Burst:         cfg.Search.Burst,
		UserAgent:     cfg.Catalog.UserAgent,
	})

	// Initialize catalog searcher
	searcher, err := catalog.NewSearcher(searchClient, memoryCache, catalog.SearcherConfig{
		BaseURL:      cfg.Catalog.BaseURL,
		ProductPath:  cfg.Catalog.ProductPath,
		Overfetch:    cfg.Catalog.Overfetch,
		FetchTimeout: cfg.Catalog.FetchTimeout,
		UserAgent:    cfg.Catalog.UserAgent,
		CacheTTL:     cfg.Cache.TTL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize catalog searcher: %v", err)
	}

	// Initialize use cases
	styleEngine := usecase.NewStyleEngine()
	discoveryService := usecase.NewDiscoveryService(styleEngine, searcher, usecase.DiscoveryServiceConfig{
		MaxResults: cfg.Catalog.MaxResults,
	})

	// Initialize HTTP handler and router
	handler := httpDelivery.NewHandler(discoveryService, caption.NewPathCaptioner())
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
