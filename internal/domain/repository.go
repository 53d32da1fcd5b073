package domain

import (
	"context"
	"time"
)

// SearchProvider defines the interface for external web search engines.
// Providers are best-effort: callers treat errors as zero candidates.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// CatalogSearcher defines the interface for site-restricted product discovery.
// An empty query signals a broad site search intended for keyword filtering
// by the caller. Implementations degrade provider and per-page failures to
// smaller (possibly empty) result sets rather than returning errors.
type CatalogSearcher interface {
	SearchProducts(ctx context.Context, query string, maxResults int) ([]Product, error)
}

// ImageCaptioner turns a stored image file into a style description. The
// current implementation echoes the file path (no image understanding yet);
// the interface exists so a vision model can replace it without touching the
// delivery or orchestration layers.
type ImageCaptioner interface {
	Describe(ctx context.Context, imagePath string) (string, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
