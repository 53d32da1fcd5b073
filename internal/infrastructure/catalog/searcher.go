package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/personamatcher/backend/internal/domain"
)

// SearcherConfig holds configuration for the catalog searcher
type SearcherConfig struct {
	BaseURL      string
	ProductPath  string
	Overfetch    int
	FetchTimeout time.Duration
	UserAgent    string
	CacheTTL     time.Duration
}

// Searcher discovers products on a single retailer's site: it runs a
// site-restricted web search, filters hits to product-detail pages, fetches
// each page and extracts structured product data. It implements
// domain.CatalogSearcher.
//
// Failure semantics: provider errors, per-page transport errors, and parse
// errors all degrade to fewer (possibly zero) results. SearchProducts only
// returns an error for invalid construction-time state, never for degrade
// paths.
type Searcher struct {
	provider    domain.SearchProvider
	cache       domain.CacheRepository
	extractor   *PageExtractor
	httpClient  *http.Client
	host        string
	productPath string
	overfetch   int
	userAgent   string
	cacheTTL    time.Duration
}

// NewSearcher creates a new catalog searcher. cache may be nil to disable
// provider-hit caching.
func NewSearcher(
	provider domain.SearchProvider,
	cache domain.CacheRepository,
	config SearcherConfig,
) (*Searcher, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL %q", config.BaseURL)
	}

	extractor, err := NewPageExtractor(config.BaseURL)
	if err != nil {
		return nil, err
	}

	productPath := config.ProductPath
	if productPath == "" {
		productPath = "/products/"
	}

	overfetch := config.Overfetch
	if overfetch <= 0 {
		overfetch = 15
	}

	fetchTimeout := config.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 20 * time.Second
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &Searcher{
		provider:    provider,
		cache:       cache,
		extractor:   extractor,
		httpClient:  &http.Client{Timeout: fetchTimeout},
		host:        base.Host,
		productPath: productPath,
		overfetch:   overfetch,
		userAgent:   userAgent,
		cacheTTL:    cacheTTL,
	}, nil
}

// SearchProducts returns up to maxResults products matching the query. An
// empty query runs a broad site search for fallback filtering by the caller.
func (s *Searcher) SearchProducts(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	siteQuery := strings.TrimSpace("site:" + s.host + " " + query)
	log.Printf("[Catalog] Searching for: %q", siteQuery)

	hits := s.searchWeb(ctx, siteQuery)
	if len(hits) == 0 {
		log.Printf("[Catalog] No candidates for query: %q", query)
		return []domain.Product{}, nil
	}

	products := make([]domain.Product, 0, maxResults)
	seen := make(map[string]bool)

	for _, hit := range hits {
		if len(products) >= maxResults {
			break
		}

		canonical, ok := s.canonicalProductURL(hit.URL)
		if !ok {
			continue
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		product, ok := s.scrapeProduct(ctx, canonical)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	log.Printf("[Catalog] Accepted %d of %d candidates for query %q",
		len(products), len(hits), query)
	return products, nil
}

// searchWeb fetches candidate hits, consulting the cache first. Provider
// failures degrade to an empty candidate list.
func (s *Searcher) searchWeb(ctx context.Context, siteQuery string) []domain.WebResult {
	cacheKey := "websearch:" + siteQuery

	if s.cache != nil {
		if hits, err := s.hitsFromCache(ctx, cacheKey); err == nil {
			log.Printf("[Catalog] Cache hit for %q (%d candidates)", siteQuery, len(hits))
			return hits
		}
	}

	hits, err := s.provider.Search(ctx, siteQuery, s.overfetch)
	if err != nil {
		log.Printf("[Catalog] Search provider failed: %v", err)
		return nil
	}

	if s.cache != nil && len(hits) > 0 {
		if err := s.cache.Set(ctx, cacheKey, hits, s.cacheTTL); err != nil {
			log.Printf("[Catalog] Failed to cache candidates: %v", err)
		}
	}

	return hits
}

// hitsFromCache restores []domain.WebResult from the cache's generic storage
// via a JSON round trip.
func (s *Searcher) hitsFromCache(ctx context.Context, key string) ([]domain.WebResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var hits []domain.WebResult
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, domain.ErrCacheMiss
	}
	return hits, nil
}

// canonicalProductURL filters a hit to product-detail pages on the catalog
// host and strips query parameters and fragments for deduplication.
func (s *Searcher) canonicalProductURL(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if !strings.EqualFold(parsed.Host, s.host) && !strings.EqualFold(parsed.Host, "www."+s.host) {
		return "", false
	}
	if !strings.Contains(parsed.Path, s.productPath) {
		return "", false
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), true
}

// scrapeProduct fetches one product page and extracts its fields. Any
// failure, and any page missing title or image, discards the candidate.
func (s *Searcher) scrapeProduct(ctx context.Context, canonical string) (domain.Product, bool) {
	log.Printf("[Catalog] Processing product page: %s", canonical)

	doc, err := s.fetchDocument(ctx, canonical)
	if err != nil {
		log.Printf("[Catalog] Skipping %s: %v", canonical, err)
		return domain.Product{}, false
	}

	data := s.extractor.Extract(doc)
	if data.Title == domain.TitleNotAvailable || data.Image == "" {
		log.Printf("[Catalog] Discarding %s: missing title or image", canonical)
		return domain.Product{}, false
	}

	return domain.Product{
		ID:          productID(canonical),
		Title:       data.Title,
		Price:       data.Price,
		URL:         canonical,
		Image:       data.Image,
		Description: data.Description,
	}, true
}

// fetchDocument GETs a page with a browser user agent and parses it.
func (s *Searcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return doc, nil
}

// productID derives a stable cross-run identifier from the canonical URL.
func productID(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:8])
}
