package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/personamatcher/backend/internal/domain"
)

// StyleRecommender derives search keywords from a style description.
type StyleRecommender interface {
	Recommend(description string) *domain.StyleProfile
}

// DiscoveryServiceConfig holds configuration for the discovery service
type DiscoveryServiceConfig struct {
	MaxResults int
}

// DiscoveryService drives the recommendation engine's keywords through the
// catalog searcher using a staged fallback ladder: narrow first, broaden on
// empty results, and finally filter a broad site search by keyword.
type DiscoveryService struct {
	engine     StyleRecommender
	catalog    domain.CatalogSearcher
	maxResults int
}

// NewDiscoveryService creates a new discovery service with dependencies
func NewDiscoveryService(
	engine StyleRecommender,
	catalog domain.CatalogSearcher,
	config DiscoveryServiceConfig,
) *DiscoveryService {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &DiscoveryService{
		engine:     engine,
		catalog:    catalog,
		maxResults: maxResults,
	}
}

// FindProducts returns catalog products matching a style description.
// Ladder: first 3 keywords -> first 2 -> first 1 -> broad search filtered by
// keyword. Later stages run only when every earlier stage returned nothing;
// the first non-empty stage wins. The error return is reserved for unexpected
// internal failures — exhausted strategies yield an empty slice, nil error.
func (s *DiscoveryService) FindProducts(ctx context.Context, description string) ([]domain.Product, error) {
	profile := s.engine.Recommend(description)
	keywords := profile.Keywords

	if len(keywords) == 0 {
		// Unreachable with the default engine (it always falls back to the
		// classic bucket), but a custom recommender may yield nothing. Return
		// a marker result instead of an error so callers can render a
		// graceful empty state.
		log.Printf("[Discovery] no keywords derived from description")
		return []domain.Product{
			{Error: domain.ErrNoKeywords.Error()},
		}, nil
	}

	log.Printf("[Discovery] derived %d keywords: %s", len(keywords), strings.Join(keywords, ", "))

	// Strict stages of shrinking specificity.
	for _, count := range []int{3, 2, 1} {
		query := strings.Join(keywords[:min(count, len(keywords))], " ")

		products, err := s.catalog.SearchProducts(ctx, query, s.maxResults)
		if err != nil {
			log.Printf("[Discovery] search %q failed: %v", query, err)
			continue
		}
		if len(products) > 0 {
			log.Printf("[Discovery] query %q matched %d products", query, len(products))
			return products, nil
		}
		log.Printf("[Discovery] query %q returned no products, broadening", query)
	}

	// Broad fallback: unrestricted site search, filtered by keyword.
	broad, err := s.catalog.SearchProducts(ctx, "", s.maxResults)
	if err != nil {
		log.Printf("[Discovery] broad search failed: %v", err)
		return []domain.Product{}, nil
	}

	filtered := filterByKeywords(broad, keywords)
	log.Printf("[Discovery] broad search returned %d products, %d after keyword filter",
		len(broad), len(filtered))

	return filtered, nil
}

// filterByKeywords keeps products whose title or description contains any of
// the keywords, case-insensitively.
func filterByKeywords(products []domain.Product, keywords []string) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	for _, product := range products {
		combined := strings.ToLower(product.Title + " " + product.Description)
		for _, keyword := range keywords {
			if strings.Contains(combined, strings.ToLower(keyword)) {
				filtered = append(filtered, product)
				break
			}
		}
	}
	return filtered
}
