package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/personamatcher/backend/internal/domain"
	"github.com/personamatcher/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a recording domain.SearchProvider
type mockProvider struct {
	hits    []domain.WebResult
	err     error
	queries []string
}

func (m *mockProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

const productPage = `<html><head><title>%s</title>
<meta property="og:image" content="https://cdn.example.com/%s.jpg">
</head><body>
<h1 class="product__title">%s</h1>
<div class="price__regular"><span class="price-item">$%s</span></div>
<div class="product__description">%s</div>
</body></html>`

// newCatalogSite serves product pages keyed by slug. A slug mapped to an
// empty title renders a page without title or image.
func newCatalogSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for slug, title := range pages {
			if r.URL.Path == "/products/"+slug {
				if title == "" {
					fmt.Fprint(w, `<html><body><p>placeholder</p></body></html>`)
					return
				}
				fmt.Fprintf(w, productPage, title, slug, title, "199.00", "Hand painted leather bag.")
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestSearcher(t *testing.T, provider domain.SearchProvider, c domain.CacheRepository, baseURL string) *Searcher {
	t.Helper()
	s, err := NewSearcher(provider, c, SearcherConfig{BaseURL: baseURL})
	require.NoError(t, err)
	return s
}

func TestNewSearcher_InvalidBaseURL(t *testing.T) {
	_, err := NewSearcher(&mockProvider{}, nil, SearcherConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestSearchProducts_Success(t *testing.T) {
	site := newCatalogSite(t, map[string]string{
		"floral-tote":    "Hand Painted Floral Tote",
		"classic-bag":    "Classic Crossbody",
		"denim-friendly": "Earthy Tan Satchel",
	})

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: site.URL + "/products/floral-tote"},
		{URL: site.URL + "/products/classic-bag"},
		{URL: site.URL + "/products/denim-friendly"},
	}}

	s := newTestSearcher(t, provider, nil, site.URL)

	products, err := s.SearchProducts(context.Background(), "floral tote", 5)

	require.NoError(t, err)
	require.Len(t, products, 3)

	first := products[0]
	assert.Equal(t, "Hand Painted Floral Tote", first.Title)
	assert.Equal(t, "$199.00", first.Price)
	assert.Equal(t, site.URL+"/products/floral-tote", first.URL)
	assert.Equal(t, "https://cdn.example.com/floral-tote.jpg", first.Image)
	assert.Equal(t, "Hand painted leather bag.", first.Description)
	assert.NotEmpty(t, first.ID)

	// ID is a stable digest of the canonical URL.
	assert.Equal(t, productID(first.URL), first.ID)

	// Site-restricted query was sent to the provider.
	require.Len(t, provider.queries, 1)
	assert.Contains(t, provider.queries[0], "site:")
	assert.Contains(t, provider.queries[0], "floral tote")
}

func TestSearchProducts_BroadQueryOmitsKeywords(t *testing.T) {
	site := newCatalogSite(t, nil)
	provider := &mockProvider{}
	s := newTestSearcher(t, provider, nil, site.URL)

	_, err := s.SearchProducts(context.Background(), "", 5)

	require.NoError(t, err)
	require.Len(t, provider.queries, 1)
	assert.Equal(t, "site:"+s.host, provider.queries[0])
}

func TestSearchProducts_FiltersNonProductURLs(t *testing.T) {
	site := newCatalogSite(t, map[string]string{"real-bag": "Real Bag"})

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: site.URL + "/collections/all"},
		{URL: "https://othersite.example.com/products/foreign-bag"},
		{URL: "not a url at all ://"},
		{URL: site.URL + "/products/real-bag"},
	}}

	s := newTestSearcher(t, provider, nil, site.URL)

	products, err := s.SearchProducts(context.Background(), "bag", 5)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Real Bag", products[0].Title)
}

func TestSearchProducts_DeduplicatesByCanonicalURL(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprintf(w, productPage, "Variant Bag", "variant-bag", "Variant Bag", "99.00", "desc")
	}))
	t.Cleanup(server.Close)

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: server.URL + "/products/variant-bag?variant=111"},
		{URL: server.URL + "/products/variant-bag?variant=222"},
		{URL: server.URL + "/products/variant-bag"},
	}}

	s := newTestSearcher(t, provider, nil, server.URL)

	products, err := s.SearchProducts(context.Background(), "variant", 5)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, server.URL+"/products/variant-bag", products[0].URL)
	assert.Equal(t, 1, fetches)
}

func TestSearchProducts_SkipsFailingPages(t *testing.T) {
	site := newCatalogSite(t, map[string]string{"good-bag": "Good Bag"})

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: site.URL + "/products/missing-bag"}, // 404
		{URL: site.URL + "/products/good-bag"},
	}}

	s := newTestSearcher(t, provider, nil, site.URL)

	products, err := s.SearchProducts(context.Background(), "bag", 5)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Good Bag", products[0].Title)
}

func TestSearchProducts_DiscardsIncompleteProducts(t *testing.T) {
	site := newCatalogSite(t, map[string]string{
		"bare-page": "", // no title, no image
		"full-page": "Complete Bag",
	})

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: site.URL + "/products/bare-page"},
		{URL: site.URL + "/products/full-page"},
	}}

	s := newTestSearcher(t, provider, nil, site.URL)

	products, err := s.SearchProducts(context.Background(), "bag", 5)

	require.NoError(t, err)
	require.Len(t, products, 1)
	for _, p := range products {
		assert.True(t, p.Complete(), "returned product must have title and image")
	}
}

func TestSearchProducts_CapsAtMaxResults(t *testing.T) {
	pages := map[string]string{}
	var hits []domain.WebResult
	site := newCatalogSite(t, pages)
	for i := 0; i < 8; i++ {
		slug := fmt.Sprintf("bag-%d", i)
		pages[slug] = fmt.Sprintf("Bag %d", i)
		hits = append(hits, domain.WebResult{URL: site.URL + "/products/" + slug})
	}

	provider := &mockProvider{hits: hits}
	s := newTestSearcher(t, provider, nil, site.URL)

	products, err := s.SearchProducts(context.Background(), "bag", 3)

	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestSearchProducts_ProviderFailureDegradesToEmpty(t *testing.T) {
	provider := &mockProvider{err: errors.New("network down")}
	s := newTestSearcher(t, provider, nil, "https://shop.example.com")

	products, err := s.SearchProducts(context.Background(), "bag", 5)

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearchProducts_CachesProviderHits(t *testing.T) {
	site := newCatalogSite(t, map[string]string{"cached-bag": "Cached Bag"})

	provider := &mockProvider{hits: []domain.WebResult{
		{URL: site.URL + "/products/cached-bag"},
	}}

	s := newTestSearcher(t, provider, cache.NewMemoryCache(), site.URL)

	first, err := s.SearchProducts(context.Background(), "cached", 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := s.SearchProducts(context.Background(), "cached", 5)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// Second call was served from the candidate cache.
	assert.Len(t, provider.queries, 1)
}
