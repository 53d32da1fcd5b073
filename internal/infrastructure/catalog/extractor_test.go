package catalog

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/personamatcher/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newTestExtractor(t *testing.T) *PageExtractor {
	t.Helper()
	e, err := NewPageExtractor("https://shop.example.com")
	require.NoError(t, err)
	return e
}

func TestNewPageExtractor_InvalidBase(t *testing.T) {
	_, err := NewPageExtractor("not a url")
	assert.Error(t, err)
}

func TestExtract_TitlePreferenceOrder(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("prefers themed heading", func(t *testing.T) {
		doc := mustDoc(t, `<html><head><title>Page Title</title></head>
			<body><h1 class="product__title">Floral Tote</h1><h1>Other</h1></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "Floral Tote", data.Title)
	})

	t.Run("falls back to document title", func(t *testing.T) {
		doc := mustDoc(t, `<html><head><title>Fallback Title</title></head><body><p>no headings</p></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "Fallback Title", data.Title)
	})

	t.Run("sentinel when nothing matches", func(t *testing.T) {
		doc := mustDoc(t, `<html><body><p>bare page</p></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, domain.TitleNotAvailable, data.Title)
	})
}

func TestExtract_Price(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("reads themed price container", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
			<div class="price__regular"><span class="price-item">$249.00</span></div>
		</body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "$249.00", data.Price)
	})

	t.Run("sentinel when absent", func(t *testing.T) {
		doc := mustDoc(t, `<html><body><h1>Bag</h1></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, domain.PriceNotAvailable, data.Price)
	})
}

func TestExtract_Description(t *testing.T) {
	e := newTestExtractor(t)

	doc := mustDoc(t, `<html><body>
		<div class="product__description">Hand painted leather.</div>
	</body></html>`)
	data := e.Extract(doc)
	assert.Equal(t, "Hand painted leather.", data.Description)

	empty := e.Extract(mustDoc(t, `<html><body></body></html>`))
	assert.Equal(t, "", empty.Description)
}

func TestExtract_ImageFromJSONLD(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("string image field", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{"@type":"Product","name":"Bag","image":"https://cdn.example.com/bag.jpg"}</script>
			<meta property="og:image" content="https://cdn.example.com/og.jpg">
		</head><body></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://cdn.example.com/bag.jpg", data.Image)
	})

	t.Run("list image field takes first element", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{"@type":"Product","image":["https://cdn.example.com/1.jpg","https://cdn.example.com/2.jpg"]}</script>
		</head><body></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://cdn.example.com/1.jpg", data.Image)
	})

	t.Run("top-level array of blocks", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">[{"@type":"BreadcrumbList"},{"@type":"Product","image":"https://cdn.example.com/arr.jpg"}]</script>
		</head><body></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://cdn.example.com/arr.jpg", data.Image)
	})

	t.Run("non-product blocks are ignored", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{"@type":"Organization","image":"https://cdn.example.com/logo.jpg"}</script>
		</head><body></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "", data.Image)
	})

	t.Run("malformed block falls through to og image", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{not json at all</script>
			<meta property="og:image" content="https://cdn.example.com/og.jpg">
		</head><body></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://cdn.example.com/og.jpg", data.Image)
	})
}

func TestExtract_ImageFromOpenGraph(t *testing.T) {
	e := newTestExtractor(t)

	doc := mustDoc(t, `<html><head>
		<meta property="og:image" content="https://cdn.example.com/preview.jpg">
	</head><body>
		<figure class="product__media"><img src="/ignored.jpg"></figure>
	</body></html>`)
	data := e.Extract(doc)
	assert.Equal(t, "https://cdn.example.com/preview.jpg", data.Image)
}

func TestExtract_ImageFromSelectors(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("resolves root-relative source", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
			<figure class="product__media"><img src="/cdn/bag.jpg"></figure>
		</body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://shop.example.com/cdn/bag.jpg", data.Image)
	})

	t.Run("resolves protocol-relative source", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
			<div class="product-gallery__image"><img src="//cdn.example.com/bag.jpg"></div>
		</body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://cdn.example.com/bag.jpg", data.Image)
	})

	t.Run("prefers lazy-load attribute", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
			<figure class="product__media"><img src="/placeholder.gif" data-src="/cdn/real.jpg"></figure>
		</body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "https://shop.example.com/cdn/real.jpg", data.Image)
	})

	t.Run("empty when no strategy matches", func(t *testing.T) {
		doc := mustDoc(t, `<html><body><img class="hero" src="/hero.jpg"></body></html>`)
		data := e.Extract(doc)
		assert.Equal(t, "", data.Image)
	})
}
