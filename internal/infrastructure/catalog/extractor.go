package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/personamatcher/backend/internal/domain"
)

// Selector preference lists for product-page fields. Heterogeneous storefront
// themes use different class names; selectors are tried in order and the
// first one yielding a non-empty element wins.
var (
	titleSelectors       = []string{"h1.product__title", "h1.product-title", "h1", "title"}
	priceSelectors       = []string{".price__regular .price-item", ".product__price", ".price", ".product-price"}
	descriptionSelectors = []string{".product__description", ".product-description", ".product__info-content"}
)

// imageSelectors is the last-resort CSS tier for image extraction.
var imageSelectors = []string{
	"figure.product__media img",
	".product-gallery__image img",
	".product-image-main img",
	"img.product-gallery__image",
	"img.product__image",
}

// pageData holds the raw fields extracted from one product page.
type pageData struct {
	Title       string
	Price       string
	Image       string
	Description string
}

// PageExtractor pulls structured product fields out of partially-structured
// product-page HTML. Image extraction is a prioritized strategy list:
// JSON-LD product data, then the Open Graph meta tag, then a CSS selector
// scan. Each strategy returns "" to fall through to the next.
type PageExtractor struct {
	base       *url.URL
	strategies []func(*goquery.Document) string
}

// NewPageExtractor creates an extractor resolving relative image URLs against
// the given site base URL.
func NewPageExtractor(baseURL string) (*PageExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	e := &PageExtractor{base: base}
	e.strategies = []func(*goquery.Document) string{
		imageFromJSONLD,
		imageFromOpenGraph,
		e.imageFromSelectors,
	}
	return e, nil
}

// Extract reads product fields from a parsed document. Missing fields get
// their sentinel values; it never fails.
func (e *PageExtractor) Extract(doc *goquery.Document) pageData {
	data := pageData{
		Title: domain.TitleNotAvailable,
		Price: domain.PriceNotAvailable,
	}

	if title := firstText(doc, titleSelectors); title != "" {
		data.Title = title
	}
	if price := firstText(doc, priceSelectors); price != "" {
		data.Price = price
	}
	data.Description = firstText(doc, descriptionSelectors)

	for _, strategy := range e.strategies {
		if image := strategy(doc); image != "" {
			data.Image = image
			break
		}
	}

	return data
}

// firstText returns the trimmed text of the first selector in the preference
// list that matches a non-empty element.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// jsonLDBlock is the subset of a JSON-LD node needed for image extraction.
// The image field may be a plain string or a list of strings.
type jsonLDBlock struct {
	Type  string          `json:"@type"`
	Image json.RawMessage `json:"image"`
}

// imageFromJSONLD reads the image field of an embedded JSON-LD Product block.
func imageFromJSONLD(doc *goquery.Document) string {
	var image string

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		blocks, err := decodeJSONLD(sel.Text())
		if err != nil {
			log.Printf("[Catalog] Could not parse JSON-LD block: %v", err)
			return true
		}

		for _, block := range blocks {
			if block.Type != "Product" {
				continue
			}
			if img := decodeImageField(block.Image); img != "" {
				image = img
				return false
			}
		}
		return true
	})

	return image
}

// decodeJSONLD accepts either a single JSON-LD object or a top-level array.
func decodeJSONLD(raw string) ([]jsonLDBlock, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var blocks []jsonLDBlock
		if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
			return nil, err
		}
		return blocks, nil
	}

	var block jsonLDBlock
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		return nil, err
	}
	return []jsonLDBlock{block}, nil
}

// decodeImageField handles image values that are a string or a string list.
func decodeImageField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}

	return ""
}

// imageFromOpenGraph reads the social-preview image meta tag.
func imageFromOpenGraph(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// imageFromSelectors scans the CSS selector tier for an image element,
// preferring the lazy-load attribute over the eager one, and resolves the
// source against the site base URL.
func (e *PageExtractor) imageFromSelectors(doc *goquery.Document) string {
	for _, selector := range imageSelectors {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}

		src, ok := img.Attr("data-src")
		if !ok || strings.TrimSpace(src) == "" {
			src, _ = img.Attr("src")
		}

		if resolved := e.resolveImageURL(src); resolved != "" {
			return resolved
		}
	}
	return ""
}

// resolveImageURL turns protocol-relative and root-relative sources into
// absolute URLs.
func (e *PageExtractor) resolveImageURL(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}

	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return e.base.ResolveReference(ref).String()
}
