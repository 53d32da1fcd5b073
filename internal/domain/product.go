package domain

// Sentinel display values used when a field cannot be extracted from a page.
const (
	TitleNotAvailable = "N/A"
	PriceNotAvailable = "Price not available"
)

// Product represents a single catalog item scraped from a product page.
// A Product is only materialized when both Title and Image were extracted;
// candidates missing either are discarded by the catalog searcher.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"` // display text, PriceNotAvailable when absent
	URL         string `json:"url"`   // canonical URL, query params stripped
	Image       string `json:"image"` // absolute URL
	Description string `json:"description"`

	// Error marks a placeholder result carrying an error description instead
	// of product data. Set only by the orchestrator's empty-keyword guard.
	Error string `json:"error,omitempty"`
}

// Complete reports whether the product carries the fields required to be
// returned to a caller.
func (p *Product) Complete() bool {
	return p.Title != "" && p.Title != TitleNotAvailable && p.Image != ""
}

// StyleProfile is the output of the recommendation engine: search keywords in
// relevance order (first occurrence wins, no duplicates) plus human-readable
// rationale text.
type StyleProfile struct {
	Keywords  []string `json:"keywords"`
	Rationale string   `json:"rationale"`
}

// WebResult is a single organic hit from the external search provider.
type WebResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// TextRequest is the payload for text-based recommendation requests.
type TextRequest struct {
	InputText string `json:"input_text" binding:"required"`
}
