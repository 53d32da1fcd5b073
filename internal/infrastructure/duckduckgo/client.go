package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/personamatcher/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a results page is parsed.
const maxResponseBytes = 2 << 20 // 2 MiB

// ClientConfig holds configuration for the DuckDuckGo client
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	UserAgent     string
}

// Client performs text searches against the DuckDuckGo HTML endpoint and
// parses the organic results. It implements domain.SearchProvider.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new DuckDuckGo search client
func NewClient(config ClientConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://html.duckduckgo.com/html/"
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	perSecond := config.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1.0
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 3
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Search runs a text query and returns up to maxResults organic hits.
// Transient failures (5xx, 429, transport errors) are retried up to 3 times
// with exponential backoff.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error) {
	log.Printf("[DDG] Search called with query: %q", query)

	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", "us-en")

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, form)
		if err != nil {
			log.Printf("[DDG] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			log.Printf("[DDG] Unexpected status (attempt %d): %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchProviderFailure, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		results, err := parseResults(io.LimitReader(resp.Body, maxResponseBytes), maxResults)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse results page: %w", err)
		}

		log.Printf("[DDG] Returned %d results for query: %q", len(results), query)
		return results, nil
	}

	log.Printf("[DDG] All retries failed for query: %q", query)
	return nil, lastErr
}

// doRequest posts the search form with proper headers
func (c *Client) doRequest(ctx context.Context, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchProviderFailure, err)
	}

	return resp, nil
}

// parseResults extracts organic results from the HTML results page.
func parseResults(body io.Reader, maxResults int) ([]domain.WebResult, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var results []domain.WebResult
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}

		anchor := sel.Find("a.result__a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return true
		}

		target := resolveRedirect(href)
		if target == "" {
			return true
		}

		results = append(results, domain.WebResult{
			URL:     target,
			Title:   strings.TrimSpace(anchor.Text()),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
		})
		return true
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<encoded> redirect links.
// Direct links pass through unchanged; protocol-relative links get https.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return href
}

// exponentialBackoff returns the sleep duration before the next retry
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<attempt)) * time.Millisecond
}
