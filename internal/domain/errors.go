package domain

import "errors"

var (
	// ErrSearchProviderFailure is returned when the external search provider
	// request fails. The catalog searcher degrades it to zero candidates.
	ErrSearchProviderFailure = errors.New("search provider request failed")

	// ErrNoKeywords is returned when no search keywords could be derived
	// from a style description.
	ErrNoKeywords = errors.New("no search keywords could be derived")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
