package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/iloveck101/internal/httpclient"
)

// Getter fetches a URL. *httpclient.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*httpclient.Response, error)
}

// ListingExpander turns a listing page into its set of link targets.
type ListingExpander struct {
	client Getter
	logger *slog.Logger
}

// ListingOption configures a ListingExpander.
type ListingOption func(*ListingExpander)

// WithListingLogger sets the logger.
func WithListingLogger(logger *slog.Logger) ListingOption {
	return func(e *ListingExpander) {
		e.logger = logger
	}
}

// NewListingExpander creates a ListingExpander fetching through client.
func NewListingExpander(client Getter, opts ...ListingOption) *ListingExpander {
	e := &ListingExpander{client: client}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Expand fetches listingURL once and returns its distinct <a href> values
// in first-seen order. Relative links are returned as they appear.
// Any failure, including a non-success status, wraps ErrListingFetch.
func (e *ListingExpander) Expand(ctx context.Context, listingURL string) ([]string, error) {
	resp, err := e.client.Get(ctx, listingURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrListingFetch, err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingFetch, err)
	}

	doc, err := ParseDocument(resp.Body, resp.ContentType())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingFetch, err)
	}

	links := doc.Links()
	seen := make(map[string]bool, len(links))
	unique := make([]string, 0, len(links))
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		unique = append(unique, link)
	}

	e.logger.Debug("listing expanded",
		"url", listingURL,
		"links", len(links),
		"distinct", len(unique),
	)

	return unique, nil
}
