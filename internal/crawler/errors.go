package crawler

import "errors"

// Crawl errors. Every one of them is fatal for the whole run.
var (
	// ErrInvalidDomain is returned when the root URL does not belong to the forum.
	ErrInvalidDomain = errors.New("this is not ck101 url")

	// ErrListingFetch is returned when a listing page cannot be fetched.
	// Listings are not retried.
	ErrListingFetch = errors.New("can not fetch the listing page")

	// ErrParse is returned when a thread page still fails after every attempt.
	ErrParse = errors.New("oops, can not fetch the page")

	// errNoTitle marks an attempt whose page had no usable <title>.
	errNoTitle = errors.New("page has no title")
)
