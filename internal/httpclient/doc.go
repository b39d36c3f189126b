// Package httpclient provides the HTTP client shared by every fetch of a
// crawl: listing pages, thread pages and images.
//
// A single Client is safe for concurrent use and is the unit that bounds
// real parallelism through its connection pool. Every request carries the
// configured User-Agent, optional cookie and custom headers. Optional
// features are a SOCKS5 proxy (golang.org/x/net/proxy) and a request rate
// limit (golang.org/x/time/rate).
//
// Get returns the status code and body for any status; callers decide what
// a non-success status means for them via Response.Err.
package httpclient
