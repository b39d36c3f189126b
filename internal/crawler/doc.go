// Package crawler discovers threads and extracts their images.
//
// # Components
//
//   - Classifier: decides from a URL alone whether it is a thread or a
//     listing, checks it belongs to the forum, and turns discovered links
//     into ThreadRefs. No network I/O.
//   - Document: HTML parsing on top of goquery, with charset detection so
//     Big5 and UTF-8 pages both yield proper titles.
//   - ListingExpander: fetches a listing page once and returns its distinct
//     link targets.
//   - ThreadParser: fetches a thread page, retrying immediately when the
//     forum serves an error or a page without a title, and returns the
//     sanitized title with the raw image references.
//
// # Usage
//
//	classifier := crawler.NewClassifier(cfg.BaseURL, cfg.SiteDomain)
//	expander := crawler.NewListingExpander(client)
//	parser := crawler.NewThreadParser(client, crawler.WithMaxAttempts(3))
//
//	links, err := expander.Expand(ctx, "http://ck101.com/beauty/")
//	for _, link := range links {
//	    if ref, ok := classifier.ThreadRef(link); ok {
//	        content, err := parser.Parse(ctx, ref)
//	        ...
//	    }
//	}
package crawler
