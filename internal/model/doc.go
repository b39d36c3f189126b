// Package model defines the data structures shared by the crawler, the image
// fetcher, the report writers and the history database.
//
// This package contains the following main types:
//   - CrawlTarget: a URL classified as a listing or a thread
//   - ThreadRef / ThreadContent: a thread id and what was parsed from its page
//   - DownloadOutcome: what happened to one image reference
//   - RunReport: the summary of one crawl
//
// The types are serializable to JSON for report output and database storage.
package model
