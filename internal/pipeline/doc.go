// Package pipeline runs a crawl from a root URL to saved images.
//
// Work is scheduled with RunBounded: tasks run in fixed batches of a
// configured size, each batch waits for all of its members, and a failing
// member never cancels its siblings.
//
// The Orchestrator drives the crawl in two phases. First every thread is
// parsed, a few at a time; any thread that cannot be parsed aborts the
// run before a single thread folder is created. Then, thread by thread,
// the folder is created and its images are fetched in batches. Image
// failures are recorded in the run report and do not stop the crawl.
package pipeline
