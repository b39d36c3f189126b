// Package database records crawl runs in a local SQLite file.
//
// Each run is stored twice: as a summary row in the runs table, used for
// listing history, and as the complete JSON run report, used to render a
// past run again. Saved and dropped images are stored one row per image.
//
// The history is an audit trail only. Crawls never consult it; every run
// fetches and overwrites as if it were the first.
//
// SQLite is provided by modernc.org/sqlite, which needs no cgo.
package database
