// Package storage lays out crawled images on disk.
//
// Every thread gets its own folder below the base directory, named
// "<thread id> - <title>". Image files keep the last path segment of their
// URL and are overwritten when a thread is crawled again.
//
//	layout := storage.NewLayout(cfg.OutputDir)
//	folder, err := layout.EnsureThreadFolder(ref.ID, content.Title)
package storage
