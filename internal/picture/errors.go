package picture

import "errors"

var (
	// ErrFetchFailure is returned when one image cannot be downloaded,
	// decoded or written. It never stops the rest of the crawl.
	ErrFetchFailure = errors.New("failed to fetch image")

	// ErrDecode is returned when the bytes are not a known image format.
	ErrDecode = errors.New("unknown image format")
)
