package picture

import (
	"bytes"
	"fmt"
	"image"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Info is the decoded image header.
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect decodes the image header of data.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// LargeEnough reports whether the image is at least minWidth wide and
// minHeight high.
func (i Info) LargeEnough(minWidth, minHeight int) bool {
	return i.Width >= minWidth && i.Height >= minHeight
}

// cameraTags are the EXIF tags copied into an outcome.
var cameraTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTimeOriginal": true,
}

// ReadExif returns the camera related EXIF tags of data.
// Images without EXIF yield an empty map and no error.
func ReadExif(data []byte) (map[string]string, error) {
	tags := make(map[string]string)

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return tags, nil //nolint:nilerr // no EXIF block is normal
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return tags, fmt.Errorf("failed to parse EXIF: %w", err)
	}

	for _, entry := range entries {
		if cameraTags[entry.TagName] && entry.Formatted != "" {
			tags[entry.TagName] = entry.Formatted
		}
	}
	return tags, nil
}
