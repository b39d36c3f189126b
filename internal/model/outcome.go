package model

import "encoding/json"

// Reason explains what happened to one image reference.
type Reason int

const (
	// ReasonSaved means the image met the size threshold and was written.
	ReasonSaved Reason = iota

	// ReasonTooSmall means the image was fetched and decoded but was below
	// the minimum width or height. Nothing was written.
	ReasonTooSmall

	// ReasonInvalidURL means the reference was not an absolute http(s) URL
	// with a file name. No request was made.
	ReasonInvalidURL

	// ReasonFailed means the fetch or decode failed for this image only.
	ReasonFailed
)

// String returns the snake_case name used in reports and the database.
func (r Reason) String() string {
	switch r {
	case ReasonSaved:
		return "saved"
	case ReasonTooSmall:
		return "too_small"
	case ReasonInvalidURL:
		return "invalid_url"
	case ReasonFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseReason is the inverse of Reason.String.
// Unknown names map to ReasonFailed.
func ParseReason(s string) Reason {
	switch s {
	case "saved":
		return ReasonSaved
	case "too_small":
		return ReasonTooSmall
	case "invalid_url":
		return ReasonInvalidURL
	default:
		return ReasonFailed
	}
}

// MarshalJSON encodes the reason by name.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a reason name.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseReason(s)
	return nil
}

// DownloadOutcome is the result of handling one image reference.
type DownloadOutcome struct {
	// SourceURL is the raw image reference.
	SourceURL string `json:"source_url"`

	// Kept is true only for ReasonSaved.
	Kept bool `json:"kept"`

	Reason Reason `json:"reason"`

	// Path is the written file. Empty unless Kept.
	Path string `json:"path,omitempty"`

	// Format, Width and Height come from the decoded image header.
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// Bytes is the size of the downloaded body.
	Bytes int `json:"bytes,omitempty"`

	// Digest is the hex SHA3-256 of saved image bytes.
	Digest string `json:"digest,omitempty"`

	// Camera holds selected EXIF fields (Make, Model, ...) of saved images.
	Camera map[string]string `json:"camera,omitempty"`

	// Error describes a ReasonFailed outcome.
	Error string `json:"error,omitempty"`
}

// NewOutcome creates an outcome with Kept derived from reason.
func NewOutcome(sourceURL string, reason Reason) DownloadOutcome {
	return DownloadOutcome{
		SourceURL: sourceURL,
		Kept:      reason == ReasonSaved,
		Reason:    reason,
	}
}
