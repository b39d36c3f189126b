package model

// TargetKind discriminates the two page shapes the crawler understands.
type TargetKind int

const (
	// KindListing is a page enumerating many thread links.
	KindListing TargetKind = iota

	// KindThread is a single discussion page.
	KindThread
)

// String returns a human-readable representation of the kind.
func (k TargetKind) String() string {
	switch k {
	case KindListing:
		return "listing"
	case KindThread:
		return "thread"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Anything but "thread" is a listing.
func (k *TargetKind) UnmarshalText(text []byte) error {
	if string(text) == "thread" {
		*k = KindThread
	} else {
		*k = KindListing
	}
	return nil
}

// CrawlTarget is a URL plus the shape it was classified as.
type CrawlTarget struct {
	URL  string     `json:"url"`
	Kind TargetKind `json:"kind"`
}

// IsThread reports whether the target is a single thread.
func (t CrawlTarget) IsThread() bool {
	return t.Kind == KindThread
}

// ThreadRef identifies a thread by the numeric id embedded in its URL.
type ThreadRef struct {
	// ID is the numeric thread id as it appears in the URL.
	ID string `json:"id"`

	// URL is the absolute thread URL.
	URL string `json:"url"`
}

// ThreadContent is what the thread parser extracts from one thread page.
type ThreadContent struct {
	Ref ThreadRef `json:"ref"`

	// Title is the sanitized page title, safe to use as a path component.
	Title string `json:"title"`

	// ImageRefs are the raw image reference attribute values in document
	// order. They are not filtered; relative or malformed values are
	// rejected later by the image fetcher.
	ImageRefs []string `json:"image_refs"`
}

// ImageCandidate pairs an image URL with the file it would be saved to.
type ImageCandidate struct {
	SourceURL       string `json:"source_url"`
	DestinationPath string `json:"destination_path"`
}
