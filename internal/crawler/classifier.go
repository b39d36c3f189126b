package crawler

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/iloveck101/internal/model"
)

// threadPattern matches the last path segment of a thread URL,
// e.g. "thread-2818521-1-1.html".
var threadPattern = regexp.MustCompile(`^thread-(\d+)-`)

// Classifier classifies URLs by their shape. It never touches the network.
type Classifier struct {
	// baseURL is the origin prefixed to links without a scheme.
	baseURL string

	// domain is the forum host, lower case.
	domain string
}

// NewClassifier creates a Classifier for the forum at baseURL.
// domain is the host root URLs must belong to.
func NewClassifier(baseURL, domain string) *Classifier {
	return &Classifier{
		baseURL: baseURL,
		domain:  strings.ToLower(strings.TrimSpace(domain)),
	}
}

// BelongsToSite reports whether rawURL points at the forum: its host must
// equal the domain or be a subdomain of it. A missing scheme is tolerated.
func (c *Classifier) BelongsToSite(rawURL string) bool {
	rawURL = NormalizeRoot(rawURL)
	if rawURL == "" || c.domain == "" {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if host == c.domain {
		return true
	}
	// IP addresses have no subdomains.
	if net.ParseIP(host) != nil {
		return false
	}
	return strings.HasSuffix(host, "."+c.domain)
}

// NormalizeRoot trims rawURL and prefixes "http://" when it has no scheme,
// so that "ck101.com/thread-1-1-1.html" is fetched from the forum rather
// than resolved as a relative link.
func NormalizeRoot(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "http://" + rawURL
}

// Classify decides the shape of the root URL. Any URL containing "thread"
// is taken as a single thread; everything else is a listing to expand.
func (c *Classifier) Classify(rawURL string) model.CrawlTarget {
	kind := model.KindListing
	if strings.Contains(rawURL, "thread") {
		kind = model.KindThread
	}
	return model.CrawlTarget{URL: rawURL, Kind: kind}
}

// ThreadRef turns a link into a ThreadRef. Links without an http(s) scheme
// are resolved against the base URL first. ok is false when the last path
// segment does not look like "thread-<digits>-...", which is the normal
// case for navigation and advertising links on a listing page.
func (c *Classifier) ThreadRef(link string) (ref model.ThreadRef, ok bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return model.ThreadRef{}, false
	}

	absolute := link
	if !HasHTTPScheme(link) {
		absolute = strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(link, "/")
	}

	m := threadPattern.FindStringSubmatch(lastSegment(absolute))
	if m == nil {
		return model.ThreadRef{}, false
	}

	return model.ThreadRef{ID: m[1], URL: absolute}, true
}

// HasHTTPScheme reports whether s starts with http:// or https://,
// ignoring case.
func HasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// lastSegment returns everything after the final '/'.
func lastSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
