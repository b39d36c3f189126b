package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The site-specific values match the forum layout of ck101.com so that
// running without a config file crawls it.
const (
	// AppName is the application name used for XDG directory paths
	// and the default output folder name.
	AppName = "iloveck101"

	// DefaultBaseURL is the origin prefixed to thread links that have no scheme.
	DefaultBaseURL = "http://ck101.com/"

	// DefaultSiteDomain is the host a root URL must belong to.
	// Subdomains (e.g. www.ck101.com) are accepted as well.
	DefaultSiteDomain = "ck101.com"

	// DefaultUserAgent is the fixed client identity sent with every request.
	// The forum serves incomplete pages to unknown clients, so a desktop
	// browser identity is used instead of a tool-specific one.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/31.0.1650.57 Safari/537.36"

	// DefaultThreadBatchSize is the number of threads parsed concurrently.
	DefaultThreadBatchSize = 3

	// DefaultImageBatchSize is the number of images downloaded concurrently
	// for a single thread.
	DefaultImageBatchSize = 3

	// DefaultMinWidth is the minimum image width in pixels. Narrower images
	// are avatars, icons and smileys rather than content.
	DefaultMinWidth = 400

	// DefaultMinHeight is the minimum image height in pixels.
	DefaultMinHeight = 400

	// DefaultMaxAttempts is how many times a thread page is fetched before
	// giving up. The forum intermittently renders pages without a title.
	DefaultMaxAttempts = 3

	// MaxAttemptsLimit is the upper bound accepted for MaxAttempts.
	MaxAttemptsLimit = 10

	// DefaultTimeout is the timeout for a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how many bytes are read from one response.
	// Full-size photos posted on the forum stay well below this.
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB

	// DefaultRateLimit is the request rate limit in requests per second.
	// Zero disables rate limiting.
	DefaultRateLimit = 0

	// DefaultRateBurst is the burst size used when a rate limit is set.
	DefaultRateBurst = 1

	// DefaultImageAttribute is the attribute of <img> elements that holds
	// the full-size image URL. The forum lazy-loads images, so "src" points
	// to a placeholder and the real URL lives in "file".
	DefaultImageAttribute = "file"

	// LogFormatText selects slog's text handler.
	LogFormatText = "text"

	// LogFormatJSON selects slog's JSON handler.
	LogFormatJSON = "json"

	// LogFormatPretty selects the colourful terminal handler.
	LogFormatPretty = "pretty"
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the YAML config file and CLI flags, in that
// order, and passed to the crawl components at construction.
type Config struct {
	// RootURL is the listing or thread URL to crawl.
	RootURL string

	// BaseURL is the origin prefixed to thread links that lack a scheme.
	BaseURL string

	// SiteDomain is the host the root URL must belong to.
	SiteDomain string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Cookie is an optional raw Cookie header ("name=value; name2=value2").
	// Needed for threads that are only visible to logged-in members.
	Cookie string

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string

	// ImageAttribute is the <img> attribute holding image URLs.
	ImageAttribute string

	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// ThreadBatchSize is the number of threads parsed concurrently.
	ThreadBatchSize int

	// ImageBatchSize is the number of images fetched concurrently.
	ImageBatchSize int

	// MaxAttempts is the number of fetch attempts per thread page.
	MaxAttempts int

	// MinWidth and MinHeight are the inclusive minimum image dimensions.
	// Images below either bound are not saved.
	MinWidth  int
	MinHeight int

	// MaxBodySize is the maximum number of bytes read from a response.
	MaxBodySize int64

	// RateLimit is the maximum number of requests per second.
	// Zero means unlimited.
	RateLimit float64

	// RateBurst is the limiter burst size. Only used when RateLimit > 0.
	RateBurst int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// ReadExif enables recording camera metadata of saved JPEG images.
	ReadExif bool

	// OutputDir is the base directory that receives one folder per thread.
	// Defaults to ~/Pictures/iloveck101 (XDG pictures directory).
	OutputDir string

	// ConfigFilePath is the explicit path to the YAML config file.
	// If empty, .iloveck101 is searched in the current and home directory.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is one of LogFormatText, LogFormatJSON or LogFormatPretty.
	LogFormat string

	// Quiet disables the progress spinner.
	Quiet bool

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path of the report. Stdout when empty.
	ReportFile string

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		SiteDomain:      DefaultSiteDomain,
		UserAgent:       DefaultUserAgent,
		Headers:         make(map[string]string),
		ImageAttribute:  DefaultImageAttribute,
		Timeout:         DefaultTimeout,
		ThreadBatchSize: DefaultThreadBatchSize,
		ImageBatchSize:  DefaultImageBatchSize,
		MaxAttempts:     DefaultMaxAttempts,
		MinWidth:        DefaultMinWidth,
		MinHeight:       DefaultMinHeight,
		MaxBodySize:     DefaultMaxBodySize,
		RateLimit:       DefaultRateLimit,
		RateBurst:       DefaultRateBurst,
		ReadExif:        true,
		OutputDir:       DefaultOutputDir(),
		LogFormat:       LogFormatText,
		SaveToDB:        true,
		DBDir:           XDGDataDir(),
	}
}

// DefaultOutputDir returns the default base directory for downloaded images.
// On Linux: ~/Pictures/iloveck101 (or $XDG_PICTURES_DIR/iloveck101)
func DefaultOutputDir() string {
	return filepath.Join(xdg.UserDirs.Pictures, AppName)
}

// XDGDataDir returns the XDG data directory for iloveck101.
// On Linux: ~/.local/share/iloveck101
// On macOS: ~/Library/Application Support/iloveck101
// On Windows: %LOCALAPPDATA%\iloveck101
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for iloveck101.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
// Paths without the prefix are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors
// in errors.go.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootURL) == "" {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ThreadBatchSize <= 0 || c.ImageBatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MinWidth <= 0 || c.MinHeight <= 0 {
		return ErrInvalidMinSize
	}

	if c.MaxAttempts < 1 || c.MaxAttempts > MaxAttemptsLimit {
		return ErrInvalidMaxAttempts
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if strings.TrimSpace(c.SiteDomain) == "" {
		return ErrEmptyDomain
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
	default:
		return ErrInvalidLogFormat
	}

	return nil
}
