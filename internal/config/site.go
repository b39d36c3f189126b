package config

import "time"

// SiteSection describes the forum being crawled.
type SiteSection struct {
	// BaseURL is the origin prefixed to thread links that lack a scheme.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Domain is the host a root URL must belong to.
	Domain string `yaml:"domain,omitempty"`

	// UserAgent overrides the default browser identity.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie sent with every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ImageAttribute is the <img> attribute holding the image URL.
	ImageAttribute string `yaml:"imageAttribute,omitempty"`
}

// CrawlSection holds concurrency and network settings.
type CrawlSection struct {
	ThreadBatch int           `yaml:"threadBatch,omitempty"`
	ImageBatch  int           `yaml:"imageBatch,omitempty"`
	MaxAttempts int           `yaml:"maxAttempts,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	RateLimit   float64       `yaml:"rateLimit,omitempty"`
	RateBurst   int           `yaml:"rateBurst,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
}

// ImageSection holds the size filter and metadata settings.
type ImageSection struct {
	MinWidth    int   `yaml:"minWidth,omitempty"`
	MinHeight   int   `yaml:"minHeight,omitempty"`
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Exif toggles EXIF extraction. A pointer distinguishes "unset" from false.
	Exif *bool `yaml:"exif,omitempty"`
}

// OutputSection holds where results go.
type OutputSection struct {
	// Dir is the base download directory. "~/" is expanded.
	Dir string `yaml:"dir,omitempty"`

	// History toggles recording runs in the history database.
	History *bool `yaml:"history,omitempty"`
}

// File represents the structure of the .iloveck101 configuration file.
type File struct {
	Site   SiteSection   `yaml:"site,omitempty"`
	Crawl  CrawlSection  `yaml:"crawl,omitempty"`
	Image  ImageSection  `yaml:"image,omitempty"`
	Output OutputSection `yaml:"output,omitempty"`
}

// Apply copies every value set in the file onto cfg.
// Zero values in the file leave cfg untouched, so defaults survive
// a partially filled file.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	if f.Site.BaseURL != "" {
		cfg.BaseURL = f.Site.BaseURL
	}
	if f.Site.Domain != "" {
		cfg.SiteDomain = f.Site.Domain
	}
	if f.Site.UserAgent != "" {
		cfg.UserAgent = f.Site.UserAgent
	}
	if f.Site.Cookie != "" {
		cfg.Cookie = f.Site.Cookie
	}
	if len(f.Site.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range f.Site.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.Site.ImageAttribute != "" {
		cfg.ImageAttribute = f.Site.ImageAttribute
	}

	if f.Crawl.ThreadBatch != 0 {
		cfg.ThreadBatchSize = f.Crawl.ThreadBatch
	}
	if f.Crawl.ImageBatch != 0 {
		cfg.ImageBatchSize = f.Crawl.ImageBatch
	}
	if f.Crawl.MaxAttempts != 0 {
		cfg.MaxAttempts = f.Crawl.MaxAttempts
	}
	if f.Crawl.Timeout != 0 {
		cfg.Timeout = f.Crawl.Timeout
	}
	if f.Crawl.RateLimit != 0 {
		cfg.RateLimit = f.Crawl.RateLimit
	}
	if f.Crawl.RateBurst != 0 {
		cfg.RateBurst = f.Crawl.RateBurst
	}
	if f.Crawl.Proxy != "" {
		cfg.ProxyAddress = f.Crawl.Proxy
	}

	if f.Image.MinWidth != 0 {
		cfg.MinWidth = f.Image.MinWidth
	}
	if f.Image.MinHeight != 0 {
		cfg.MinHeight = f.Image.MinHeight
	}
	if f.Image.MaxBodySize != 0 {
		cfg.MaxBodySize = f.Image.MaxBodySize
	}
	if f.Image.Exif != nil {
		cfg.ReadExif = *f.Image.Exif
	}

	if f.Output.Dir != "" {
		cfg.OutputDir = ExpandHome(f.Output.Dir)
	}
	if f.Output.History != nil {
		cfg.SaveToDB = *f.Output.History
	}
}
