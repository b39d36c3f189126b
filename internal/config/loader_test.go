package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfigFile tests loading the YAML config file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.iloveck101")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads every section", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".iloveck101")
		content := `site:
  baseURL: "https://www.ck101.com/"
  domain: "www.ck101.com"
  cookie: "auth=xyz"
  headers:
    Referer: "https://www.ck101.com/"
  imageAttribute: "zoomfile"
crawl:
  threadBatch: 5
  imageBatch: 8
  maxAttempts: 4
  timeout: 45s
  rateLimit: 2.5
  rateBurst: 3
  proxy: "127.0.0.1:9050"
image:
  minWidth: 640
  minHeight: 480
  maxBodySize: 1048576
  exif: false
output:
  dir: "/srv/ck101"
  history: false
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if file.Site.Domain != "www.ck101.com" {
			t.Errorf("expected domain www.ck101.com, got %q", file.Site.Domain)
		}
		if file.Site.Headers["Referer"] != "https://www.ck101.com/" {
			t.Error("expected Referer header")
		}
		if file.Crawl.Timeout != 45*time.Second {
			t.Errorf("expected timeout 45s, got %v", file.Crawl.Timeout)
		}
		if file.Crawl.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", file.Crawl.RateLimit)
		}
		if file.Image.Exif == nil || *file.Image.Exif {
			t.Error("expected exif to be explicitly false")
		}
		if file.Output.History == nil || *file.Output.History {
			t.Error("expected history to be explicitly false")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".iloveck101")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Headers map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".iloveck101")
		if err := os.WriteFile(configPath, []byte("crawl:\n  threadBatch: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if file.Site.Headers == nil {
			t.Error("expected Headers map to be initialized")
		}
	})
}

// TestFileApply tests merging a config file over the defaults.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("set values override defaults", func(t *testing.T) {
		t.Parallel()

		exif := false
		history := false
		file := &File{
			Site: SiteSection{
				Domain:  "example.com",
				Cookie:  "session=1",
				Headers: map[string]string{"X-Test": "1"},
			},
			Crawl:  CrawlSection{ThreadBatch: 7, Timeout: time.Minute, Proxy: "127.0.0.1:1080"},
			Image:  ImageSection{MinWidth: 800, Exif: &exif},
			Output: OutputSection{Dir: "/data/pics", History: &history},
		}

		cfg := NewConfig()
		file.Apply(cfg)

		if cfg.SiteDomain != "example.com" {
			t.Errorf("expected domain example.com, got %q", cfg.SiteDomain)
		}
		if cfg.Cookie != "session=1" {
			t.Errorf("expected cookie, got %q", cfg.Cookie)
		}
		if cfg.Headers["X-Test"] != "1" {
			t.Error("expected X-Test header")
		}
		if cfg.ThreadBatchSize != 7 {
			t.Errorf("expected thread batch 7, got %d", cfg.ThreadBatchSize)
		}
		if cfg.ImageBatchSize != DefaultImageBatchSize {
			t.Errorf("expected untouched image batch, got %d", cfg.ImageBatchSize)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("expected timeout 1m, got %v", cfg.Timeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("expected proxy, got %q", cfg.ProxyAddress)
		}
		if cfg.MinWidth != 800 || cfg.MinHeight != DefaultMinHeight {
			t.Errorf("expected 800x%d, got %dx%d", DefaultMinHeight, cfg.MinWidth, cfg.MinHeight)
		}
		if cfg.ReadExif {
			t.Error("expected ReadExif false")
		}
		if cfg.OutputDir != "/data/pics" {
			t.Errorf("expected output dir /data/pics, got %q", cfg.OutputDir)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB false")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)

		want := NewConfig()
		if cfg.BaseURL != want.BaseURL || cfg.MaxAttempts != want.MaxAttempts || cfg.ReadExif != want.ReadExif {
			t.Error("expected defaults to be preserved")
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		var file *File
		cfg := NewConfig()
		file.Apply(cfg)
		if cfg.SiteDomain != DefaultSiteDomain {
			t.Errorf("expected default domain, got %q", cfg.SiteDomain)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("site: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}
