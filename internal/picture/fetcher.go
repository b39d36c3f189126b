package picture

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/iloveck101/internal/httpclient"
	"github.com/nao1215/iloveck101/internal/model"
	"github.com/nao1215/iloveck101/internal/storage"
)

// Default minimum dimensions of a kept image.
const (
	DefaultMinWidth  = 400
	DefaultMinHeight = 400
)

// Getter fetches a URL. *httpclient.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*httpclient.Response, error)
}

// Fetcher downloads images and saves those that are large enough.
type Fetcher struct {
	client    Getter
	minWidth  int
	minHeight int
	readExif  bool
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMinSize sets the minimum width and height. Non-positive values are ignored.
func WithMinSize(width, height int) Option {
	return func(f *Fetcher) {
		if width > 0 {
			f.minWidth = width
		}
		if height > 0 {
			f.minHeight = height
		}
	}
}

// WithExif enables copying camera EXIF tags into outcomes of saved images.
func WithExif(enabled bool) Option {
	return func(f *Fetcher) {
		f.readExif = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher downloading through client.
func NewFetcher(client Getter, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		minWidth:  DefaultMinWidth,
		minHeight: DefaultMinHeight,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// FileName returns the file name an image reference is saved under: the
// last segment of its URL path, query and fragment excluded. ok is false
// for references that are not absolute http(s) URLs, have no file name, or
// whose name holds a backslash.
func FileName(imageURL string) (name string, ok bool) {
	lower := strings.ToLower(imageURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", false
	}

	u, err := url.Parse(imageURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", false
	}

	name = path.Base(u.Path)
	if name == "." || name == "/" || name == ".." || strings.Contains(name, "\\") {
		return "", false
	}
	return name, true
}

// FetchAndMaybeSave handles one image reference of a thread.
//
// Invalid references are skipped without a request. Images below the
// minimum size are dropped. Everything else is written to destFolder,
// replacing a file of the same name. The returned error is non-nil only
// for ReasonFailed outcomes, where it wraps ErrFetchFailure, and for
// context cancellation.
func (f *Fetcher) FetchAndMaybeSave(ctx context.Context, imageURL, destFolder string) (model.DownloadOutcome, error) {
	name, ok := FileName(imageURL)
	if !ok {
		f.logger.Info("skipping invalid image url", "url", imageURL)
		return model.NewOutcome(imageURL, model.ReasonInvalidURL), nil
	}

	resp, err := f.client.Get(ctx, imageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.NewOutcome(imageURL, model.ReasonFailed), ctxErr
		}
		return f.failed(imageURL, err)
	}
	if err := resp.Err(); err != nil {
		return f.failed(imageURL, err)
	}

	info, err := Inspect(resp.Body)
	if err != nil {
		return f.failed(imageURL, err)
	}

	if !info.LargeEnough(f.minWidth, f.minHeight) {
		f.logger.Info("image is too small",
			"url", imageURL,
			"width", info.Width,
			"height", info.Height,
		)
		outcome := model.NewOutcome(imageURL, model.ReasonTooSmall)
		outcome.Format = info.Format
		outcome.Width = info.Width
		outcome.Height = info.Height
		outcome.Bytes = len(resp.Body)
		return outcome, nil
	}

	written, err := storage.WriteFile(destFolder, name, resp.Body)
	if err != nil {
		return f.failed(imageURL, err)
	}

	sum := sha3.Sum256(resp.Body)
	outcome := model.NewOutcome(imageURL, model.ReasonSaved)
	outcome.Path = written
	outcome.Format = info.Format
	outcome.Width = info.Width
	outcome.Height = info.Height
	outcome.Bytes = len(resp.Body)
	outcome.Digest = hex.EncodeToString(sum[:])

	if f.readExif {
		camera, err := ReadExif(resp.Body)
		if err != nil {
			f.logger.Debug("ignoring broken EXIF", "url", imageURL, "error", err)
		}
		if len(camera) > 0 {
			outcome.Camera = camera
		}
	}

	f.logger.Info("saved image",
		"path", written,
		"width", info.Width,
		"height", info.Height,
	)

	return outcome, nil
}

func (f *Fetcher) failed(imageURL string, cause error) (model.DownloadOutcome, error) {
	err := fmt.Errorf("%w: %s: %w", ErrFetchFailure, imageURL, cause)
	f.logger.Warn("image failed", "url", imageURL, "error", cause)

	outcome := model.NewOutcome(imageURL, model.ReasonFailed)
	outcome.Error = err.Error()
	return outcome, err
}
