package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matryer/try"
	"github.com/nao1215/iloveck101/internal/model"
)

// Defaults for ThreadParser.
const (
	defaultMaxAttempts    = 3
	defaultImageAttribute = "file"
)

// ThreadParser fetches a thread page and extracts its title and image refs.
type ThreadParser struct {
	client      Getter
	maxAttempts int
	imageAttr   string
	logger      *slog.Logger
}

// ThreadOption configures a ThreadParser.
type ThreadOption func(*ThreadParser)

// WithMaxAttempts sets how many times a thread page is fetched before
// giving up. Values outside 1..try.MaxRetries are ignored.
func WithMaxAttempts(n int) ThreadOption {
	return func(p *ThreadParser) {
		if n >= 1 && n <= try.MaxRetries {
			p.maxAttempts = n
		}
	}
}

// WithImageAttribute sets the <img> attribute holding the full-size image
// URL. The forum lazy-loads images, so "src" is only a placeholder.
func WithImageAttribute(attr string) ThreadOption {
	return func(p *ThreadParser) {
		if attr != "" {
			p.imageAttr = attr
		}
	}
}

// WithLogger sets the logger used for retry messages.
func WithLogger(logger *slog.Logger) ThreadOption {
	return func(p *ThreadParser) {
		p.logger = logger
	}
}

// NewThreadParser creates a ThreadParser fetching through client.
func NewThreadParser(client Getter, opts ...ThreadOption) *ThreadParser {
	p := &ThreadParser{
		client:      client,
		maxAttempts: defaultMaxAttempts,
		imageAttr:   defaultImageAttribute,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse fetches ref.URL and returns its title and image refs.
//
// An attempt fails on a transport error, a non-success status or a page
// without a title; the next attempt follows immediately. When every
// attempt fails the result wraps ErrParse. Context cancellation stops the
// loop and is returned unwrapped.
func (p *ThreadParser) Parse(ctx context.Context, ref model.ThreadRef) (*model.ThreadContent, error) {
	var content *model.ThreadContent

	err := try.Do(func(attempt int) (retry bool, err error) {
		retry = attempt < p.maxAttempts

		content, err = p.attempt(ctx, ref)
		if err == nil {
			return false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if retry {
			p.logger.Info("retrying thread fetch",
				"url", ref.URL,
				"attempt", attempt,
				"reason", err.Error(),
			)
		}
		return retry, err
	})
	if err != nil {
		// A request timeout also matches context.DeadlineExceeded, so only
		// the caller's context decides whether the run was interrupted.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrParse, ref.URL, p.maxAttempts, err)
	}

	return content, nil
}

// attempt performs a single fetch and parse.
func (p *ThreadParser) attempt(ctx context.Context, ref model.ThreadRef) (*model.ThreadContent, error) {
	resp, err := p.client.Get(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	doc, err := ParseDocument(resp.Body, resp.ContentType())
	if err != nil {
		return nil, err
	}

	title := SanitizeTitle(doc.Title())
	if title == "" {
		return nil, errNoTitle
	}

	return &model.ThreadContent{
		Ref:       ref,
		Title:     title,
		ImageRefs: doc.ImageRefs(p.imageAttr),
	}, nil
}
