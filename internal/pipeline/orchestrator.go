package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/iloveck101/internal/config"
	"github.com/nao1215/iloveck101/internal/crawler"
	"github.com/nao1215/iloveck101/internal/model"
	"github.com/nao1215/iloveck101/internal/picture"
	"github.com/nao1215/iloveck101/internal/storage"
)

// Progress receives short human readable progress messages.
type Progress func(message string)

// Orchestrator runs one crawl from a root URL to saved images.
type Orchestrator struct {
	classifier *crawler.Classifier
	listing    *crawler.ListingExpander
	threads    *crawler.ThreadParser
	fetcher    *picture.Fetcher
	layout     *storage.Layout

	threadBatch int
	imageBatch  int

	logger   *slog.Logger
	progress Progress
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger passed down to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress sets a progress callback, typically a terminal spinner.
func WithProgress(p Progress) Option {
	return func(o *Orchestrator) {
		o.progress = p
	}
}

// NewOrchestrator wires the crawl components for cfg. Every request goes
// through client.
func NewOrchestrator(client crawler.Getter, cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		threadBatch: cfg.ThreadBatchSize,
		imageBatch:  cfg.ImageBatchSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.progress == nil {
		o.progress = func(string) {}
	}

	o.classifier = crawler.NewClassifier(cfg.BaseURL, cfg.SiteDomain)
	o.listing = crawler.NewListingExpander(client, crawler.WithListingLogger(o.logger))
	o.threads = crawler.NewThreadParser(client,
		crawler.WithMaxAttempts(cfg.MaxAttempts),
		crawler.WithImageAttribute(cfg.ImageAttribute),
		crawler.WithLogger(o.logger),
	)
	o.fetcher = picture.NewFetcher(client,
		picture.WithMinSize(cfg.MinWidth, cfg.MinHeight),
		picture.WithExif(cfg.ReadExif),
		picture.WithLogger(o.logger),
	)
	o.layout = storage.NewLayout(cfg.OutputDir)

	return o
}

// Run crawls rootURL.
//
// The returned report is never nil; it carries the final status even
// when an error is returned. Fatal errors are ErrInvalidDomain,
// ErrListingFetch and ErrParse from the crawler package, output
// directory failures and context cancellation. Per-image failures are
// recorded in the report only.
func (o *Orchestrator) Run(ctx context.Context, rootURL string) (*model.RunReport, error) {
	report := model.NewRunReport(rootURL)

	err := o.run(ctx, rootURL, report)
	switch {
	case err == nil:
		report.Finish(model.StatusCompleted, nil)
	case errors.Is(err, context.Canceled):
		report.Finish(model.StatusCancelled, nil)
	default:
		report.Finish(model.StatusFailed, err)
	}

	o.logger.Info("crawl finished",
		"status", report.Status,
		"threads", len(report.Threads),
		"saved", report.Count(model.ReasonSaved),
		"too_small", report.Count(model.ReasonTooSmall),
		"failed", report.Count(model.ReasonFailed),
		"elapsed", report.Duration(),
	)

	return report, err
}

func (o *Orchestrator) run(ctx context.Context, rootURL string, report *model.RunReport) error {
	rootURL = crawler.NormalizeRoot(rootURL)
	if !o.classifier.BelongsToSite(rootURL) {
		return fmt.Errorf("%w: %s", crawler.ErrInvalidDomain, rootURL)
	}
	report.Root = o.classifier.Classify(rootURL)

	if err := o.layout.EnsureBase(); err != nil {
		return err
	}

	refs, err := o.threadRefs(ctx, report)
	if err != nil {
		return err
	}

	contents, err := o.parseThreads(ctx, refs)
	if err != nil {
		return err
	}

	for _, content := range contents {
		result, err := o.saveThread(ctx, content)
		if result != nil {
			report.Threads = append(report.Threads, *result)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// threadRefs resolves the root target into distinct thread refs.
func (o *Orchestrator) threadRefs(ctx context.Context, report *model.RunReport) ([]model.ThreadRef, error) {
	links := []string{report.Root.URL}
	if !report.Root.IsThread() {
		o.progress("expanding listing")

		expanded, err := o.listing.Expand(ctx, report.Root.URL)
		if err != nil {
			return nil, err
		}
		links = expanded
		report.Links = len(links)
	}

	seen := make(map[string]bool, len(links))
	refs := make([]model.ThreadRef, 0, len(links))
	for _, link := range links {
		ref, ok := o.classifier.ThreadRef(link)
		if !ok {
			report.DroppedLinks++
			continue
		}
		if seen[ref.URL] {
			continue
		}
		seen[ref.URL] = true
		refs = append(refs, ref)
	}

	o.logger.Info("threads found", "count", len(refs), "dropped_links", report.DroppedLinks)
	return refs, nil
}

// parseThreads parses every thread before anything is written. The first
// thread that cannot be parsed fails the whole run.
func (o *Orchestrator) parseThreads(ctx context.Context, refs []model.ThreadRef) ([]*model.ThreadContent, error) {
	tasks := make([]Task[*model.ThreadContent], len(refs))
	for i, ref := range refs {
		tasks[i] = func(ctx context.Context) (*model.ThreadContent, error) {
			o.logger.Info("visiting thread", "url", ref.URL)
			return o.threads.Parse(ctx, ref)
		}
	}

	o.progress(fmt.Sprintf("parsing %d threads", len(refs)))

	results, err := RunBounded(ctx, tasks, o.threadBatch)
	if err != nil {
		return nil, err
	}
	if errs := Failures(results); len(errs) > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs[0]
	}

	contents := make([]*model.ThreadContent, len(results))
	for i, r := range results {
		contents[i] = r.Value
	}
	return contents, nil
}

// saveThread creates the thread folder and downloads its images in batches.
// The partial result is returned together with a cancellation error.
func (o *Orchestrator) saveThread(ctx context.Context, content *model.ThreadContent) (*model.ThreadResult, error) {
	folder, err := o.layout.EnsureThreadFolder(content.Ref.ID, content.Title)
	if err != nil {
		return nil, err
	}

	result := &model.ThreadResult{
		Ref:    content.Ref,
		Title:  content.Title,
		Folder: folder,
		Images: make([]model.DownloadOutcome, 0, len(content.ImageRefs)),
	}

	tasks := make([]Task[model.DownloadOutcome], len(content.ImageRefs))
	for i, imageURL := range content.ImageRefs {
		tasks[i] = func(ctx context.Context) (model.DownloadOutcome, error) {
			return o.fetcher.FetchAndMaybeSave(ctx, imageURL, folder)
		}
	}

	o.progress(fmt.Sprintf("%s: %d images", content.Title, len(tasks)))

	results, err := RunBounded(ctx, tasks, o.imageBatch)
	for _, r := range results {
		// Interrupted downloads did not fail; they are left out like the
		// images of batches that never started.
		if errors.Is(r.Err, context.Canceled) {
			continue
		}
		result.Images = append(result.Images, r.Value)
	}
	if err != nil {
		return result, err
	}

	if failed := Failures(results); len(failed) > 0 {
		o.logger.Warn("some images failed", "thread", content.Ref.ID, "failed", len(failed))
	}

	return result, nil
}
