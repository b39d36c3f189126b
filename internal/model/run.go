package model

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the final state of a crawl run.
type RunStatus string

const (
	// StatusRunning is set while a run is in progress.
	StatusRunning RunStatus = "running"

	// StatusCompleted means every batch finished.
	StatusCompleted RunStatus = "completed"

	// StatusFailed means a fatal error (domain, listing or thread parse) stopped the run.
	StatusFailed RunStatus = "failed"

	// StatusCancelled means the operator interrupted the run.
	StatusCancelled RunStatus = "cancelled"
)

// ThreadResult collects what happened to one parsed thread.
type ThreadResult struct {
	Ref ThreadRef `json:"ref"`

	Title string `json:"title"`

	// Folder is the thread's output directory.
	Folder string `json:"folder"`

	Images []DownloadOutcome `json:"images"`
}

// Count returns how many images of the thread ended with reason.
func (t *ThreadResult) Count(reason Reason) int {
	n := 0
	for _, img := range t.Images {
		if img.Reason == reason {
			n++
		}
	}
	return n
}

// RunReport is the summary of one crawl, rendered by the report writers
// and recorded in the history database.
type RunReport struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	Root CrawlTarget `json:"root"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Status RunStatus `json:"status"`

	// Error is the fatal error message for StatusFailed.
	Error string `json:"error,omitempty"`

	// Links is the number of distinct links found on a listing page.
	Links int `json:"links"`

	// DroppedLinks counts links that were not thread URLs.
	DroppedLinks int `json:"dropped_links"`

	Threads []ThreadResult `json:"threads"`
}

// NewRunReport creates a running report for rootURL with a fresh ID.
func NewRunReport(rootURL string) *RunReport {
	return &RunReport{
		ID:        uuid.NewString(),
		Root:      CrawlTarget{URL: rootURL},
		StartedAt: time.Now(),
		Status:    StatusRunning,
		Threads:   make([]ThreadResult, 0),
	}
}

// Finish stamps the end time and final status.
func (r *RunReport) Finish(status RunStatus, err error) {
	r.FinishedAt = time.Now()
	r.Status = status
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration is the wall time of the run. Zero while it is running.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Count returns how many images across all threads ended with reason.
func (r *RunReport) Count(reason Reason) int {
	n := 0
	for i := range r.Threads {
		n += r.Threads[i].Count(reason)
	}
	return n
}

// TotalImages returns the number of image references handled.
func (r *RunReport) TotalImages() int {
	n := 0
	for i := range r.Threads {
		n += len(r.Threads[i].Images)
	}
	return n
}

// SavedBytes returns the total size of all saved images.
func (r *RunReport) SavedBytes() int64 {
	var n int64
	for i := range r.Threads {
		for _, img := range r.Threads[i].Images {
			if img.Kept {
				n += int64(img.Bytes)
			}
		}
	}
	return n
}
