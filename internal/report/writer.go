package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/iloveck101/internal/model"
)

// Writer renders a run report.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Summary holds the headline numbers of a run.
type Summary struct {
	Threads      int   `json:"threads"`
	Links        int   `json:"links"`
	DroppedLinks int   `json:"dropped_links"`
	Images       int   `json:"images"`
	Saved        int   `json:"saved"`
	TooSmall     int   `json:"too_small"`
	InvalidURL   int   `json:"invalid_url"`
	Failed       int   `json:"failed"`
	SavedBytes   int64 `json:"saved_bytes"`

	// Duration is the wall time of the run, rounded to milliseconds.
	Duration time.Duration `json:"duration_ns"`
}

// Summarize computes the summary of report.
func Summarize(report *model.RunReport) Summary {
	return Summary{
		Threads:      len(report.Threads),
		Links:        report.Links,
		DroppedLinks: report.DroppedLinks,
		Images:       report.TotalImages(),
		Saved:        report.Count(model.ReasonSaved),
		TooSmall:     report.Count(model.ReasonTooSmall),
		InvalidURL:   report.Count(model.ReasonInvalidURL),
		Failed:       report.Count(model.ReasonFailed),
		SavedBytes:   report.SavedBytes(),
		Duration:     report.Duration().Round(time.Millisecond),
	}
}

// reasons lists outcome reasons in display order.
var reasons = []model.Reason{
	model.ReasonSaved,
	model.ReasonTooSmall,
	model.ReasonInvalidURL,
	model.ReasonFailed,
}

var titleCaser = cases.Title(language.English)

// label turns a snake_case name such as "too_small" into "Too Small".
func label(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// statusText describes the final status of a run.
func statusText(report *model.RunReport) string {
	switch report.Status {
	case model.StatusCompleted:
		return "Complete"
	case model.StatusCancelled:
		return "Cancelled (partial results)"
	case model.StatusFailed:
		return "Failed - " + report.Error
	default:
		return label(string(report.Status))
	}
}

const timeLayout = "2006-01-02 15:04:05 MST"

// humanBytes formats n with a binary unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
