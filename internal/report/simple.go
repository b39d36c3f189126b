package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/iloveck101/internal/model"
)

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter

	// verbose lists every image reference, not just per-thread counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-image output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeThreads(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       I LOVE CK101 REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:    %s\n", report.ID)
	fmt.Fprintf(sb, "Root URL:  %s (%s)\n", report.Root.URL, report.Root.Kind)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format(timeLayout))
	if d := report.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:  %s\n", d.Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Status:    %s\n", statusText(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	s := Summarize(report)

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nSUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !report.Root.IsThread() {
		fmt.Fprintf(sb, "  %-12s %d (%d not threads)\n", "Links:", s.Links, s.DroppedLinks)
	}
	fmt.Fprintf(sb, "  %-12s %d\n", "Threads:", s.Threads)
	fmt.Fprintf(sb, "  %-12s %d\n", "Images:", s.Images)
	for _, reason := range reasons {
		fmt.Fprintf(sb, "  %-12s %d\n", label(reason.String())+":", report.Count(reason))
	}
	fmt.Fprintf(sb, "  %-12s %s\n", "Downloaded:", humanBytes(s.SavedBytes))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeThreads(sb *strings.Builder, report *model.RunReport) {
	if len(report.Threads) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nTHREADS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i := range report.Threads {
		thread := &report.Threads[i]
		fmt.Fprintf(sb, "[%s] %s\n", thread.Ref.ID, thread.Title)
		fmt.Fprintf(sb, "    Folder: %s\n", thread.Folder)
		fmt.Fprintf(sb, "    Saved %d of %d images\n", thread.Count(model.ReasonSaved), len(thread.Images))

		if !w.verbose {
			continue
		}
		for _, img := range thread.Images {
			fmt.Fprintf(sb, "      %-12s %s", img.Reason, img.SourceURL)
			if img.Width > 0 {
				fmt.Fprintf(sb, " (%dx%d)", img.Width, img.Height)
			}
			if img.Error != "" {
				fmt.Fprintf(sb, " %s", img.Error)
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("I love ck101\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
