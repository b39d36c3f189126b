package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/iloveck101/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeThreads(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("iloveck101 Report")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + report.ID + "`"},
		{"Root URL", report.Root.URL},
		{"Root Kind", label(report.Root.Kind.String())},
		{"Started", report.StartedAt.Format(timeLayout)},
		{"Status", statusText(report)},
	}
	if d := report.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	s := Summarize(report)

	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(reasons)+4)
	if !report.Root.IsThread() {
		rows = append(rows,
			[]string{"Links", strconv.Itoa(s.Links)},
			[]string{"Not Threads", strconv.Itoa(s.DroppedLinks)},
		)
	}
	rows = append(rows, []string{"Threads", strconv.Itoa(s.Threads)})
	for _, reason := range reasons {
		rows = append(rows, []string{label(reason.String()), strconv.Itoa(report.Count(reason))})
	}
	rows = append(rows, []string{"**Downloaded**", "**" + humanBytes(s.SavedBytes) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Item", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.Images > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report, s)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Image Outcomes"),
		piechart.WithShowData(true),
	)

	for _, reason := range reasons {
		if n := report.Count(reason); n > 0 {
			chart.LabelAndIntValue(label(reason.String()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport, s Summary) {
	switch {
	case report.Status == model.StatusFailed:
		md.Cautionf("The crawl failed: %s", report.Error)
	case report.Status == model.StatusCancelled:
		md.Warningf("The crawl was interrupted. %d image(s) were saved before it stopped.", s.Saved)
	case s.Failed > 0:
		md.Importantf("%d image(s) could not be downloaded.", s.Failed)
	case s.Saved == 0:
		md.Note("No image was large enough to keep.")
	default:
		md.Tip("All images were handled.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeThreads(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Threads")
	md.PlainText("")

	if len(report.Threads) == 0 {
		md.PlainText("No thread was crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Threads))
	for i := range report.Threads {
		thread := &report.Threads[i]
		rows[i] = []string{
			thread.Ref.ID,
			thread.Title,
			strconv.Itoa(thread.Count(model.ReasonSaved)),
			strconv.Itoa(len(thread.Images)),
			"`" + thread.Folder + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Title", "Saved", "Images", "Folder"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed := failedImages(report); len(failed) > 0 {
		md.H3("Failed Images")
		md.PlainText("")
		md.BulletList(failed...)
		md.PlainText("")
	}
}

// failedImages returns "url: error" for every failed image.
func failedImages(report *model.RunReport) []string {
	failed := make([]string, 0)
	for i := range report.Threads {
		for _, img := range report.Threads[i].Images {
			if img.Reason == model.ReasonFailed {
				failed = append(failed, img.SourceURL+": "+img.Error)
			}
		}
	}
	return failed
}
