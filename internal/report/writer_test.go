package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/iloveck101/internal/model"
)

// createTestReport creates a finished listing run with two threads.
func createTestReport() *model.RunReport {
	report := model.NewRunReport("http://ck101.com/forum-1345-1.html")
	report.Root.Kind = model.KindListing
	report.Links = 40
	report.DroppedLinks = 30

	saved := model.NewOutcome("http://img.ck101.com/a.jpg", model.ReasonSaved)
	saved.Path = "/pics/1 - First/a.jpg"
	saved.Width, saved.Height, saved.Bytes = 800, 600, 2048

	failed := model.NewOutcome("http://img.ck101.com/c.jpg", model.ReasonFailed)
	failed.Error = "failed to fetch image: 404"

	report.Threads = append(report.Threads,
		model.ThreadResult{
			Ref:    model.ThreadRef{ID: "1", URL: "http://ck101.com/thread-1-1-1.html"},
			Title:  "First",
			Folder: "/pics/1 - First",
			Images: []model.DownloadOutcome{
				saved,
				model.NewOutcome("http://img.ck101.com/b.jpg", model.ReasonTooSmall),
			},
		},
		model.ThreadResult{
			Ref:    model.ThreadRef{ID: "2", URL: "http://ck101.com/thread-2-1-1.html"},
			Title:  "Second",
			Folder: "/pics/2 - Second",
			Images: []model.DownloadOutcome{
				failed,
				model.NewOutcome("none.gif", model.ReasonInvalidURL),
			},
		},
	)
	report.Finish(model.StatusCompleted, nil)
	return report
}

// TestSummarize tests headline numbers.
func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(createTestReport())
	if s.Threads != 2 || s.Images != 4 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.Saved != 1 || s.TooSmall != 1 || s.InvalidURL != 1 || s.Failed != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.SavedBytes != 2048 {
		t.Errorf("expected 2048 bytes, got %d", s.SavedBytes)
	}
	if s.Links != 40 || s.DroppedLinks != 30 {
		t.Errorf("unexpected link counts %+v", s)
	}
}

// TestSimpleWriter tests the text report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, summary and threads", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"I LOVE CK101 REPORT",
			"forum-1345-1.html (listing)",
			"Status:    Complete",
			"Too Small:",
			"Invalid Url:",
			"Downloaded:",
			"2.0 KiB",
			"[1] First",
			"Saved 1 of 2 images",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "http://img.ck101.com/b.jpg") {
			t.Error("expected image URLs only in verbose mode")
		}
	})

	t.Run("verbose lists every image", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "too_small") || !strings.Contains(output, "http://img.ck101.com/b.jpg") {
			t.Error("expected per-image lines")
		}
		if !strings.Contains(output, "(800x600)") {
			t.Error("expected dimensions")
		}
		if !strings.Contains(output, "failed to fetch image: 404") {
			t.Error("expected failure message")
		}
	})

	t.Run("failed run shows the error", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport("http://example.com/")
		report.Finish(model.StatusFailed, errors.New("this is not ck101 url"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Failed - this is not ck101 url") {
			t.Errorf("expected failure status, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("expected version, got %q", decoded.Version)
		}
		if decoded.Summary.Saved != 1 || decoded.Summary.Failed != 1 {
			t.Errorf("unexpected summary %+v", decoded.Summary)
		}
		if decoded.Report == nil || len(decoded.Report.Threads) != 2 {
			t.Fatalf("expected full report, got %+v", decoded.Report)
		}
		if decoded.Report.Threads[0].Images[1].Reason != model.ReasonTooSmall {
			t.Errorf("expected reason to survive, got %v", decoded.Report.Threads[0].Images[1].Reason)
		}
		if !strings.Contains(buf.String(), `"reason":"too_small"`) {
			t.Error("expected reasons encoded by name")
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Error("expected indented output")
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables, chart and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# iloveck101 Report",
			"## Summary",
			"```mermaid",
			"Image Outcomes",
			"## Threads",
			"Second",
			"### Failed Images",
			"http://img.ck101.com/c.jpg: failed to fetch image: 404",
			"[!IMPORTANT]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("cancelled run without threads", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport("http://ck101.com/thread-1-1-1.html")
		report.Root.Kind = model.KindThread
		report.Finish(model.StatusCancelled, nil)
		report.FinishedAt = report.StartedAt.Add(1500 * time.Millisecond)

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No thread was crawled.") {
			t.Error("expected empty thread notice")
		}
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected cancellation warning")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart without images")
		}
		if !strings.Contains(output, "1.5s") {
			t.Error("expected duration")
		}
	})
}

// TestLabel tests snake_case to title conversion.
func TestLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"saved":       "Saved",
		"too_small":   "Too Small",
		"invalid_url": "Invalid Url",
	}
	for in, want := range tests {
		if got := label(in); got != want {
			t.Errorf("label(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestHumanBytes tests byte formatting.
func TestHumanBytes(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range tests {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
