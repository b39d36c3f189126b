package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/iloveck101/internal/config"
	"github.com/nao1215/iloveck101/internal/database"
	"github.com/nao1215/iloveck101/internal/report"
)

// defaultHistoryLimit is how many runs "history" lists by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past crawls",
		Long: `History shows the crawls recorded in the history database.

Without arguments it lists the most recent runs. Given a run ID it prints
the full report of that run.

Examples:
  # List the last 20 runs
  iloveck101 history

  # List the last 5 runs as a Markdown table
  iloveck101 history -n 5 -m

  # Show the report of one run
  iloveck101 history 0f8e4c1a-...

  # Find every thread a picture was saved from
  iloveck101 history --digest <sha3-256 hex>`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().String("digest", "",
		"List saved images with this SHA3-256 digest")
	cmd.Flags().String("db", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run report as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print Markdown output (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	digest, err := cmd.Flags().GetString("digest")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	// Reading history never creates the database.
	db, err := database.Open(config.ExpandHome(dbDir), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case digest != "":
		return listDigest(ctx, out, db, digest)
	case len(args) == 1:
		return showRun(ctx, out, db, args[0], jsonOutput, markdownOutput)
	default:
		return listRuns(ctx, out, db, limit, markdownOutput)
	}
}

// listRuns prints the most recent runs, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int, markdownOutput bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl found in the history database.")
		fmt.Fprintln(out, "\nUse 'iloveck101 <url>' to download a thread.")
		return nil
	}

	if markdownOutput {
		return writeRunsMarkdown(out, runs)
	}

	fmt.Fprintf(out, "Crawl history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-9s  %7s  %5s  %s\n", "ID", "Date", "Status", "Threads", "Saved", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-9s  %7d  %5d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			run.Threads,
			run.Saved,
			run.RootURL,
		)
	}

	fmt.Fprintln(out, "\nUse 'iloveck101 history <id>' to see the report of a run.")
	return nil
}

// writeRunsMarkdown prints runs as a Markdown table.
func writeRunsMarkdown(out io.Writer, runs []database.RunSummary) error {
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			"`" + run.ID + "`",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Status),
			strconv.Itoa(run.Threads),
			strconv.Itoa(run.Saved),
			strconv.Itoa(run.TooSmall),
			strconv.Itoa(run.Failed),
			run.RootURL,
		}
	}

	return markdown.NewMarkdown(out).
		H1("Crawl History").
		PlainText("").
		Table(markdown.TableSet{
			Header: []string{"ID", "Date", "Status", "Threads", "Saved", "Too Small", "Failed", "URL"},
			Rows:   rows,
		}).
		Build()
}

// showRun prints the stored report of one run.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id string, jsonOutput, markdownOutput bool) error {
	runReport, err := db.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("%w: %s (use 'iloveck101 history' to list runs)", err, id)
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(true))
	}

	_, err = w.Write(runReport)
	return err
}

// listDigest prints every saved image with the given digest.
func listDigest(ctx context.Context, out io.Writer, db *database.HistoryDB, digest string) error {
	records, err := db.FindByDigest(ctx, strings.ToLower(strings.TrimSpace(digest)))
	if err != nil {
		return fmt.Errorf("failed to search images: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No saved image with digest %s\n", digest)
		return nil
	}

	fmt.Fprintf(out, "Images with digest %s (%d):\n\n", digest, len(records))
	for _, rec := range records {
		fmt.Fprintf(out, "  • run %s, thread %s\n", rec.RunID, rec.ThreadID)
		fmt.Fprintf(out, "    %s\n", rec.SourceURL)
		fmt.Fprintf(out, "    %s\n", rec.Path)
	}

	return nil
}
