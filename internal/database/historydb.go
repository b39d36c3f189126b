package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/iloveck101/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "iloveck101.db"

// HistoryDB stores crawl runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		root_kind TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		threads INTEGER DEFAULT 0,
		saved INTEGER DEFAULT 0,
		too_small INTEGER DEFAULT 0,
		invalid_url INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		saved_bytes INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- one row per handled image reference
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		thread_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		reason TEXT NOT NULL,
		path TEXT,
		width INTEGER,
		height INTEGER,
		bytes INTEGER,
		digest TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_images_run ON images(run_id);
	CREATE INDEX IF NOT EXISTS idx_images_digest ON images(digest);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a finished run and its images in one transaction.
// Saving the same run ID again replaces the earlier record.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM images WHERE run_id = ?`, report.ID); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}

	query := `
	INSERT INTO runs (id, root_url, root_kind, status, error, started_at, finished_at,
		threads, saved, too_small, invalid_url, failed, saved_bytes, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		error = excluded.error,
		finished_at = excluded.finished_at,
		threads = excluded.threads,
		saved = excluded.saved,
		too_small = excluded.too_small,
		invalid_url = excluded.invalid_url,
		failed = excluded.failed,
		saved_bytes = excluded.saved_bytes,
		report_json = excluded.report_json
	`

	_, err = tx.ExecContext(ctx, query,
		report.ID,
		report.Root.URL,
		report.Root.Kind.String(),
		string(report.Status),
		report.Error,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		len(report.Threads),
		report.Count(model.ReasonSaved),
		report.Count(model.ReasonTooSmall),
		report.Count(model.ReasonInvalidURL),
		report.Count(model.ReasonFailed),
		report.SavedBytes(),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO images (run_id, thread_id, source_url, reason, path, width, height, bytes, digest)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare image insert: %w", err)
	}
	defer stmt.Close()

	for _, thread := range report.Threads {
		for _, img := range thread.Images {
			if _, err = stmt.ExecContext(ctx,
				report.ID,
				thread.Ref.ID,
				img.SourceURL,
				img.Reason.String(),
				img.Path,
				img.Width,
				img.Height,
				img.Bytes,
				img.Digest,
			); err != nil {
				return fmt.Errorf("failed to save image %s: %w", img.SourceURL, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID         string
	RootURL    string
	RootKind   model.TargetKind
	Status     model.RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Threads    int
	Saved      int
	TooSmall   int
	InvalidURL int
	Failed     int
	SavedBytes int64
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, root_url, root_kind, status, error, started_at, finished_at,
		threads, saved, too_small, invalid_url, failed, saved_bytes
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var (
			run                RunSummary
			kind, status       string
			runErr, finishedAt sql.NullString
			startedAt          string
		)
		if err := rows.Scan(
			&run.ID,
			&run.RootURL,
			&kind,
			&status,
			&runErr,
			&startedAt,
			&finishedAt,
			&run.Threads,
			&run.Saved,
			&run.TooSmall,
			&run.InvalidURL,
			&run.Failed,
			&run.SavedBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		_ = run.RootKind.UnmarshalText([]byte(kind)) //nolint:errcheck // never fails
		run.Status = model.RunStatus(status)
		run.Error = runErr.String
		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt.String)

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// GetRun returns the full report of a run.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.RunReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ImageRecord is one stored image row.
type ImageRecord struct {
	RunID     string
	ThreadID  string
	SourceURL string
	Reason    model.Reason
	Path      string
	Digest    string
}

// FindByDigest returns every saved image with the given SHA3-256 digest,
// newest run first. Forums often repost the same photo in several threads.
func (h *HistoryDB) FindByDigest(ctx context.Context, digest string) ([]ImageRecord, error) {
	query := `
	SELECT i.run_id, i.thread_id, i.source_url, i.reason, i.path, i.digest
	FROM images i JOIN runs r ON r.id = i.run_id
	WHERE i.digest = ?
	ORDER BY r.started_at DESC, i.id
	`

	rows, err := h.db.QueryContext(ctx, query, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to find images: %w", err)
	}
	defer rows.Close()

	records := make([]ImageRecord, 0)
	for rows.Next() {
		var (
			rec    ImageRecord
			reason string
			path   sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.ThreadID, &rec.SourceURL, &reason, &path, &rec.Digest); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		rec.Reason = model.ParseReason(reason)
		rec.Path = path.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampLayout has a fixed width so that text ordering is time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp formats t in UTC.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats parseTimestamp accepts.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp. Unknown or empty values yield
// the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
