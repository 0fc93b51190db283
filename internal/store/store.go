// Package store persists report records in SQLite. It is the one durable
// collaborator of the generation pipeline; single-record create/update is
// atomic, which is all the report lifecycle needs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"growthkit/internal/apperr"
	"growthkit/internal/core"
)

// MaxListLimit caps how many reports a single List call returns.
const MaxListLimit = 100

// DefaultListLimit applies when the caller does not specify a limit.
const DefaultListLimit = 20

// Store is the SQLite-backed report store.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the report database under dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "growthkit.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	reportsTable := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		research_type TEXT NOT NULL,
		status TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		input_metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL,
		processing_seconds REAL NOT NULL DEFAULT 0
	);`

	if _, err := s.db.Exec(reportsTable); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new report record. The caller is expected to pass a record
// with StatusProcessing and empty content.
func (s *Store) Create(ctx context.Context, report core.Report) error {
	metadata, err := json.Marshal(report.InputMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode input metadata: %w", err)
	}

	query := `
	INSERT INTO reports
	(id, title, research_type, status, content, summary, input_metadata, created_at, processing_seconds)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		report.ID,
		report.Title,
		string(report.ResearchType),
		string(report.Status),
		report.Content,
		report.Summary,
		string(metadata),
		report.CreatedAt,
		report.ProcessingSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// Complete transitions a report to StatusCompleted, setting body, summary, and
// processing duration in a single update.
func (s *Store) Complete(ctx context.Context, id, content, summary string, seconds float64) error {
	return s.finalize(ctx, id, core.StatusCompleted, content, summary, seconds)
}

// Fail transitions a report to StatusFailed with a human-readable error
// description as its body. A failed generation must not leave a record stuck
// in processing.
func (s *Store) Fail(ctx context.Context, id, message string) error {
	return s.finalize(ctx, id, core.StatusFailed, message, "", 0)
}

// finalize performs the single terminal update. The status guard keeps a
// terminal record from ever being rewritten.
func (s *Store) finalize(ctx context.Context, id string, status core.ReportStatus, content, summary string, seconds float64) error {
	query := `
	UPDATE reports
	SET status = ?, content = ?, summary = ?, processing_seconds = ?
	WHERE id = ? AND status = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(status), content, summary, seconds, id, string(core.StatusProcessing))
	if err != nil {
		return fmt.Errorf("failed to update report %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of report %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("report %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Get retrieves a report by id.
func (s *Store) Get(ctx context.Context, id string) (*core.Report, error) {
	query := `
	SELECT id, title, research_type, status, content, summary, input_metadata, created_at, processing_seconds
	FROM reports WHERE id = ?`

	report, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report %s: %w", id, err)
	}
	return report, nil
}

// List returns reports newest-first, optionally filtered by research type.
// Limits outside (0, MaxListLimit] are clamped to the defaults.
func (s *Store) List(ctx context.Context, researchType core.ResearchType, limit int) ([]core.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
	SELECT id, title, research_type, status, content, summary, input_metadata, created_at, processing_seconds
	FROM reports`
	args := []any{}
	if researchType != "" {
		query += ` WHERE research_type = ?`
		args = append(args, string(researchType))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []core.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of report %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("report %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*core.Report, error) {
	var report core.Report
	var researchType, status, metadata string
	var createdAt time.Time

	err := row.Scan(
		&report.ID,
		&report.Title,
		&researchType,
		&status,
		&report.Content,
		&report.Summary,
		&metadata,
		&createdAt,
		&report.ProcessingSeconds,
	)
	if err != nil {
		return nil, err
	}

	report.ResearchType = core.ResearchType(researchType)
	report.Status = core.ReportStatus(status)
	report.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(metadata), &report.InputMetadata); err != nil {
		report.InputMetadata = nil
	}
	return &report, nil
}
