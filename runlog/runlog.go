// Package runlog records download runs in SQLite. Writes never propagate
// errors: a failing log store must not take the workflow down with it.
package runlog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Schema is applied to the runlog database at open.
const Schema = `
CREATE TABLE IF NOT EXISTS download_runs (
    id                  TEXT PRIMARY KEY,
    agency_prefix       TEXT NOT NULL,
    subagency_extension TEXT NOT NULL,
    date_from           TEXT NOT NULL,
    date_to             TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'running',
    pages               INTEGER NOT NULL DEFAULT 0,
    forms_triggered     INTEGER NOT NULL DEFAULT 0,
    audits_triggered    INTEGER NOT NULL DEFAULT 0,
    files_completed     INTEGER NOT NULL DEFAULT 0,
    error               TEXT NOT NULL DEFAULT '',
    started_at          INTEGER NOT NULL,
    finished_at         INTEGER
);
CREATE INDEX IF NOT EXISTS idx_download_runs_started ON download_runs(started_at DESC);
`

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded download run.
type Run struct {
	ID                 string `json:"id"`
	AgencyPrefix       string `json:"agency_prefix"`
	SubagencyExtension string `json:"subagency_extension"`
	DateFrom           string `json:"date_from"`
	DateTo             string `json:"date_to"`
	Status             string `json:"status"`
	Pages              int    `json:"pages"`
	FormsTriggered     int    `json:"forms_triggered"`
	AuditsTriggered    int    `json:"audits_triggered"`
	FilesCompleted     int    `json:"files_completed"`
	Error              string `json:"error,omitempty"`
	StartedAt          int64  `json:"started_at"`
	FinishedAt         int64  `json:"finished_at,omitempty"`
}

// Log writes download runs to a database.
type Log struct {
	db *sql.DB
}

// New creates a Log over an open database.
func New(db *sql.DB) *Log {
	return &Log{db: db}
}

// Start records the beginning of a run and returns its assigned ID.
func (l *Log) Start(ctx context.Context, agencyPrefix, subagencyExtension, dateFrom, dateTo string) string {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO download_runs (id, agency_prefix, subagency_extension,
			date_from, date_to, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, agencyPrefix, subagencyExtension, dateFrom, dateTo, StatusRunning, time.Now().Unix())
	if err != nil {
		slog.Error("runlog: start write failed", "error", err, "run", id)
	}
	return id
}

// Complete marks a run finished with its final counts.
func (l *Log) Complete(ctx context.Context, id string, pages, forms, audits, files int) {
	_, err := l.db.ExecContext(ctx, `
		UPDATE download_runs SET status = ?, pages = ?, forms_triggered = ?,
			audits_triggered = ?, files_completed = ?, finished_at = ?
		WHERE id = ?`,
		StatusCompleted, pages, forms, audits, files, time.Now().Unix(), id)
	if err != nil {
		slog.Error("runlog: complete write failed", "error", err, "run", id)
	}
}

// Fail marks a run failed with the error text.
func (l *Log) Fail(ctx context.Context, id string, runErr error) {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := l.db.ExecContext(ctx, `
		UPDATE download_runs SET status = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		StatusFailed, msg, time.Now().Unix(), id)
	if err != nil {
		slog.Error("runlog: fail write failed", "error", err, "run", id)
	}
}

// Recent returns the most recent runs, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, agency_prefix, subagency_extension, date_from, date_to,
			status, pages, forms_triggered, audits_triggered, files_completed,
			error, started_at, COALESCE(finished_at, 0)
		FROM download_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.AgencyPrefix, &r.SubagencyExtension,
			&r.DateFrom, &r.DateTo, &r.Status, &r.Pages, &r.FormsTriggered,
			&r.AuditsTriggered, &r.FilesCompleted, &r.Error,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
