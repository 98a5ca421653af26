// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps an append-only SQLite record of batch runs and the
// outcome of every file. The journal is an audit trail only: nothing reads
// it to decide whether a document should be uploaded.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/template-uploader/pkg/types"
)

// Journal is an open journal database bound to one run.
type Journal struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	Folder   string
	Endpoint string
	Kind     types.TemplateKind
}

// Open opens or creates the journal at path and starts a new run. The
// parent directory is created if needed.
func Open(ctx context.Context, path string, info RunInfo) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db, runID: uuid.NewString(), now: time.Now}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO runs (id, folder, endpoint, kind, started_at) VALUES (?, ?, ?, ?, ?)`,
		j.runID, info.Folder, info.Endpoint, string(info.Kind), j.timestamp(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("starting run: %w", err)
	}
	return j, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			folder TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS uploads (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			file TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			kind TEXT,
			status_code INTEGER,
			attempts INTEGER,
			placeholders TEXT,
			message TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_run_id ON uploads(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunID returns the identifier of the run this journal records.
func (j *Journal) RunID() string { return j.runID }

// Record appends one file result to the current run.
func (j *Journal) Record(ctx context.Context, res types.FileResult) error {
	placeholders, err := json.Marshal(res.Placeholders)
	if err != nil {
		return fmt.Errorf("encoding placeholders: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO uploads (run_id, file, name, status, kind, status_code, attempts, placeholders, message, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, res.File, res.Name, string(res.Status), string(res.Kind),
		res.StatusCode, res.Attempts, string(placeholders), res.Message, j.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", res.File, err)
	}
	return nil
}

// Finish stores the final counts for the current run.
func (j *Journal) Finish(ctx context.Context, succeeded, failed, skipped int) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, succeeded = ?, failed = ?, skipped = ? WHERE id = ?`,
		j.timestamp(), succeeded, failed, skipped, j.runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) timestamp() string {
	return j.now().UTC().Format(time.RFC3339Nano)
}
