// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/template-uploader/pkg/types"
)

// Run is one row of the runs table.
type Run struct {
	ID         string             `json:"id" yaml:"id"`
	Folder     string             `json:"folder" yaml:"folder"`
	Endpoint   string             `json:"endpoint" yaml:"endpoint"`
	Kind       types.TemplateKind `json:"kind" yaml:"kind"`
	StartedAt  time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Succeeded  int                `json:"succeeded" yaml:"succeeded"`
	Failed     int                `json:"failed" yaml:"failed"`
	Skipped    int                `json:"skipped" yaml:"skipped"`
}

// Reader queries a journal written by earlier runs.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing journal for reading.
func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal %s: %w", path, err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

// Close releases the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all runs.
func (r *Reader) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, folder, endpoint, kind, started_at, finished_at, succeeded, failed, skipped
		FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			kind     string
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Folder, &run.Endpoint, &kind, &started, &finished,
			&run.Succeeded, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Kind = types.TemplateKind(kind)
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at for run %s: %w", run.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parsing finished_at for run %s: %w", run.ID, err)
			}
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Uploads returns the file results recorded for runID in recording order.
func (r *Reader) Uploads(ctx context.Context, runID string) ([]types.FileResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT file, name, status, kind, status_code, attempts, placeholders, message
		 FROM uploads WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var results []types.FileResult
	for rows.Next() {
		var (
			res          types.FileResult
			status, kind string
			placeholders string
		)
		if err := rows.Scan(&res.File, &res.Name, &status, &kind, &res.StatusCode,
			&res.Attempts, &placeholders, &res.Message); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		res.Status = types.FileStatus(status)
		res.Kind = types.FailureKind(kind)
		if err := json.Unmarshal([]byte(placeholders), &res.Placeholders); err != nil {
			return nil, fmt.Errorf("decoding placeholders for %s: %w", res.File, err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
