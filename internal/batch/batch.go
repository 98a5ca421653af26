// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch walks a folder of documents and uploads each one as a
// template record, one file at a time.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/template-uploader/internal/docx"
	"github.com/pdiddy/template-uploader/internal/template"
	"github.com/pdiddy/template-uploader/pkg/types"
)

const (
	// DefaultExtension selects Word documents.
	DefaultExtension = ".docx"

	// DefaultLockPrefix marks the owner files Word leaves next to open documents.
	DefaultLockPrefix = "~$"

	// maxConsoleBody caps response bodies echoed to the progress writer.
	maxConsoleBody = 500
)

// Uploader sends one template record. The upload.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, req types.TemplateRequest, label string) types.UploadOutcome
}

// Recorder receives every file result as soon as it is known. The
// journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, res types.FileResult) error
}

// Summary holds the outcome of a batch run.
type Summary struct {
	Succeeded int
	Failed    int
	// Skipped counts lock files; they are not part of Total.
	Skipped int
	Results []types.FileResult
}

// Total returns the number of documents processed (successes plus failures).
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Driver runs the extract, build, upload sequence over a folder.
type Driver struct {
	extractor  docx.Extractor
	builder    *template.Builder
	uploader   Uploader
	recorder   Recorder
	limiter    *rate.Limiter
	extension  string
	lockPrefix string
	w          io.Writer
	logger     *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithRecorder forwards every FileResult to r.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver returns a Driver that prints progress to w. cfg.Delay spaces
// consecutive uploads; zero disables pacing.
func NewDriver(cfg types.BatchConfig, ex docx.Extractor, b *template.Builder, up Uploader, w io.Writer, opts ...Option) *Driver {
	d := &Driver{
		extractor:  ex,
		builder:    b,
		uploader:   up,
		limiter:    rate.NewLimiter(rate.Every(cfg.Delay), 1),
		extension:  cfg.Extension,
		lockPrefix: cfg.LockPrefix,
		w:          w,
		logger:     zap.NewNop(),
	}
	if d.extension == "" {
		d.extension = DefaultExtension
	}
	if d.lockPrefix == "" {
		d.lockPrefix = DefaultLockPrefix
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListDocuments returns the regular files directly inside folder whose
// extension matches ext (case-insensitive), in directory-listing order.
func ListDocuments(folder, ext string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", folder, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}
	return paths, nil
}

// Run processes every document in folder. Per-file failures are counted and
// never stop the run. The returned error is non-nil only when the folder
// cannot be listed or ctx is cancelled; in the latter case the summary
// covers the files processed so far.
func (d *Driver) Run(ctx context.Context, folder string) (Summary, error) {
	var summary Summary

	paths, err := ListDocuments(folder, d.extension)
	if err != nil {
		return summary, err
	}
	if len(paths) == 0 {
		fmt.Fprintf(d.w, "No %s files found in %s\n", d.extension, folder)
		return summary, nil
	}
	fmt.Fprintf(d.w, "Found %d %s files to process\n", len(paths), d.extension)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			d.printSummary(summary)
			return summary, err
		}

		res, err := d.processFile(ctx, path)
		if err != nil {
			d.printSummary(summary)
			return summary, err
		}

		switch res.Status {
		case types.FileUploaded:
			summary.Succeeded++
		case types.FileFailed:
			summary.Failed++
		case types.FileSkipped:
			summary.Skipped++
		}
		summary.Results = append(summary.Results, res)

		if d.recorder != nil {
			if err := d.recorder.Record(ctx, res); err != nil {
				d.logger.Warn("journal.record_failed", zap.String("file", res.File), zap.Error(err))
			}
		}
	}

	d.printSummary(summary)
	return summary, nil
}

// processFile runs one document through the pipeline. The error is non-nil
// only when ctx ends while waiting for the pacing limiter.
func (d *Driver) processFile(ctx context.Context, path string) (types.FileResult, error) {
	base := filepath.Base(path)
	res := types.FileResult{File: base, Name: template.Name(path)}
	log := d.logger.With(zap.String("file", base))

	fmt.Fprintf(d.w, "\nprocessing: %s\n", base)

	if strings.HasPrefix(base, d.lockPrefix) {
		fmt.Fprintf(d.w, "skipped: %s (temporary lock file)\n", base)
		res.Status = types.FileSkipped
		res.Message = "temporary lock file"
		return res, nil
	}

	text, err := d.extractor.Extract(path)
	if err != nil {
		fmt.Fprintf(d.w, "failed:  %s (%v)\n", base, err)
		log.Warn("extract.failed", zap.String("path", path), zap.Error(err))
		return failed(res, types.FailureExtraction, err.Error()), nil
	}

	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(d.w, "warning: %s appears to be empty\n", base)
		return failed(res, types.FailureEmptyContent, "document has no text"), nil
	}

	req := d.builder.Build(path, text)
	res.Placeholders = req.Placeholders
	if err := template.Validate(req); err != nil {
		fmt.Fprintf(d.w, "failed:  %s (%v)\n", base, err)
		log.Warn("payload.invalid", zap.Error(err))
		return failed(res, types.FailureInvalidPayload, err.Error()), nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return res, err
	}

	out := d.uploader.Upload(ctx, req, base)
	res.StatusCode = out.StatusCode
	res.Attempts = out.Attempts

	switch out.Kind() {
	case types.FailureNone:
		fmt.Fprintf(d.w, "uploaded: %s (HTTP %d, %d placeholders)\n", base, out.StatusCode, len(req.Placeholders))
		res.Status = types.FileUploaded
		return res, nil
	case types.FailureNetwork:
		fmt.Fprintf(d.w, "failed:  %s (network error: %v)\n", base, out.Err)
		return failed(res, types.FailureNetwork, out.Err.Error()), nil
	default:
		fmt.Fprintf(d.w, "failed:  %s (HTTP %d)\n", base, out.StatusCode)
		if out.Body != "" {
			fmt.Fprintf(d.w, "  response: %s\n", truncate(out.Body, maxConsoleBody))
		}
		return failed(res, types.FailureHTTP, truncate(out.Body, maxConsoleBody)), nil
	}
}

func failed(res types.FileResult, kind types.FailureKind, msg string) types.FileResult {
	res.Status = types.FileFailed
	res.Kind = kind
	res.Message = msg
	return res
}

func (d *Driver) printSummary(s Summary) {
	fmt.Fprintf(d.w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintln(d.w, "Upload summary:")
	fmt.Fprintf(d.w, "  successful: %d\n", s.Succeeded)
	fmt.Fprintf(d.w, "  failed:     %d\n", s.Failed)
	fmt.Fprintf(d.w, "  total:      %d\n", s.Total())
	if s.Skipped > 0 {
		fmt.Fprintf(d.w, "  skipped:    %d (temporary lock files, not counted)\n", s.Skipped)
	}
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
