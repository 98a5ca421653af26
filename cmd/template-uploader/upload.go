// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/template-uploader/internal/batch"
	"github.com/pdiddy/template-uploader/internal/config"
	"github.com/pdiddy/template-uploader/internal/container"
	"github.com/pdiddy/template-uploader/internal/docx"
	"github.com/pdiddy/template-uploader/internal/journal"
	"github.com/pdiddy/template-uploader/internal/logging"
	"github.com/pdiddy/template-uploader/internal/report"
	"github.com/pdiddy/template-uploader/internal/secrets"
	"github.com/pdiddy/template-uploader/internal/template"
	"github.com/pdiddy/template-uploader/internal/upload"
	"github.com/pdiddy/template-uploader/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload every document in a folder as a template",
	Long: `Upload lists the .docx files directly inside --folder, extracts each
document's paragraph text, collects its {{...}} and <<...>> placeholders and
POSTs one template record per document to --endpoint. Files are processed in
name order with --delay between uploads. A failure on one document never stops
the batch; the summary at the end reports successes, failures and skipped
lock files.

Every run uploads every document again. Use --journal to keep an SQLite audit
trail and --report to write a YAML or XLSX summary.`,
	RunE: runUpload,
}

// uploadFlags maps flag names to config keys.
var uploadFlags = map[string]string{
	"folder":      "batch.folder",
	"extension":   "batch.extension",
	"delay":       "batch.delay",
	"extractor":   "batch.extractor",
	"endpoint":    "api.endpoint",
	"token":       "api.token",
	"timeout":     "api.timeout",
	"max-retries": "api.retry.max_retries",
	"form-id":     "template.form_id",
	"category":    "template.category",
	"kind":        "template.kind",
	"journal":     "output.journal",
	"report":      "output.report",
	"log-level":   "output.log_level",
	"log-format":  "output.log_format",
}

func init() {
	f := uploadCmd.Flags()
	f.String("folder", "", "folder containing the documents (required)")
	f.String("extension", batch.DefaultExtension, "file extension to upload, case-insensitive")
	f.Duration("delay", 500*time.Millisecond, "minimum spacing between uploads")
	f.String("extractor", string(types.ExtractorNative), "text extractor: native or markitdown")
	f.String("endpoint", "", "templates API URL")
	f.String("token", "", "bearer token (prefer .secrets/api-token or TEMPLATE_UPLOADER_API_TOKEN)")
	f.Duration("timeout", upload.DefaultTimeout, "per-request HTTP timeout")
	f.Int("max-retries", 2, "extra attempts after 429, 5xx or a network error")
	f.String("form-id", template.DefaultFormID, "template form id")
	f.String("category", "", "template category")
	f.String("kind", string(types.KindDocument), "template kind: document or email")
	f.String("journal", "", "SQLite file recording every upload")
	f.String("report", "", "write a run report (.yaml, .yml or .xlsx)")
	f.String("log-level", "warn", "diagnostics level: debug, info, warn or error")
	f.String("log-format", "console", "diagnostics format: console or json")
	f.Bool("allow-failures", false, "exit 0 even when some documents failed")

	for name, key := range uploadFlags {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(uploadCmd)
}

// resolveConfig merges viper settings with .secrets/ and validates the result.
func resolveConfig(v *viper.Viper, s map[string]string) (types.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return types.Config{}, err
	}
	cfg.API.Token = secrets.Default(s, secrets.KeyAPIToken, cfg.API.Token)
	cfg.API.Endpoint = secrets.Default(s, secrets.KeyAPIEndpoint, cfg.API.Endpoint)
	if err := config.Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func newExtractor(backend types.ExtractorBackend) (docx.Extractor, error) {
	if backend != types.ExtractorMarkitdown {
		return docx.NewNative(), nil
	}
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, fmt.Errorf("%w: markitdown extractor: %v", config.ErrInvalidConfig, err)
	}
	m, err := docx.NewMarkitdown(rt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return m, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	allowFailures, _ := cmd.Flags().GetBool("allow-failures")

	logger, err := logging.New(cfg.Output.LogLevel, cfg.Output.LogFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	defer func() { _ = logger.Sync() }()

	extractor, err := newExtractor(cfg.Batch.Extractor)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []batch.Option{batch.WithLogger(logger)}
	runID := uuid.NewString()
	var j *journal.Journal
	if cfg.Output.Journal != "" {
		j, err = journal.Open(ctx, cfg.Output.Journal, journal.RunInfo{
			Folder:   cfg.Batch.Folder,
			Endpoint: cfg.API.Endpoint,
			Kind:     cfg.Template.Kind,
		})
		if err != nil {
			return err
		}
		defer j.Close()
		runID = j.RunID()
		opts = append(opts, batch.WithRecorder(j))
	}
	logger = logger.With(zap.String("run_id", runID))

	out := cmd.OutOrStdout()
	driver := batch.NewDriver(
		cfg.Batch,
		extractor,
		template.NewBuilder(cfg.Template),
		upload.NewClient(cfg.API, upload.WithLogger(logger)),
		out,
		opts...,
	)

	started := time.Now()
	summary, runErr := driver.Run(ctx, cfg.Batch.Folder)
	finished := time.Now()

	// The run context may already be cancelled; bookkeeping still has to land.
	if j != nil {
		if err := j.Finish(context.Background(), summary.Succeeded, summary.Failed, summary.Skipped); err != nil {
			logger.Warn("journal finish failed", zap.Error(err))
		}
	}

	if cfg.Output.Report != "" {
		rep := report.Report{
			RunID:      runID,
			Folder:     cfg.Batch.Folder,
			Endpoint:   cfg.API.Endpoint,
			Kind:       cfg.Template.Kind,
			StartedAt:  started.UTC(),
			FinishedAt: finished.UTC(),
			Summary: report.Summary{
				Succeeded: summary.Succeeded,
				Failed:    summary.Failed,
				Skipped:   summary.Skipped,
				Total:     summary.Total(),
			},
			Files: summary.Results,
		}
		if err := report.Write(cfg.Output.Report, rep); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", cfg.Output.Report)
	}

	if runErr != nil {
		return runErr
	}
	if summary.HasFailures() && !allowFailures {
		return fmt.Errorf("%d document(s) failed to upload", summary.Failed)
	}
	return nil
}
