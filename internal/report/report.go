// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a machine-readable record of a batch run. The format
// is chosen by file extension: .yaml/.yml or .xlsx.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/template-uploader/pkg/types"
)

// Report is the on-disk representation of one batch run.
type Report struct {
	RunID      string             `yaml:"run_id"`
	Folder     string             `yaml:"folder"`
	Endpoint   string             `yaml:"endpoint"`
	Kind       types.TemplateKind `yaml:"kind"`
	StartedAt  time.Time          `yaml:"started_at"`
	FinishedAt time.Time          `yaml:"finished_at"`
	Summary    Summary            `yaml:"summary"`
	Files      []types.FileResult `yaml:"files"`
}

// Summary holds the run counts. Total excludes skipped lock files.
type Summary struct {
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
	Total     int `yaml:"total"`
}

// Write saves r to path in the format implied by its extension.
func Write(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return writeYAML(path, r)
	case ".xlsx":
		return writeXLSX(path, r)
	default:
		return fmt.Errorf("unsupported report format %q (want .yaml, .yml or .xlsx)", ext)
	}
}

func writeYAML(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadYAML loads a report previously written as YAML.
func ReadYAML(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return r, nil
}
