// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles and validates the uploader configuration from
// defaults, a config file, a .env file, TEMPLATE_UPLOADER_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/template-uploader/internal/batch"
	"github.com/pdiddy/template-uploader/internal/template"
	"github.com/pdiddy/template-uploader/internal/upload"
	"github.com/pdiddy/template-uploader/pkg/types"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. TEMPLATE_UPLOADER_API_TOKEN.
	EnvPrefix = "TEMPLATE_UPLOADER"

	// DefaultUserAgent is sent with every upload.
	DefaultUserAgent = "template-uploader/0.1"

	// SentinelEndpoint and SentinelToken are the placeholder values shipped in
	// sample configs. A run refuses to start while either is still present.
	SentinelEndpoint = "https://your-api-endpoint.com/upload"
	SentinelToken    = "your_auth_token_here"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SetDefaults registers a default for every key so that environment
// variables are honored by Unmarshal even when no config file sets the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.endpoint", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", upload.DefaultTimeout)
	v.SetDefault("api.user_agent", DefaultUserAgent)
	v.SetDefault("api.retry.max_retries", 2)
	v.SetDefault("api.retry.base_delay", time.Second)
	v.SetDefault("api.retry.max_delay", 30*time.Second)

	v.SetDefault("template.kind", string(types.KindDocument))
	v.SetDefault("template.form_id", template.DefaultFormID)
	v.SetDefault("template.category", "")
	v.SetDefault("template.subject_format", template.DefaultSubjectFormat)
	v.SetDefault("template.subject_placeholders", template.DefaultSubjectPlaceholders)

	v.SetDefault("batch.folder", "")
	v.SetDefault("batch.extension", batch.DefaultExtension)
	v.SetDefault("batch.lock_prefix", batch.DefaultLockPrefix)
	v.SetDefault("batch.delay", 500*time.Millisecond)
	v.SetDefault("batch.extractor", string(types.ExtractorNative))

	v.SetDefault("output.journal", "")
	v.SetDefault("output.report", "")
	v.SetDefault("output.log_level", "warn")
	v.SetDefault("output.log_format", "console")
}

// BindEnv makes nested keys resolvable from TEMPLATE_UPLOADER_SECTION_KEY
// variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load decodes the merged settings in v into a Config.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decoding settings: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate reports every problem in cfg that would make a run pointless or
// unsafe. Nothing is uploaded unless Validate returns nil.
func Validate(cfg types.Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch endpoint := cfg.API.Endpoint; {
	case endpoint == "":
		add("api endpoint is not set (--endpoint or %s_API_ENDPOINT)", EnvPrefix)
	case endpoint == SentinelEndpoint:
		add("api endpoint still holds the sample value %q", SentinelEndpoint)
	default:
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("api endpoint %q is not an absolute http(s) URL", endpoint)
		}
	}

	switch cfg.API.Token {
	case "":
		add("api token is not set (.secrets/api-token or %s_API_TOKEN)", EnvPrefix)
	case SentinelToken:
		add("api token still holds the sample value %q", SentinelToken)
	}

	if cfg.API.Timeout <= 0 {
		add("api timeout must be positive, got %s", cfg.API.Timeout)
	}
	if r := cfg.API.Retry; r.MaxRetries < 0 || r.BaseDelay < 0 || r.MaxDelay < 0 {
		add("retry settings must not be negative")
	}

	if _, err := types.ParseTemplateKind(string(cfg.Template.Kind)); err != nil {
		add("%v", err)
	}
	if cfg.Template.FormID == "" {
		add("template form id is not set")
	}

	switch folder := cfg.Batch.Folder; {
	case folder == "":
		add("source folder is not set (--folder)")
	default:
		info, err := os.Stat(folder)
		switch {
		case errors.Is(err, os.ErrNotExist):
			add("source folder does not exist: %s", folder)
		case err != nil:
			add("source folder %s: %v", folder, err)
		case !info.IsDir():
			add("source folder is not a directory: %s", folder)
		}
	}
	if !strings.HasPrefix(cfg.Batch.Extension, ".") {
		add("file extension %q must start with a dot", cfg.Batch.Extension)
	}
	if cfg.Batch.Delay < 0 {
		add("delay must not be negative, got %s", cfg.Batch.Delay)
	}
	switch cfg.Batch.Extractor {
	case types.ExtractorNative, types.ExtractorMarkitdown:
	default:
		add("unknown extractor %q (want %q or %q)", cfg.Batch.Extractor, types.ExtractorNative, types.ExtractorMarkitdown)
	}

	if path := cfg.Output.Report; path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".xlsx":
		default:
			add("report %s must end in .yaml, .yml or .xlsx", path)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(problems, "\n  - "))
}
