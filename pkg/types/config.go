package types

import "time"

// HTTPConfig holds shared HTTP settings for the upload client.
type HTTPConfig struct {
	// Timeout bounds each individual HTTP request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "template-uploader/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetryConfig controls re-sending an upload after 429, 5xx or a transport
// error. MaxRetries of 0 means exactly one attempt per document.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// BaseDelay is the first backoff interval; it doubles every attempt (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`

	// MaxDelay caps a single backoff interval (default 30s).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

// APIConfig describes the remote templates API.
type APIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the absolute URL templates are POSTed to.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Token is the bearer token. Prefer .secrets/api-token or the
	// TEMPLATE_UPLOADER_API_TOKEN variable over the config file.
	Token string `json:"-" yaml:"-" mapstructure:"token"`

	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// TemplateConfig shapes every TemplateRequest built in a run.
type TemplateConfig struct {
	// Kind selects document or email shaping (default document).
	Kind TemplateKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// FormID identifies the target template form on the remote side.
	FormID string `json:"form_id" yaml:"form_id" mapstructure:"form_id"`

	// Category is copied verbatim into each record; may be empty.
	Category string `json:"category" yaml:"category" mapstructure:"category"`

	// SubjectFormat is a fmt pattern with one %s for the document name.
	// Only used for email templates (default "Document: %s").
	SubjectFormat string `json:"subject_format" yaml:"subject_format" mapstructure:"subject_format"`

	// SubjectPlaceholders is the fixed subject placeholder set for email
	// templates (default [name, company]).
	SubjectPlaceholders []string `json:"subject_placeholders" yaml:"subject_placeholders" mapstructure:"subject_placeholders"`
}

// ExtractorBackend identifies the document text extraction tool.
type ExtractorBackend string

const (
	ExtractorNative     ExtractorBackend = "native"
	ExtractorMarkitdown ExtractorBackend = "markitdown"
)

// BatchConfig holds settings for walking the source folder.
type BatchConfig struct {
	// Folder is the source directory (non-recursive).
	Folder string `json:"folder" yaml:"folder" mapstructure:"folder"`

	// Extension selects candidate files (default ".docx", case-insensitive).
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`

	// LockPrefix marks transient lock files to skip (default "~$").
	LockPrefix string `json:"lock_prefix" yaml:"lock_prefix" mapstructure:"lock_prefix"`

	// Delay is the minimum spacing between consecutive uploads (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// Extractor selects the text extraction backend: native or markitdown.
	Extractor ExtractorBackend `json:"extractor" yaml:"extractor" mapstructure:"extractor"`
}

// OutputConfig holds where run artifacts and diagnostics go.
type OutputConfig struct {
	// Journal is an optional SQLite file that records every upload attempt.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty" mapstructure:"journal"`

	// Report is an optional .yaml/.yml or .xlsx file written after the run.
	Report string `json:"report,omitempty" yaml:"report,omitempty" mapstructure:"report"`

	// LogLevel is the diagnostics level: debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// LogFormat is console or json.
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
}

// Config groups all settings for one uploader run.
type Config struct {
	API      APIConfig      `json:"api" yaml:"api" mapstructure:"api"`
	Template TemplateConfig `json:"template" yaml:"template" mapstructure:"template"`
	Batch    BatchConfig    `json:"batch" yaml:"batch" mapstructure:"batch"`
	Output   OutputConfig   `json:"output" yaml:"output" mapstructure:"output"`
}
