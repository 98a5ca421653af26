// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "net/http"

// FailureKind classifies why a file did not upload.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureExtraction     FailureKind = "extraction"
	FailureEmptyContent   FailureKind = "empty_content"
	FailureInvalidPayload FailureKind = "invalid_payload"
	FailureHTTP           FailureKind = "http"
	FailureNetwork        FailureKind = "network"
)

// UploadOutcome is the transient result of one upload. It is folded into the
// batch tally immediately and never persisted on its own.
type UploadOutcome struct {
	// Label identifies the upload in progress output (usually the filename).
	Label string

	// StatusCode is the final HTTP status, or 0 when no response arrived.
	StatusCode int

	// Body is the raw response text, kept for diagnostics.
	Body string

	// Attempts counts HTTP attempts including retries.
	Attempts int

	// Err is set for transport-level failures (DNS, refused, timeout).
	Err error
}

// OK reports whether the upload succeeded: HTTP 200 or 201 with no
// transport error.
func (o UploadOutcome) OK() bool {
	if o.Err != nil {
		return false
	}
	return o.StatusCode == http.StatusOK || o.StatusCode == http.StatusCreated
}

// Kind returns the failure classification of the outcome.
func (o UploadOutcome) Kind() FailureKind {
	switch {
	case o.Err != nil:
		return FailureNetwork
	case o.OK():
		return FailureNone
	default:
		return FailureHTTP
	}
}

// FileStatus is the terminal state of one file in a batch run.
type FileStatus string

const (
	FileUploaded FileStatus = "uploaded"
	FileFailed   FileStatus = "failed"
	FileSkipped  FileStatus = "skipped"
)

// FileResult records what happened to one file in a batch run.
type FileResult struct {
	File         string      `json:"file" yaml:"file"`
	Name         string      `json:"name" yaml:"name"`
	Status       FileStatus  `json:"status" yaml:"status"`
	Kind         FailureKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	StatusCode   int         `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Attempts     int         `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	Placeholders []string    `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	Message      string      `json:"message,omitempty" yaml:"message,omitempty"`
}
