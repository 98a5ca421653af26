// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SourceDocument is a document discovered in the source folder. It is read
// once per batch run and never mutated.
type SourceDocument struct {
	// Path is the filesystem path of the document.
	Path string `json:"path" yaml:"path"`

	// Name is the path stem (filename without extension).
	Name string `json:"name" yaml:"name"`

	// RawText is the extracted paragraph text, newline-joined.
	RawText string `json:"raw_text" yaml:"raw_text"`
}

// TemplateKind selects how a template record is shaped.
type TemplateKind string

const (
	KindDocument TemplateKind = "document"
	KindEmail    TemplateKind = "email"
)

// ParseTemplateKind validates s as a TemplateKind.
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch k := TemplateKind(s); k {
	case KindDocument, KindEmail:
		return k, nil
	default:
		return "", fmt.Errorf("unknown template kind %q (want %q or %q)", s, KindDocument, KindEmail)
	}
}

// TemplateRequest is the JSON payload submitted to the templates API for one
// document. Slice fields must be non-nil so they encode as [] rather than null.
type TemplateRequest struct {
	FormID              string   `json:"formId" yaml:"form_id"`
	Name                string   `json:"name" yaml:"name"`
	Subject             string   `json:"subject" yaml:"subject"`
	SubjectPlaceholders []string `json:"subjectPlaceholders" yaml:"subject_placeholders"`
	Content             string   `json:"content" yaml:"content"`

	// Placeholders holds marker names in first-seen order, without duplicates.
	Placeholders []string `json:"placeholders" yaml:"placeholders"`

	Category string       `json:"category" yaml:"category"`
	Type     TemplateKind `json:"type" yaml:"type"`
}
