// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template shapes extracted document text into template records for
// the remote templates API. One Builder covers both the document and the email
// record kinds.
package template

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/template-uploader/internal/marker"
	"github.com/pdiddy/template-uploader/pkg/types"
)

const (
	// DefaultFormID is the template form records are attached to when no
	// form id is configured.
	DefaultFormID = "68c99de867cffddcbec94f02"

	// DefaultSubjectFormat is used for email templates.
	DefaultSubjectFormat = "Document: %s"
)

// DefaultSubjectPlaceholders is the subject placeholder set for email templates.
var DefaultSubjectPlaceholders = []string{"name", "company"}

// Builder turns a filename and its extracted text into a TemplateRequest.
type Builder struct {
	kind                types.TemplateKind
	formID              string
	category            string
	subjectFormat       string
	subjectPlaceholders []string
}

// NewBuilder returns a Builder for cfg, filling in defaults for the form id,
// the kind and the email subject settings.
func NewBuilder(cfg types.TemplateConfig) *Builder {
	b := &Builder{
		kind:                cfg.Kind,
		formID:              cfg.FormID,
		category:            cfg.Category,
		subjectFormat:       cfg.SubjectFormat,
		subjectPlaceholders: cfg.SubjectPlaceholders,
	}
	if b.kind == "" {
		b.kind = types.KindDocument
	}
	if b.formID == "" {
		b.formID = DefaultFormID
	}
	if b.subjectFormat == "" {
		b.subjectFormat = DefaultSubjectFormat
	}
	if b.subjectPlaceholders == nil {
		b.subjectPlaceholders = DefaultSubjectPlaceholders
	}
	return b
}

// Kind returns the record kind this Builder produces.
func (b *Builder) Kind() types.TemplateKind { return b.kind }

// Build derives the record for the document at path. It does not reject an
// empty name or content; the batch driver filters empty documents first.
func (b *Builder) Build(path, text string) types.TemplateRequest {
	name := Name(path)

	req := types.TemplateRequest{
		FormID:       b.formID,
		Name:         name,
		Content:      text,
		Placeholders: marker.Extract(text),
		Category:     b.category,
		Type:         b.kind,
	}

	switch b.kind {
	case types.KindEmail:
		req.Subject = b.subject(name)
		req.SubjectPlaceholders = append([]string{}, b.subjectPlaceholders...)
	default:
		req.Subject = name
		req.SubjectPlaceholders = []string{}
	}
	return req
}

func (b *Builder) subject(name string) string {
	if strings.Contains(b.subjectFormat, "%s") {
		return fmt.Sprintf(b.subjectFormat, name)
	}
	return b.subjectFormat + name
}

// Name returns the filename of path without its extension. A name that is
// only an extension, such as ".docx", is kept whole.
func Name(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}
