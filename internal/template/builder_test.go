// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/template-uploader/pkg/types"
)

func TestBuild_Document(t *testing.T) {
	b := NewBuilder(types.TemplateConfig{Kind: types.KindDocument, FormID: "form-1", Category: "Contracts"})

	req := b.Build("/tmp/templates/Offer Letter.docx", "Dear {{ name }},\nWelcome to <<company>>. {{name}}")

	assert.Equal(t, "form-1", req.FormID)
	assert.Equal(t, "Offer Letter", req.Name)
	assert.Equal(t, "Offer Letter", req.Subject)
	assert.Equal(t, []string{}, req.SubjectPlaceholders)
	assert.Equal(t, []string{"name", "company"}, req.Placeholders)
	assert.Equal(t, "Contracts", req.Category)
	assert.Equal(t, types.KindDocument, req.Type)
	assert.Equal(t, "Dear {{ name }},\nWelcome to <<company>>. {{name}}", req.Content)
}

func TestBuild_Email(t *testing.T) {
	b := NewBuilder(types.TemplateConfig{Kind: types.KindEmail})

	req := b.Build("welcome.docx", "Hi {{first}}")

	assert.Equal(t, DefaultFormID, req.FormID)
	assert.Equal(t, "welcome", req.Name)
	assert.Equal(t, "Document: welcome", req.Subject)
	assert.Equal(t, []string{"name", "company"}, req.SubjectPlaceholders)
	assert.Equal(t, []string{"first"}, req.Placeholders)
	assert.Equal(t, types.KindEmail, req.Type)
}

func TestBuild_EmailCustomSubject(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "format verb", format: "Template %s (migrated)", want: "Template welcome (migrated)"},
		{name: "plain prefix", format: "Re: ", want: "Re: welcome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(types.TemplateConfig{
				Kind:                types.KindEmail,
				SubjectFormat:       tt.format,
				SubjectPlaceholders: []string{"ticket"},
			})
			req := b.Build("welcome.docx", "body")
			assert.Equal(t, tt.want, req.Subject)
			assert.Equal(t, []string{"ticket"}, req.SubjectPlaceholders)
		})
	}
}

func TestBuild_DefaultsToDocumentKind(t *testing.T) {
	b := NewBuilder(types.TemplateConfig{})
	assert.Equal(t, types.KindDocument, b.Kind())
	assert.Equal(t, types.KindDocument, b.Build("a.docx", "x").Type)
}

func TestBuild_SubjectPlaceholdersNotShared(t *testing.T) {
	b := NewBuilder(types.TemplateConfig{Kind: types.KindEmail})
	first := b.Build("a.docx", "x")
	first.SubjectPlaceholders[0] = "mutated"

	second := b.Build("b.docx", "y")
	assert.Equal(t, []string{"name", "company"}, second.SubjectPlaceholders)
	assert.Equal(t, []string{"name", "company"}, DefaultSubjectPlaceholders)
}

func TestBuild_JSONFieldNames(t *testing.T) {
	b := NewBuilder(types.TemplateConfig{FormID: "f"})
	data, err := json.Marshal(b.Build("plain.docx", "no markers here"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	for _, key := range []string{"formId", "name", "subject", "subjectPlaceholders", "content", "placeholders", "category", "type"} {
		assert.Contains(t, got, key)
	}
	assert.Equal(t, []any{}, got["placeholders"])
	assert.Equal(t, []any{}, got["subjectPlaceholders"])
	assert.Equal(t, "document", got["type"])
}

func TestName(t *testing.T) {
	assert.Equal(t, "report", Name("/a/b/report.docx"))
	assert.Equal(t, "archive.tar", Name("archive.tar.gz"))
	assert.Equal(t, "noext", Name("noext"))
	assert.Equal(t, ".docx", Name("/x/.docx"))
}

func TestBuild_ExtensionOnlyFileNameIsValid(t *testing.T) {
	for _, kind := range []types.TemplateKind{types.KindDocument, types.KindEmail} {
		t.Run(string(kind), func(t *testing.T) {
			req := NewBuilder(types.TemplateConfig{Kind: kind}).Build("/x/.docx", "hello")
			assert.Equal(t, ".docx", req.Name)
			require.NoError(t, Validate(req))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := NewBuilder(types.TemplateConfig{Kind: types.KindEmail}).Build("ok.docx", "{{a}} <<b>>")
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(r *types.TemplateRequest)
	}{
		{name: "empty name", mutate: func(r *types.TemplateRequest) { r.Name = "" }},
		{name: "empty form id", mutate: func(r *types.TemplateRequest) { r.FormID = "" }},
		{name: "empty content", mutate: func(r *types.TemplateRequest) { r.Content = "" }},
		{name: "unknown type", mutate: func(r *types.TemplateRequest) { r.Type = "sms" }},
		{name: "duplicate placeholders", mutate: func(r *types.TemplateRequest) { r.Placeholders = []string{"a", "a"} }},
		{name: "nil placeholders", mutate: func(r *types.TemplateRequest) { r.Placeholders = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.Placeholders = append([]string{}, valid.Placeholders...)
			tt.mutate(&r)
			assert.Error(t, Validate(r))
		})
	}
}
