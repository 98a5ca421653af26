// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/template-uploader/pkg/types"
)

const schemaURL = "template-request.json"

// requestSchema describes the payload accepted by the templates API.
func requestSchema() map[string]any {
	stringList := map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string", "minLength": 1},
		"uniqueItems": true,
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"formId":              map[string]any{"type": "string", "minLength": 1},
			"name":                map[string]any{"type": "string", "minLength": 1},
			"subject":             map[string]any{"type": "string", "minLength": 1},
			"subjectPlaceholders": stringList,
			"content":             map[string]any{"type": "string", "minLength": 1},
			"placeholders":        stringList,
			"category":            map[string]any{"type": "string"},
			"type": map[string]any{
				"type": "string",
				"enum": []string{string(types.KindDocument), string(types.KindEmail)},
			},
		},
		"required": []string{
			"formId", "name", "subject", "subjectPlaceholders",
			"content", "placeholders", "category", "type",
		},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(requestSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Validate checks req against the request schema before it is sent.
func Validate(req types.TemplateRequest) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}
