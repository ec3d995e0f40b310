// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// A SchemaService supplies the documents an editing session starts from.
// Either document may be nil.
type SchemaService interface {
	Schema(ctx context.Context) (*jsonvalue.Object, error)
	UISchema(ctx context.Context) (*jsonvalue.Object, error)
}

// StaticService serves fixed documents.
type StaticService struct {
	SchemaDoc   *jsonvalue.Object
	UISchemaDoc *jsonvalue.Object
}

func (s StaticService) Schema(context.Context) (*jsonvalue.Object, error) {
	return s.SchemaDoc.Clone(), nil
}

func (s StaticService) UISchema(context.Context) (*jsonvalue.Object, error) {
	return s.UISchemaDoc.Clone(), nil
}

// FileService reads documents from files. An empty path means the document
// is absent.
type FileService struct {
	SchemaPath   string
	UISchemaPath string
}

func (s FileService) Schema(ctx context.Context) (*jsonvalue.Object, error) {
	return readDocument(ctx, s.SchemaPath)
}

func (s FileService) UISchema(ctx context.Context) (*jsonvalue.Object, error) {
	return readDocument(ctx, s.UISchemaPath)
}

func readDocument(ctx context.Context, path string) (*jsonvalue.Object, error) {
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadDocument(path)
}

// ReadDocument reads a JSON or YAML document from path. Files ending in
// .yaml or .yml are YAML; everything else is JSON.
func ReadDocument(path string) (*jsonvalue.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc *jsonvalue.Object
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = jsonvalue.ParseYAMLObject(data)
	default:
		doc, err = jsonvalue.ParseObject(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load starts a session from svc. Without a UI schema, the default layout
// for the schema is generated.
func (e *Editor) Load(ctx context.Context, svc SchemaService) (State, error) {
	schemaDoc, err := svc.Schema(ctx)
	if err != nil {
		return State{}, fmt.Errorf("loading schema: %w", err)
	}
	uiDoc, err := svc.UISchema(ctx)
	if err != nil {
		return State{}, fmt.Errorf("loading UI schema: %w", err)
	}
	if uiDoc == nil && schemaDoc != nil {
		schema, err := jsonschema.Build(schemaDoc)
		if err != nil {
			return State{}, err
		}
		uiDoc = uischema.Generate(schema)
	}
	return e.Reduce(State{}, SetSchemas{Schema: schemaDoc, UISchema: uiDoc})
}
