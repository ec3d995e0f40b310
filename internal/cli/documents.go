// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

var (
	// Document flags, shared by the commands that load a session
	schemaPath   string
	uiSchemaPath string
)

var errNoSchema = errors.New("no schema given, use --schema")

func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "JSON Schema document (JSON or YAML)")
	cmd.Flags().StringVarP(&uiSchemaPath, "uischema", "u", "", "UI schema document; generated from the schema when omitted")
}

// loadState loads the documents named by the document flags and links them.
func loadState(ctx context.Context) (*editor.Editor, editor.State, error) {
	ed := editor.New()
	state, err := ed.Load(ctx, editor.FileService{SchemaPath: schemaPath, UISchemaPath: uiSchemaPath})
	if err != nil {
		return nil, editor.State{}, err
	}
	return ed, state, nil
}

// schemaDocument and uiDocument render the documents of a state, or nil.
func schemaDocument(s editor.State) any {
	if s.Schema == nil {
		return nil
	}
	return jsonschema.ToRaw(s.Schema)
}

func uiDocument(s editor.State, debug bool) any {
	switch {
	case s.UISchema == nil:
		return nil
	case debug:
		return uischema.DebugForm(s.UISchema)
	}
	return uischema.ToRaw(s.UISchema)
}

// writeDocumentFile writes doc to path, as YAML if the path ends in .yaml
// or .yml and as JSON otherwise.
func writeDocumentFile(path string, doc any) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	data, err := encodeDocument(doc, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readScript reads an edit script: a list of actions, or an object whose
// "actions" member is that list.
func readScript(path string) ([]*jsonvalue.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = jsonvalue.ParseYAML(data)
	default:
		doc, err = jsonvalue.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if obj, ok := doc.(*jsonvalue.Object); ok {
		if doc, ok = obj.Get("actions"); !ok {
			return nil, fmt.Errorf("%s: no \"actions\" list", path)
		}
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: actions must be a list, got %s", path, jsonvalue.TypeName(doc))
	}
	actions := make([]*jsonvalue.Object, len(list))
	for i, v := range list {
		if actions[i], ok = v.(*jsonvalue.Object); !ok {
			return nil, fmt.Errorf("%s: action %d is %s, not an object", path, i+1, jsonvalue.TypeName(v))
		}
	}
	return actions, nil
}

// Element references in an edit script may be UI schema paths, and schema
// node references may be scopes; ids are generated anew on every load.
// Scopes are read relative to the detail the action targets.
var elementRefKeys = []string{"elementId", "containerId", "layoutId", "controlId"}

// resolveRefs returns a copy of action in which path and scope references
// are replaced by the ids they denote in s.
func resolveRefs(s editor.State, action *jsonvalue.Object) (*jsonvalue.Object, error) {
	out := action.Clone()
	for _, key := range elementRefKeys {
		ref, ok := out.String(key)
		if !ok || !strings.HasPrefix(ref, "/") {
			continue
		}
		n, err := uischema.ResolvePath(s.UISchema, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.Set(key, n.ID)
	}
	if ref, ok := out.String("schemaNodeId"); ok && strings.HasPrefix(ref, "#") {
		n, err := resolveScopeRef(s, out, ref)
		if err != nil {
			return nil, fmt.Errorf("schemaNodeId: %w", err)
		}
		out.Set("schemaNodeId", n.ID)
	}
	return out, nil
}

// resolveScopeRef resolves a scope the way a control placed into the
// action's target would read it: inside an array's detail, relative to the
// items. Scopes from the root are accepted as well.
func resolveScopeRef(s editor.State, action *jsonvalue.Object, ref string) (*jsonschema.Node, error) {
	base := s.Schema
	for _, key := range []string{"layoutId", "containerId"} {
		id, ok := action.String(key)
		if !ok {
			continue
		}
		if target, ok := uischema.Find(s.UISchema, id); ok {
			base = editor.DropScopeBase(s.Schema, target)
		}
		break
	}
	n, err := jsonschema.ResolveScope(base, ref)
	if err != nil && base != s.Schema {
		if root, rootErr := jsonschema.ResolveScope(s.Schema, ref); rootErr == nil {
			return root, nil
		}
	}
	return n, err
}
