// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// State is one snapshot of the editor: a schema tree and a UI schema tree,
// either of which may be nil. A State returned by [Editor.Reduce] is never
// modified afterwards.
type State struct {
	Schema   *jsonschema.Node
	UISchema *uischema.Node
}

// Link connects every control of ui to the schema node its scope resolves
// to, in both directions, and returns the pair as a State. The trees are
// modified in place. If either tree is nil they are returned as they are.
// Controls whose scope does not resolve stay unlinked.
func Link(schema *jsonschema.Node, ui *uischema.Node) State {
	if schema == nil || ui == nil {
		return State{Schema: schema, UISchema: ui}
	}
	// Preorder: a detail's container control is linked before the
	// controls inside the detail look up their scope base.
	for n := range uischema.All(ui) {
		if n.Kind != uischema.KindControl {
			continue
		}
		if target, ok := resolveControl(schema, n); ok {
			link(n, target)
		}
	}
	return State{Schema: schema, UISchema: ui}
}

// CleanUILinks removes the schema links of every node of ui.
func CleanUILinks(ui *uischema.Node) {
	for n := range uischema.All(ui) {
		n.LinkedSchemaNode = ""
	}
}

// CleanSchemaLinks removes the UI links of every node of schema.
func CleanSchemaLinks(schema *jsonschema.Node) {
	for n := range jsonschema.All(schema) {
		n.LinkedUINodes = nil
	}
}

// scopeBase returns the schema node the scopes of ctrl are relative to.
// Inside the detail of a control linked to an array, that is the array's
// items schema; everywhere else it is the root.
func scopeBase(schema *jsonschema.Node, ctrl *uischema.Node) *jsonschema.Node {
	return itemsBase(schema, uischema.DetailContainer(ctrl))
}

// DropScopeBase returns the schema node that the scope of a control placed
// into target is resolved against. A control target takes the control as
// its detail, so it is its own detail container.
func DropScopeBase(schema *jsonschema.Node, target *uischema.Node) *jsonschema.Node {
	if target == nil {
		return schema
	}
	dc := target
	if target.Kind != uischema.KindControl {
		dc = uischema.DetailContainer(target)
	}
	return itemsBase(schema, dc)
}

func itemsBase(schema *jsonschema.Node, dc *uischema.Node) *jsonschema.Node {
	if dc == nil || dc.LinkedSchemaNode == "" {
		return schema
	}
	arr, ok := jsonschema.Find(schema, dc.LinkedSchemaNode)
	if !ok || arr.Kind != jsonschema.KindArray || arr.Items == nil {
		return schema
	}
	return arr.Items
}

// resolveControl resolves the scope of ctrl against schema.
func resolveControl(schema *jsonschema.Node, ctrl *uischema.Node) (*jsonschema.Node, bool) {
	scope, ok := ctrl.Scope()
	if !ok {
		return nil, false
	}
	n, err := jsonschema.ResolveScope(scopeBase(schema, ctrl), scope)
	if err != nil {
		return nil, false
	}
	return n, true
}

// relinkDetail resolves every control inside the detail of ctrl again,
// after the schema node ctrl is linked to has changed.
func relinkDetail(schema *jsonschema.Node, ctrl *uischema.Node) {
	if ctrl.Detail == nil {
		return
	}
	for n := range uischema.All(ctrl.Detail) {
		if n.Kind != uischema.KindControl {
			continue
		}
		unlink(schema, n)
		if target, ok := resolveControl(schema, n); ok {
			link(n, target)
		}
	}
}

func link(ctrl *uischema.Node, n *jsonschema.Node) {
	ctrl.LinkedSchemaNode = n.ID
	n.Link(ctrl.ID)
}

// unlink removes the link of ctrl from both sides. A link to a schema node
// that no longer exists is simply dropped.
func unlink(schema *jsonschema.Node, ctrl *uischema.Node) {
	if ctrl.LinkedSchemaNode == "" {
		return
	}
	if n, ok := jsonschema.Find(schema, ctrl.LinkedSchemaNode); ok {
		n.Unlink(ctrl.ID)
	}
	ctrl.LinkedSchemaNode = ""
}
