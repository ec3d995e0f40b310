// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package uischema

import (
	"fmt"

	"github.com/dacolabs/jsonforms-go/internal/ident"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

// Build converts a UI schema document into a tree, assigning fresh ids and
// parents. A nil document yields a nil tree. The document is not modified.
func Build(raw *jsonvalue.Object) (*Node, error) {
	if raw == nil {
		return nil, nil
	}
	return build(raw, nil)
}

func build(raw *jsonvalue.Object, parent *Node) (*Node, error) {
	n := &Node{ID: ident.New(), Parent: parent, Props: raw.Clone()}
	typ, _ := n.Props.String("type")
	n.Kind = KindOf(typ)

	if n.IsContainer() {
		if v, ok := n.Props.Get("elements"); ok {
			elems, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("uischema: %q must be an array, got %s", "elements", jsonvalue.TypeName(v))
			}
			n.Props.Delete("elements")
			n.Elements = make([]*Node, 0, len(elems))
			for i, e := range elems {
				eo, ok := e.(*jsonvalue.Object)
				if !ok {
					return nil, fmt.Errorf("uischema: elements/%d: element must be an object, got %s", i, jsonvalue.TypeName(e))
				}
				c, err := build(eo, n)
				if err != nil {
					return nil, fmt.Errorf("elements/%d: %w", i, err)
				}
				n.Elements = append(n.Elements, c)
			}
		}
	}

	if n.Kind == KindControl {
		opts, _ := n.Props.Object("options")
		if detail, ok := opts.Object("detail"); ok {
			c, err := build(detail, n)
			if err != nil {
				return nil, fmt.Errorf("options/detail: %w", err)
			}
			n.Detail = c
			opts.Delete("detail")
			if opts.Len() == 0 {
				n.Props.Delete("options")
			}
		}
	}
	return n, nil
}

// ToRaw rebuilds the UI schema document of n, without ids or links.
func ToRaw(n *Node) *jsonvalue.Object {
	return render(n, false)
}

// DebugForm is like [ToRaw] but adds each node's "id", its parent's id as
// "parent", and its "linkedSchemaNode".
func DebugForm(n *Node) *jsonvalue.Object {
	return render(n, true)
}

func render(n *Node, debug bool) *jsonvalue.Object {
	if n == nil {
		return nil
	}
	out := n.Props.Clone()
	if out == nil {
		out = jsonvalue.NewObject()
	}
	if n.Elements != nil {
		elems := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = render(e, debug)
		}
		out.Set("elements", elems)
	}
	if n.Detail != nil {
		opts, ok := out.Object("options")
		if !ok {
			opts = jsonvalue.NewObject()
			out.Set("options", opts)
		}
		opts.Set("detail", render(n.Detail, debug))
	}
	if debug {
		out.Set("id", n.ID)
		if n.Parent != nil {
			out.Set("parent", n.Parent.ID)
		} else {
			out.Set("parent", nil)
		}
		if n.LinkedSchemaNode != "" {
			out.Set("linkedSchemaNode", n.LinkedSchemaNode)
		}
	}
	return out
}

// Generate returns the default UI schema for a schema: a VerticalLayout with
// one Control per property of an object root, or a single Control for any
// other root. It returns nil for a nil schema.
func Generate(schema *jsonschema.Node) *jsonvalue.Object {
	if schema == nil {
		return nil
	}
	if schema.Kind != jsonschema.KindObject {
		return jsonvalue.ObjectOf("type", "Control", "scope", "#")
	}
	elems := []any{}
	for _, name := range schema.PropertyOrder {
		prop := schema.Properties[name]
		elems = append(elems, jsonvalue.ObjectOf(
			"type", "Control",
			"scope", jsonschema.ScopeFromRoot(prop),
		))
	}
	return jsonvalue.ObjectOf("type", "VerticalLayout", "elements", elems)
}
