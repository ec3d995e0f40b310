// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dacolabs/jsonforms-go/internal/ident"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

// ErrNotFound is returned when a path or scope does not lead to a node.
var ErrNotFound = errors.New("jsonschema: node not found")

// Build converts a JSON Schema document into a schema tree.
// Every node gets a fresh id. A nil document yields a nil tree.
// The document is not modified.
func Build(raw *jsonvalue.Object) (*Node, error) {
	if raw == nil {
		return nil, nil
	}
	return build(raw, nil)
}

func build(raw any, parent *Node) (*Node, error) {
	n := &Node{ID: ident.New(), Parent: parent}
	switch raw := raw.(type) {
	case bool:
		n.Kind = KindOther
		n.Boolean = Ptr(raw)
		return n, nil
	case *jsonvalue.Object:
		n.Schema = raw.Clone()
	default:
		return nil, fmt.Errorf("jsonschema: schema must be an object or boolean, got %s", jsonvalue.TypeName(raw))
	}
	n.Kind = classify(n.Schema)

	switch n.Kind {
	case KindObject:
		if v, ok := n.Schema.Get("properties"); ok {
			props, ok := v.(*jsonvalue.Object)
			if !ok {
				return nil, fmt.Errorf("jsonschema: %q must be an object, got %s", "properties", jsonvalue.TypeName(v))
			}
			n.Schema.Delete("properties")
			n.Properties = make(map[string]*Node, props.Len())
			n.PropertyOrder = []string{}
			for name, ps := range props.All() {
				c, err := build(ps, n)
				if err != nil {
					return nil, fmt.Errorf("properties/%s: %w", name, err)
				}
				n.Properties[name] = c
				n.PropertyOrder = append(n.PropertyOrder, name)
			}
		}

	case KindArray:
		if v, ok := n.Schema.Get("items"); ok {
			n.Schema.Delete("items")
			switch items := v.(type) {
			case []any:
				n.ItemsArray = make([]*Node, 0, len(items))
				for i, is := range items {
					c, err := build(is, n)
					if err != nil {
						return nil, fmt.Errorf("items/%d: %w", i, err)
					}
					n.ItemsArray = append(n.ItemsArray, c)
				}
			default:
				c, err := build(items, n)
				if err != nil {
					return nil, fmt.Errorf("items: %w", err)
				}
				n.Items = c
			}
		}
	}

	if err := n.buildOther(); err != nil {
		return nil, err
	}
	return n, nil
}

// buildOther moves the remaining nested schemas of n.Schema into n.Other.
// Keywords whose values are not all schemas stay in n.Schema untouched.
func (n *Node) buildOther() error {
	add := func(key string, raw any) error {
		c, err := build(raw, n)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if n.Other == nil {
			n.Other = make(map[string]*Node)
		}
		n.Other[key] = c
		n.OtherOrder = append(n.OtherOrder, key)
		return nil
	}
	// Visit keywords in document order so OtherOrder follows the source.
	for _, kw := range n.Schema.Keys() {
		v, _ := n.Schema.Get(kw)
		switch {
		case slices.Contains(singleKeywords, kw):
			if !isSchema(v) {
				continue
			}
			n.Schema.Delete(kw)
			if err := add(kw, v); err != nil {
				return err
			}

		case slices.Contains(listKeywords, kw):
			list, ok := v.([]any)
			if !ok || len(list) == 0 || slices.ContainsFunc(list, notSchema) {
				continue
			}
			n.Schema.Delete(kw)
			for i, s := range list {
				if err := add(kw+"/"+strconv.Itoa(i), s); err != nil {
					return err
				}
			}

		case slices.Contains(mapKeywords, kw):
			m, ok := v.(*jsonvalue.Object)
			if !ok || m.Len() == 0 {
				continue
			}
			allSchemas := true
			for _, s := range m.All() {
				allSchemas = allSchemas && isSchema(s)
			}
			if !allSchemas {
				continue
			}
			n.Schema.Delete(kw)
			for name, s := range m.All() {
				if err := add(kw+"/"+name, s); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func isSchema(v any) bool {
	switch v.(type) {
	case bool, *jsonvalue.Object:
		return true
	}
	return false
}

func notSchema(v any) bool { return !isSchema(v) }

// classify determines the kind of a raw schema. An explicit "type" wins;
// without one, the structural keywords decide.
func classify(s *jsonvalue.Object) Kind {
	if typ, ok := schemaType(s); ok {
		switch {
		case typ == "object":
			return KindObject
		case typ == "array":
			return KindArray
		case primitiveTypes[typ]:
			return KindPrimitive
		}
	}
	switch {
	case s.Has("properties"):
		return KindObject
	case s.Has("items"):
		return KindArray
	case s.Has("enum"), s.Has("const"):
		return KindPrimitive
	}
	return KindOther
}

// schemaType returns the value of "type". For a list of types, the first
// one other than "null" is used.
func schemaType(s *jsonvalue.Object) (string, bool) {
	v, ok := s.Get("type")
	if !ok {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case []any:
		var first string
		for _, t := range v {
			ts, ok := t.(string)
			if !ok {
				continue
			}
			if first == "" {
				first = ts
			}
			if ts != "null" {
				return ts, true
			}
		}
		return first, first != ""
	}
	return "", false
}

// ToRaw rebuilds the JSON Schema document represented by n.
// The result is a *jsonvalue.Object, or a bool for a boolean schema.
// Keyword content round-trips through [Build]; nested schemas follow the
// keywords of n.Schema, in declaration order.
func ToRaw(n *Node) any {
	if n == nil {
		return nil
	}
	if n.Boolean != nil {
		return *n.Boolean
	}
	out := n.Schema.Clone()
	if out == nil {
		out = jsonvalue.NewObject()
	}
	if n.Properties != nil {
		props := jsonvalue.NewObject()
		for _, name := range n.PropertyOrder {
			props.Set(name, ToRaw(n.Properties[name]))
		}
		out.Set("properties", props)
	}
	switch {
	case n.Items != nil:
		out.Set("items", ToRaw(n.Items))
	case n.ItemsArray != nil:
		items := make([]any, len(n.ItemsArray))
		for i, c := range n.ItemsArray {
			items[i] = ToRaw(c)
		}
		out.Set("items", items)
	}
	for _, key := range n.OtherOrder {
		c := ToRaw(n.Other[key])
		kw, rest, nested := strings.Cut(key, "/")
		switch {
		case !nested:
			out.Set(kw, c)
		case slices.Contains(listKeywords, kw):
			list, _ := out.Array(kw)
			out.Set(kw, append(list, c))
		default:
			m, ok := out.Object(kw)
			if !ok {
				m = jsonvalue.NewObject()
				out.Set(kw, m)
			}
			m.Set(rest, c)
		}
	}
	return out
}

// ToRawObject is like [ToRaw] for callers that expect an object schema.
// A boolean schema true renders as the empty object; false as {"not": {}}.
func ToRawObject(n *Node) *jsonvalue.Object {
	switch raw := ToRaw(n).(type) {
	case *jsonvalue.Object:
		return raw
	case bool:
		if raw {
			return jsonvalue.NewObject()
		}
		return jsonvalue.ObjectOf("not", jsonvalue.NewObject())
	}
	return nil
}

// Resolve follows path segments from base. The root marker "#" and empty
// segments are skipped; segments use JSON Pointer escaping.
func Resolve(base *Node, segments []string) (*Node, error) {
	if base == nil {
		return nil, ErrNotFound
	}
	var clean []string
	for _, s := range segments {
		if s == "" || s == "#" {
			continue
		}
		clean = append(clean, unescapeSegment(s))
	}
	cur := base
	for i := 0; i < len(clean); i++ {
		seg := clean[i]
		var next *Node
		switch {
		case seg == "properties" && i+1 < len(clean):
			next = cur.Properties[clean[i+1]]
			i++
		case seg == "items" && cur.Items != nil:
			next = cur.Items
		case seg == "items" && i+1 < len(clean):
			idx, err := strconv.Atoi(clean[i+1])
			if err == nil && idx >= 0 && idx < len(cur.ItemsArray) {
				next = cur.ItemsArray[idx]
			}
			i++
		default:
			if c, ok := cur.Other[seg]; ok {
				next = c
			} else if i+1 < len(clean) {
				next = cur.Other[seg+"/"+clean[i+1]]
				i++
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(clean[:min(i+1, len(clean))], "/"))
		}
		cur = next
	}
	return cur, nil
}

// ResolveScope resolves a JSON Forms scope such as "#/properties/name"
// against base.
func ResolveScope(base *Node, scope string) (*Node, error) {
	if !strings.HasPrefix(scope, "#") {
		return nil, fmt.Errorf("%w: scope %q is not a local reference", ErrNotFound, scope)
	}
	return Resolve(base, strings.Split(scope, "/"))
}
