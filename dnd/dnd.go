// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package dnd decides whether a drag-and-drop gesture on a UI schema tree
// is structurally legal. The predicates have no side effects.
package dnd

import (
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// An Item is the payload of a drag gesture.
type Item interface {
	element() *uischema.Node
}

// NewScopedElement is a new control bound to a schema node, dragged from
// the schema outline.
type NewScopedElement struct {
	Element      *uischema.Node
	SchemaNodeID string
}

// NewUnscopedElement is a new layout or label dragged from the palette.
type NewUnscopedElement struct {
	Element *uischema.Node
}

// MoveElement is an element of the tree being moved.
type MoveElement struct {
	Element      *uischema.Node
	SchemaNodeID string
}

func (i NewScopedElement) element() *uischema.Node   { return i.Element }
func (i NewUnscopedElement) element() *uischema.Node { return i.Element }
func (i MoveElement) element() *uischema.Node        { return i.Element }

// CanDropNewElementIntoScope reports whether item may be dropped into
// target. Only scoped items are restricted: the schema node they come from
// must sit under the same array as the detail target lives in, so that an
// array item's property is never placed outside that array's detail.
func CanDropNewElementIntoScope(item Item, schemaRoot *jsonschema.Node, target *uischema.Node) bool {
	scoped, ok := item.(NewScopedElement)
	if !ok {
		return true
	}
	n, ok := jsonschema.Find(schemaRoot, scoped.SchemaNodeID)
	if !ok {
		return false
	}
	return jsonschema.NearestEnclosingArray(n) == targetArray(schemaRoot, target)
}

// targetArray returns the array whose items the detail containing target
// is laid out for, or nil at the top level.
func targetArray(schemaRoot *jsonschema.Node, target *uischema.Node) *jsonschema.Node {
	dc := uischema.DetailContainer(target)
	if dc == nil || dc.LinkedSchemaNode == "" {
		return nil
	}
	linked, ok := jsonschema.Find(schemaRoot, dc.LinkedSchemaNode)
	if !ok {
		return nil
	}
	if linked.Kind == jsonschema.KindArray {
		return linked
	}
	return jsonschema.NearestEnclosingArray(linked)
}

// CanMoveElementTo reports whether item may be moved into target at index.
// For a layout target, index is a drop slot in the target's current
// elements (0 to len). A control target takes the item as its detail.
func CanMoveElementTo(item Item, target *uischema.Node, index int) bool {
	el := item.element()
	switch {
	case el == nil || target == nil:
		return false
	case el.Parent == nil:
		// roots stay
		return false
	case uischema.IsAncestor(el, target):
		return false
	case !target.IsContainer() && (target.Kind != uischema.KindControl || target.Detail != nil):
		return false
	case IsNoOpMove(el, target, index):
		return false
	case uischema.ContainsControls(el) && uischema.DetailContainer(el) != detailBase(target):
		return false
	}
	return true
}

// detailBase returns the control whose detail a node placed into target
// would live in. A control target is its own base.
func detailBase(target *uischema.Node) *uischema.Node {
	if target.Kind == uischema.KindControl {
		return target
	}
	return uischema.DetailContainer(target)
}

// IsNoOpMove reports whether moving el to slot index of target leaves the
// tree unchanged: the slot directly before or after el in its own parent.
func IsNoOpMove(el, target *uischema.Node, index int) bool {
	if el.Parent != target || !target.IsContainer() {
		return false
	}
	old := uischema.IndexOf(el)
	return index == old || index == old+1
}
