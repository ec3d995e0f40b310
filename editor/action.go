// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"errors"
	"fmt"

	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// Action type names, as used in the "type" field of an encoded action.
const (
	TypeSetSchema                  = "SET_SCHEMA"
	TypeSetUISchema                = "SET_UI_SCHEMA"
	TypeSetSchemas                 = "SET_SCHEMAS"
	TypeAddScopedElementToLayout   = "ADD_SCOPED_ELEMENT_TO_LAYOUT"
	TypeAddUnscopedElementToLayout = "ADD_UNSCOPED_ELEMENT_TO_LAYOUT"
	TypeMoveUISchemaElement        = "MOVE_UISCHEMA_ELEMENT"
	TypeRemoveUISchemaElement      = "REMOVE_UISCHEMA_ELEMENT"
	TypeUpdateUISchemaElement      = "UPDATE_UISCHEMA_ELEMENT"
	TypeAddDetail                  = "ADD_DETAIL"
)

// An Action is an edit applied by [Editor.Reduce].
type Action interface {
	Type() string
}

// SetSchema replaces the schema and relinks the current UI schema to it.
type SetSchema struct {
	Schema *jsonvalue.Object
}

// SetUISchema replaces the UI schema and relinks it to the current schema.
type SetUISchema struct {
	UISchema *jsonvalue.Object
}

// SetSchemas replaces both documents.
type SetSchemas struct {
	Schema   *jsonvalue.Object
	UISchema *jsonvalue.Object
}

// AddScopedElementToLayout inserts a new control bound to a schema node.
type AddScopedElementToLayout struct {
	Element      *uischema.Node
	LayoutID     string
	SchemaNodeID string
	Index        int
}

// AddUnscopedElementToLayout inserts a new element that has no scope.
type AddUnscopedElementToLayout struct {
	Element  *uischema.Node
	LayoutID string
	Index    int
}

// MoveUISchemaElement moves an element into a container, or into a control
// as its detail. Index is a drop slot in the container's elements as they
// are before the move. A non-empty SchemaNodeID rebinds the element.
type MoveUISchemaElement struct {
	ElementID    string
	ContainerID  string
	Index        int
	SchemaNodeID string
}

// RemoveUISchemaElement removes an element and everything under it.
type RemoveUISchemaElement struct {
	ElementID string
}

// UpdateUISchemaElement merges Changes into the element's properties.
type UpdateUISchemaElement struct {
	ElementID string
	Changes   *jsonvalue.Object
}

// AddDetail sets the detail layout of a control.
type AddDetail struct {
	ControlID string
	Detail    *uischema.Node
}

func (SetSchema) Type() string                  { return TypeSetSchema }
func (SetUISchema) Type() string                { return TypeSetUISchema }
func (SetSchemas) Type() string                 { return TypeSetSchemas }
func (AddScopedElementToLayout) Type() string   { return TypeAddScopedElementToLayout }
func (AddUnscopedElementToLayout) Type() string { return TypeAddUnscopedElementToLayout }
func (MoveUISchemaElement) Type() string        { return TypeMoveUISchemaElement }
func (RemoveUISchemaElement) Type() string      { return TypeRemoveUISchemaElement }
func (UpdateUISchemaElement) Type() string      { return TypeUpdateUISchemaElement }
func (AddDetail) Type() string                  { return TypeAddDetail }

// ErrInvalidAction is returned for a malformed encoded action.
var ErrInvalidAction = errors.New("editor: invalid action")

// DecodeAction decodes an action from its JSON form, an object with a
// "type" field and the action's fields in camel case:
//
//	{"type": "MOVE_UISCHEMA_ELEMENT", "elementId": "...", "containerId": "...", "index": 0}
//
// Elements and details are given as UI schema documents and get fresh ids.
func DecodeAction(data []byte) (Action, error) {
	obj, err := jsonvalue.ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	return ActionFromObject(obj)
}

// ActionFromObject is like [DecodeAction] for an already parsed object.
func ActionFromObject(obj *jsonvalue.Object) (Action, error) {
	d := decoder{obj: obj}
	typ := d.str("type", true)
	var a Action
	switch typ {
	case TypeSetSchema:
		a = SetSchema{Schema: d.object("schema", false)}
	case TypeSetUISchema:
		a = SetUISchema{UISchema: d.object("uiSchema", false)}
	case TypeSetSchemas:
		a = SetSchemas{
			Schema:   d.object("schema", false),
			UISchema: d.object("uiSchema", false),
		}
	case TypeAddScopedElementToLayout:
		a = AddScopedElementToLayout{
			Element:      d.element("element"),
			LayoutID:     d.str("layoutId", true),
			SchemaNodeID: d.str("schemaNodeId", true),
			Index:        d.integer("index"),
		}
	case TypeAddUnscopedElementToLayout:
		a = AddUnscopedElementToLayout{
			Element:  d.element("element"),
			LayoutID: d.str("layoutId", true),
			Index:    d.integer("index"),
		}
	case TypeMoveUISchemaElement:
		a = MoveUISchemaElement{
			ElementID:    d.str("elementId", true),
			ContainerID:  d.str("containerId", true),
			Index:        d.integer("index"),
			SchemaNodeID: d.str("schemaNodeId", false),
		}
	case TypeRemoveUISchemaElement:
		a = RemoveUISchemaElement{ElementID: d.str("elementId", true)}
	case TypeUpdateUISchemaElement:
		a = UpdateUISchemaElement{
			ElementID: d.str("elementId", true),
			Changes:   d.object("changes", true),
		}
	case TypeAddDetail:
		a = AddDetail{
			ControlID: d.str("controlId", true),
			Detail:    d.element("detail"),
		}
	default:
		if d.err == nil {
			d.fail("unknown action type %q", typ)
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

// decoder reads action fields, keeping the first error.
type decoder struct {
	obj *jsonvalue.Object
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) str(key string, required bool) string {
	v, ok := d.obj.Get(key)
	if !ok || v == nil {
		if required {
			d.fail("missing %q", key)
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail("%q must be a string, got %s", key, jsonvalue.TypeName(v))
	}
	return s
}

func (d *decoder) integer(key string) int {
	v, ok := d.obj.Get(key)
	if !ok {
		d.fail("missing %q", key)
		return 0
	}
	i, ok := jsonvalue.Int(v)
	if !ok {
		d.fail("%q must be an integer, got %s", key, jsonvalue.TypeName(v))
	}
	return i
}

func (d *decoder) object(key string, required bool) *jsonvalue.Object {
	v, ok := d.obj.Get(key)
	if !ok || v == nil {
		if required {
			d.fail("missing %q", key)
		}
		return nil
	}
	o, ok := v.(*jsonvalue.Object)
	if !ok {
		d.fail("%q must be an object, got %s", key, jsonvalue.TypeName(v))
	}
	return o
}

func (d *decoder) element(key string) *uischema.Node {
	raw := d.object(key, true)
	if raw == nil {
		return nil
	}
	n, err := uischema.Build(raw)
	if err != nil {
		d.fail("%s: %v", key, err)
	}
	return n
}
