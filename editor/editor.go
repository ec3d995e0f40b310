// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package editor keeps a schema tree and a UI schema tree consistent across
// structural edits.
//
// An [Editor] reduces a [State] and an [Action] to a new State. Every edit
// works on deep copies of the trees, so earlier States stay valid snapshots.
// Controls are linked to the schema nodes their scopes resolve to; the links
// are kept on both sides and repaired after every edit.
package editor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dacolabs/jsonforms-go/dnd"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

var (
	ErrNotFound     = errors.New("editor: element not found")
	ErrNotContainer = uischema.ErrNotContainer
	ErrIllegalMove  = errors.New("editor: illegal move")
	ErrIllegalDrop  = errors.New("editor: schema node cannot be dropped there")
	ErrNotControl   = errors.New("editor: element is not a control")
	ErrDetailLink   = errors.New("editor: detail link does not resolve")
)

// An Editor applies actions. It owns the selection state of one editing
// session. An Editor is not safe for concurrent use.
type Editor struct {
	log zerolog.Logger
	sel *Selection
}

// An Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for rejected and applied actions.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// New returns an Editor that logs to the global logger.
func New(opts ...Option) *Editor {
	e := &Editor{log: log.Logger, sel: NewSelection()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Selection returns the editor's selection state.
func (e *Editor) Selection() *Selection { return e.sel }

// Reduce applies a to state. On failure it returns state itself together
// with the error; state is never modified.
func (e *Editor) Reduce(state State, a Action) (State, error) {
	if a == nil {
		panic("editor: nil action")
	}
	next, err := e.reduce(state, a)
	if err != nil {
		e.log.Warn().Err(err).Str("action", a.Type()).Msg("action rejected")
		return state, err
	}
	e.sel.Sync(next.UISchema)
	e.log.Debug().Str("action", a.Type()).Msg("action applied")
	return next, nil
}

func (e *Editor) reduce(state State, a Action) (State, error) {
	switch a := a.(type) {
	case SetSchema:
		return e.setSchema(state, a)
	case SetUISchema:
		return e.setUISchema(state, a)
	case SetSchemas:
		return e.setSchemas(a)
	case AddScopedElementToLayout:
		return e.addScoped(state, a)
	case AddUnscopedElementToLayout:
		return e.addUnscoped(state, a)
	case MoveUISchemaElement:
		return e.move(state, a)
	case RemoveUISchemaElement:
		return e.remove(state, a)
	case UpdateUISchemaElement:
		return e.update(state, a)
	case AddDetail:
		return e.addDetail(state, a)
	}
	return state, fmt.Errorf("%w: unsupported action %T", ErrInvalidAction, a)
}

func (e *Editor) setSchema(state State, a SetSchema) (State, error) {
	schema, err := jsonschema.Build(a.Schema)
	if err != nil {
		return state, err
	}
	ui := state.UISchema.Clone()
	CleanUILinks(ui)
	return Link(schema, ui), nil
}

func (e *Editor) setUISchema(state State, a SetUISchema) (State, error) {
	ui, err := uischema.Build(a.UISchema)
	if err != nil {
		return state, err
	}
	schema := state.Schema.Clone()
	CleanSchemaLinks(schema)
	e.sel.ClearTabs()
	return Link(schema, ui), nil
}

func (e *Editor) setSchemas(a SetSchemas) (State, error) {
	schema, err := jsonschema.Build(a.Schema)
	if err != nil {
		return State{}, err
	}
	ui, err := uischema.Build(a.UISchema)
	if err != nil {
		return State{}, err
	}
	e.sel.Clear()
	return Link(schema, ui), nil
}

// container finds the layout id in a copy of the UI tree.
func container(ui *uischema.Node, id string) (*uischema.Node, error) {
	n, ok := uischema.Find(ui, id)
	if !ok {
		return nil, fmt.Errorf("%w: layout %s", ErrNotFound, id)
	}
	if !n.IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, n)
	}
	return n, nil
}

func (e *Editor) addScoped(state State, a AddScopedElementToLayout) (State, error) {
	if a.Element == nil || a.Element.Kind != uischema.KindControl {
		return state, fmt.Errorf("%w: scoped element %s", ErrNotControl, a.Element)
	}
	ui := state.UISchema.Clone()
	layout, err := container(ui, a.LayoutID)
	if err != nil {
		return state, err
	}
	schema := state.Schema.Clone()
	target, ok := jsonschema.Find(schema, a.SchemaNodeID)
	if !ok {
		return state, fmt.Errorf("%w: schema node %s", ErrNotFound, a.SchemaNodeID)
	}
	el := a.Element.Clone()
	if !dnd.CanDropNewElementIntoScope(dnd.NewScopedElement{Element: el, SchemaNodeID: a.SchemaNodeID}, schema, layout) {
		return state, fmt.Errorf("%w: %s into %s", ErrIllegalDrop, target, layout)
	}
	// The stored scope must lead back to target when the document is
	// loaded again.
	if el.Props == nil {
		el.Props = jsonvalue.ObjectOf("type", "Control")
	}
	el.Props.Set("scope", jsonschema.ScopeFromRoot(target))
	if err := uischema.Insert(layout, el, a.Index); err != nil {
		return state, err
	}
	if n, ok := resolveControl(schema, el); !ok || n != target {
		return state, fmt.Errorf("%w: scope %s does not resolve to %s inside %s", ErrIllegalDrop, jsonschema.ScopeFromRoot(target), target, layout)
	}
	link(el, target)
	return State{Schema: schema, UISchema: ui}, nil
}

func (e *Editor) addUnscoped(state State, a AddUnscopedElementToLayout) (State, error) {
	if a.Element == nil {
		return state, fmt.Errorf("%w: no element", ErrInvalidAction)
	}
	ui := state.UISchema.Clone()
	layout, err := container(ui, a.LayoutID)
	if err != nil {
		return state, err
	}
	if err := uischema.Insert(layout, a.Element.Clone(), a.Index); err != nil {
		return state, err
	}
	return State{Schema: state.Schema, UISchema: ui}, nil
}

func (e *Editor) move(state State, a MoveUISchemaElement) (State, error) {
	ui := state.UISchema.Clone()
	el, ok := uischema.Find(ui, a.ElementID)
	if !ok {
		return state, fmt.Errorf("%w: element %s", ErrNotFound, a.ElementID)
	}
	target, ok := uischema.Find(ui, a.ContainerID)
	if !ok {
		return state, fmt.Errorf("%w: container %s", ErrNotFound, a.ContainerID)
	}
	if dnd.IsNoOpMove(el, target, a.Index) {
		e.log.Debug().Str("element", a.ElementID).Int("index", a.Index).Msg("move leaves the tree unchanged")
		return state, nil
	}
	if !dnd.CanMoveElementTo(dnd.MoveElement{Element: el, SchemaNodeID: a.SchemaNodeID}, target, a.Index) {
		return state, fmt.Errorf("%w: %s into %s at %d", ErrIllegalMove, el, target, a.Index)
	}

	schema := state.Schema
	var rebind *jsonschema.Node
	if a.SchemaNodeID != "" {
		schema = schema.Clone()
		if rebind, ok = jsonschema.Find(schema, a.SchemaNodeID); !ok {
			return state, fmt.Errorf("%w: schema node %s", ErrNotFound, a.SchemaNodeID)
		}
	}

	index := a.Index
	sameParent := el.Parent == target
	if old := uischema.Detach(el); sameParent && old >= 0 && old < index {
		// the slot was counted with el still in place
		index--
	}
	if err := uischema.Insert(target, el, index); err != nil {
		return state, fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	if rebind != nil {
		unlink(schema, el)
		link(el, rebind)
	}
	return State{Schema: schema, UISchema: ui}, nil
}

func (e *Editor) remove(state State, a RemoveUISchemaElement) (State, error) {
	ui := state.UISchema.Clone()
	el, ok := uischema.Find(ui, a.ElementID)
	if !ok {
		return state, fmt.Errorf("%w: element %s", ErrNotFound, a.ElementID)
	}
	schema := state.Schema.Clone()
	for n := range uischema.All(el) {
		unlink(schema, n)
	}
	e.sel.RemoveElement(el)
	if el.Parent == nil {
		return State{Schema: schema}, nil
	}
	uischema.Detach(el)
	return State{Schema: schema, UISchema: ui}, nil
}

func (e *Editor) update(state State, a UpdateUISchemaElement) (State, error) {
	ui := state.UISchema.Clone()
	el, ok := uischema.Find(ui, a.ElementID)
	if !ok {
		return state, fmt.Errorf("%w: element %s", ErrNotFound, a.ElementID)
	}
	changes := a.Changes.Clone()
	changes.Delete("elements")
	if opts, ok := changes.Object("options"); ok {
		if _, ok := opts.Object("detail"); ok {
			opts.Delete("detail")
		}
	}
	if typ, ok := changes.String("type"); ok && uischema.KindOf(typ) != el.Kind {
		return state, fmt.Errorf("%w: cannot turn %s into %s", ErrInvalidAction, el, typ)
	}

	oldScope, _ := el.Scope()
	if el.Props == nil {
		el.Props = changes
	} else {
		el.Props.Merge(changes)
	}

	schema := state.Schema
	if scope, _ := el.Scope(); el.Kind == uischema.KindControl && scope != oldScope {
		schema = schema.Clone()
		unlink(schema, el)
		if target, ok := resolveControl(schema, el); ok {
			link(el, target)
		}
		relinkDetail(schema, el)
	}
	return State{Schema: schema, UISchema: ui}, nil
}

func (e *Editor) addDetail(state State, a AddDetail) (State, error) {
	if a.Detail == nil {
		return state, fmt.Errorf("%w: no detail", ErrInvalidAction)
	}
	ui := state.UISchema.Clone()
	ctrl, ok := uischema.Find(ui, a.ControlID)
	if !ok {
		return state, fmt.Errorf("%w: control %s", ErrNotFound, a.ControlID)
	}
	if ctrl.Kind != uischema.KindControl {
		return state, fmt.Errorf("%w: %s", ErrNotControl, ctrl)
	}
	schema := state.Schema.Clone()
	old := ctrl.Detail
	if old != nil {
		for n := range uischema.All(old) {
			unlink(schema, n)
		}
		uischema.Detach(old)
	}

	detail := a.Detail.Clone()
	if err := uischema.Insert(ctrl, detail, 0); err != nil {
		return state, err
	}
	for n := range uischema.All(detail) {
		if n.Kind != uischema.KindControl {
			continue
		}
		if id := n.LinkedSchemaNode; id != "" {
			target, ok := jsonschema.Find(schema, id)
			if !ok {
				return state, fmt.Errorf("%w: %s is linked to missing schema node %s", ErrDetailLink, n, id)
			}
			target.Link(n.ID)
			continue
		}
		if target, ok := resolveControl(schema, n); ok {
			link(n, target)
		}
	}
	if old != nil {
		e.sel.RemoveElement(old)
	}
	return State{Schema: schema, UISchema: ui}, nil
}
