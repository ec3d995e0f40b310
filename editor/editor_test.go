// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"},
		"tags": {
			"type": "array",
			"items": {"type": "object", "properties": {"label": {"type": "string"}}}
		}
	}
}`

const personUI = `{
	"type": "VerticalLayout",
	"elements": [
		{"type": "Control", "scope": "#/properties/name"},
		{"type": "Control", "scope": "#/properties/age"},
		{"type": "HorizontalLayout", "elements": []},
		{"type": "Control", "scope": "#/properties/tags"}
	]
}`

func obj(t *testing.T, src string) *jsonvalue.Object {
	t.Helper()
	if src == "" {
		return nil
	}
	o, err := jsonvalue.ParseObject([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func uiNode(t *testing.T, src string) *uischema.Node {
	t.Helper()
	n, err := uischema.Build(obj(t, src))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func load(t *testing.T, schema, ui string) (*Editor, State) {
	t.Helper()
	e := New(WithLogger(zerolog.Nop()))
	s, err := e.Reduce(State{}, SetSchemas{Schema: obj(t, schema), UISchema: obj(t, ui)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, s)
	return e, s
}

// checkConsistent verifies parent pointers and that every link is present
// on both sides.
func checkConsistent(t *testing.T, s State) {
	t.Helper()
	for n := range uischema.All(s.UISchema) {
		for _, c := range n.ChildNodes() {
			if c.Parent != n {
				t.Errorf("%v: child %v has parent %v", n, c, c.Parent)
			}
		}
		if n.LinkedSchemaNode == "" {
			continue
		}
		sn, ok := jsonschema.Find(s.Schema, n.LinkedSchemaNode)
		if !ok || !sn.IsLinked(n.ID) {
			t.Errorf("%v: link to %s is one-sided", n, n.LinkedSchemaNode)
		}
	}
	for sn := range jsonschema.All(s.Schema) {
		for _, id := range sn.LinkedIDs() {
			un, ok := uischema.Find(s.UISchema, id)
			if !ok || un.LinkedSchemaNode != sn.ID {
				t.Errorf("%v: link to UI node %s is one-sided", sn, id)
			}
		}
	}
}

// snapshot renders everything a State holds, ids and links included.
func snapshot(t *testing.T, s State) string {
	t.Helper()
	var b strings.Builder
	if s.UISchema != nil {
		data, err := jsonvalue.MarshalJSON(uischema.DebugForm(s.UISchema))
		if err != nil {
			t.Fatal(err)
		}
		b.Write(data)
	}
	for n := range jsonschema.All(s.Schema) {
		fmt.Fprintf(&b, "\n%s %s %v", n.ID, jsonschema.ScopeFromRoot(n), n.LinkedIDs())
	}
	return b.String()
}

// order lists the scope, or else the type, of each element of n.
func order(n *uischema.Node) []string {
	out := []string{}
	for _, e := range n.Elements {
		if s, ok := e.Scope(); ok {
			out = append(out, s)
		} else {
			out = append(out, e.Type())
		}
	}
	return out
}

func TestNameScenario(t *testing.T) {
	_, s := load(t,
		`{"type": "object", "properties": {"name": {"type": "string"}}}`,
		`{"type": "Control", "scope": "#/properties/name"}`)

	if s.Schema.Kind != jsonschema.KindObject || len(s.Schema.Properties) != 1 {
		t.Fatalf("schema root = %v", s.Schema)
	}
	name := s.Schema.Properties["name"]
	if name.Kind != jsonschema.KindPrimitive {
		t.Errorf("name kind = %s", name.Kind)
	}
	if s.UISchema.LinkedSchemaNode != name.ID {
		t.Errorf("control linked to %q, want %q", s.UISchema.LinkedSchemaNode, name.ID)
	}
	if diff := cmp.Diff([]string{s.UISchema.ID}, name.LinkedIDs()); diff != "" {
		t.Errorf("linked UI nodes (-want +got):\n%s", diff)
	}
}

func TestLinkDetailScopes(t *testing.T) {
	_, s := load(t, personSchema, `{
		"type": "VerticalLayout",
		"elements": [
			{"type": "Control", "scope": "#/properties/tags", "options": {"detail": {
				"type": "VerticalLayout",
				"elements": [
					{"type": "Control", "scope": "#/properties/label"},
					{"type": "Control", "scope": "#/properties/name"}
				]
			}}},
			{"type": "Control", "scope": "#/properties/label"},
			{"type": "Control", "scope": "#/properties/missing"},
			{"type": "Label", "text": "x"}
		]
	}`)
	tags := s.Schema.Properties["tags"]
	tagsCtrl := s.UISchema.Elements[0]
	detail := tagsCtrl.Detail

	if tagsCtrl.LinkedSchemaNode != tags.ID {
		t.Error("array control not linked")
	}
	if got := detail.Elements[0].LinkedSchemaNode; got != tags.Items.Properties["label"].ID {
		t.Errorf("detail control linked to %q, want the items' label", got)
	}
	// Inside the detail, scopes are relative to the items.
	if got := detail.Elements[1].LinkedSchemaNode; got != "" {
		t.Errorf("root property resolved inside detail: %q", got)
	}
	for _, n := range s.UISchema.Elements[1:] {
		if n.LinkedSchemaNode != "" {
			t.Errorf("%v linked to %s", n, n.LinkedSchemaNode)
		}
	}
}

func TestLinkNil(t *testing.T) {
	ui := uiNode(t, `{"type": "Control", "scope": "#"}`)
	s := Link(nil, ui)
	if s.Schema != nil || s.UISchema != ui || ui.LinkedSchemaNode != "" {
		t.Errorf("Link(nil, ui) = %+v", s)
	}
	if s := Link(nil, nil); s.Schema != nil || s.UISchema != nil {
		t.Errorf("Link(nil, nil) = %+v", s)
	}
}

func TestSetSchemaInvalidatesStaleLinks(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	before := snapshot(t, s)
	nameCtrl := s.UISchema.Elements[0]

	renamed := strings.Replace(personSchema, `"name"`, `"fullName"`, 1)
	next, err := e.Reduce(s, SetSchema{Schema: obj(t, renamed)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)

	ctrl, ok := uischema.Find(next.UISchema, nameCtrl.ID)
	if !ok {
		t.Fatal("control lost")
	}
	if ctrl.LinkedSchemaNode != "" {
		t.Errorf("stale control still linked to %s", ctrl.LinkedSchemaNode)
	}
	for n := range jsonschema.All(next.Schema) {
		if n.IsLinked(nameCtrl.ID) {
			t.Errorf("%v still references the stale control", n)
		}
	}
	if age := next.UISchema.Elements[1]; age.LinkedSchemaNode != next.Schema.Properties["age"].ID {
		t.Error("age control not relinked to the new schema")
	}
	if got := snapshot(t, s); got != before {
		t.Error("previous state was modified")
	}

	if _, err := e.Reduce(s, SetSchema{Schema: obj(t, `{"type": "array", "items": 3}`)}); err == nil {
		t.Error("invalid schema accepted")
	}
}

func TestSetUISchema(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	before := snapshot(t, s)
	next, err := e.Reduce(s, SetUISchema{UISchema: obj(t, `{"type": "Control", "scope": "#/properties/age"}`)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	if got := next.Schema.Properties["name"].LinkedIDs(); len(got) != 0 {
		t.Errorf("name keeps links %v", got)
	}
	if diff := cmp.Diff([]string{next.UISchema.ID}, next.Schema.Properties["age"].LinkedIDs()); diff != "" {
		t.Errorf("age links (-want +got):\n%s", diff)
	}
	if next.Schema.ID != s.Schema.ID {
		t.Error("schema ids changed")
	}
	if got := snapshot(t, s); got != before {
		t.Error("previous state was modified")
	}

	cleared, err := e.Reduce(next, SetUISchema{})
	if err != nil || cleared.UISchema != nil {
		t.Fatalf("clearing UI schema: %v, %v", cleared.UISchema, err)
	}
	checkConsistent(t, cleared)
}

func TestAddScopedElement(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	before := snapshot(t, s)
	age := s.Schema.Properties["age"]
	ctrl := uischema.NewControl("#/properties/age")

	next, err := e.Reduce(s, AddScopedElementToLayout{
		Element:      ctrl,
		LayoutID:     s.UISchema.Elements[2].ID,
		SchemaNodeID: age.ID,
		Index:        0,
	})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	added := next.UISchema.Elements[2].Elements[0]
	if added.ID != ctrl.ID || added == ctrl {
		t.Errorf("added %v, want a copy of %v", added, ctrl)
	}
	nextAge := next.Schema.Properties["age"]
	if !nextAge.IsLinked(ctrl.ID) || !nextAge.IsLinked(s.UISchema.Elements[1].ID) {
		t.Errorf("age links = %v", nextAge.LinkedIDs())
	}
	if ctrl.Parent != nil || ctrl.LinkedSchemaNode != "" {
		t.Error("action payload was modified")
	}
	if got := snapshot(t, s); got != before {
		t.Error("previous state was modified")
	}

	for _, tt := range []struct {
		name string
		a    AddScopedElementToLayout
		want error
	}{
		{"unknown schema node", AddScopedElementToLayout{Element: ctrl, LayoutID: s.UISchema.ID, SchemaNodeID: "nope"}, ErrNotFound},
		{"unknown layout", AddScopedElementToLayout{Element: ctrl, LayoutID: "nope", SchemaNodeID: age.ID}, ErrNotFound},
		{"control target", AddScopedElementToLayout{Element: ctrl, LayoutID: s.UISchema.Elements[0].ID, SchemaNodeID: age.ID}, ErrNotContainer},
		{"not a control", AddScopedElementToLayout{Element: uischema.NewElement("Group"), LayoutID: s.UISchema.ID, SchemaNodeID: age.ID}, ErrNotControl},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Reduce(s, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got.UISchema != s.UISchema || got.Schema != s.Schema {
				t.Error("state changed")
			}
		})
	}
}

const tagsDetailUI = `{
	"type": "VerticalLayout",
	"elements": [
		{"type": "HorizontalLayout", "elements": []},
		{"type": "Control", "scope": "#/properties/tags", "options": {"detail": {
			"type": "VerticalLayout",
			"elements": []
		}}}
	]
}`

func TestAddScopedElementInDetail(t *testing.T) {
	e, s := load(t, personSchema, tagsDetailUI)
	label := s.Schema.Properties["tags"].Items.Properties["label"]
	detail := s.UISchema.Elements[1].Detail

	// The scope written into the document comes from the schema node,
	// whatever the dropped element carried.
	ctrl := uischema.NewControl("#/properties/tags/items/properties/label")
	next, err := e.Reduce(s, AddScopedElementToLayout{Element: ctrl, LayoutID: detail.ID, SchemaNodeID: label.ID})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	added := next.UISchema.Elements[1].Detail.Elements[0]
	if got, _ := added.Scope(); got != "#/properties/label" {
		t.Errorf("scope = %q, want %q", got, "#/properties/label")
	}
	if added.LinkedSchemaNode != label.ID {
		t.Errorf("linked to %q, want the items' label", added.LinkedSchemaNode)
	}

	// Loading the saved document again links the control to the same node.
	ui, err := uischema.Build(uischema.ToRaw(next.UISchema))
	if err != nil {
		t.Fatal(err)
	}
	schema := next.Schema.Clone()
	CleanSchemaLinks(schema)
	reloaded := Link(schema, ui)
	if got := reloaded.UISchema.Elements[1].Detail.Elements[0].LinkedSchemaNode; got != label.ID {
		t.Errorf("reloaded control linked to %q, want %q", got, label.ID)
	}

	for _, tt := range []struct {
		name   string
		layout string
		node   string
	}{
		{"items property outside the detail", s.UISchema.Elements[0].ID, label.ID},
		{"root property inside the detail", detail.ID, s.Schema.Properties["name"].ID},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Reduce(s, AddScopedElementToLayout{
				Element:      uischema.NewControl("#"),
				LayoutID:     tt.layout,
				SchemaNodeID: tt.node,
			})
			if !errors.Is(err, ErrIllegalDrop) {
				t.Errorf("error = %v, want %v", err, ErrIllegalDrop)
			}
			if got.UISchema != s.UISchema || got.Schema != s.Schema {
				t.Error("state changed")
			}
		})
	}
}

func TestDropScopeBase(t *testing.T) {
	_, s := load(t, personSchema, tagsDetailUI)
	tags := s.Schema.Properties["tags"]
	tagsCtrl := s.UISchema.Elements[1]
	for _, tt := range []struct {
		name   string
		target *uischema.Node
		want   *jsonschema.Node
	}{
		{"root layout", s.UISchema.Elements[0], s.Schema},
		{"detail layout", tagsCtrl.Detail, tags.Items},
		{"array control", tagsCtrl, tags.Items},
		{"nil", nil, s.Schema},
	} {
		if got := DropScopeBase(s.Schema, tt.target); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAddUnscopedElement(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	group := uischema.NewElement("Group")
	next, err := e.Reduce(s, AddUnscopedElementToLayout{Element: group, LayoutID: s.UISchema.ID, Index: 1})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	want := []string{"#/properties/name", "Group", "#/properties/age", "HorizontalLayout", "#/properties/tags"}
	if diff := cmp.Diff(want, order(next.UISchema)); diff != "" {
		t.Errorf("elements (-want +got):\n%s", diff)
	}
	if len(s.UISchema.Elements) != 4 {
		t.Error("previous state was modified")
	}

	if _, err := e.Reduce(State{}, AddUnscopedElementToLayout{Element: group, LayoutID: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("add to empty state: %v", err)
	}
}

func TestMove(t *testing.T) {
	const (
		name = "#/properties/name"
		age  = "#/properties/age"
		tags = "#/properties/tags"
		row  = "HorizontalLayout"
	)
	for _, tt := range []struct {
		desc      string
		element   int
		container int // -1 for the root
		index     int
		want      []string
		wantInner []string
	}{
		{"forward", 0, -1, 2, []string{age, name, row, tags}, []string{}},
		{"to end", 0, -1, 4, []string{age, row, tags, name}, []string{}},
		{"backward", 3, -1, 0, []string{tags, name, age, row}, []string{}},
		{"into layout", 0, 2, 0, []string{age, row, tags}, []string{name}},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			e, s := load(t, personSchema, personUI)
			before := snapshot(t, s)
			container := s.UISchema
			if tt.container >= 0 {
				container = s.UISchema.Elements[tt.container]
			}
			el := s.UISchema.Elements[tt.element]
			next, err := e.Reduce(s, MoveUISchemaElement{ElementID: el.ID, ContainerID: container.ID, Index: tt.index})
			if err != nil {
				t.Fatal(err)
			}
			checkConsistent(t, next)
			if diff := cmp.Diff(tt.want, order(next.UISchema)); diff != "" {
				t.Errorf("root elements (-want +got):\n%s", diff)
			}
			inner, _ := uischema.Find(next.UISchema, s.UISchema.Elements[2].ID)
			if diff := cmp.Diff(tt.wantInner, order(inner)); diff != "" {
				t.Errorf("inner elements (-want +got):\n%s", diff)
			}
			moved, _ := uischema.Find(next.UISchema, el.ID)
			if moved.LinkedSchemaNode != el.LinkedSchemaNode {
				t.Error("move changed the element's link")
			}
			if got := snapshot(t, s); got != before {
				t.Error("previous state was modified")
			}
		})
	}
}

func TestMoveIntoDetail(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	row := s.UISchema.Elements[2]
	tagsCtrl := s.UISchema.Elements[3]
	next, err := e.Reduce(s, MoveUISchemaElement{ElementID: row.ID, ContainerID: tagsCtrl.ID})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	ctrl, _ := uischema.Find(next.UISchema, tagsCtrl.ID)
	if ctrl.Detail == nil || ctrl.Detail.ID != row.ID {
		t.Fatalf("detail = %v", ctrl.Detail)
	}
	if len(next.UISchema.Elements) != 3 {
		t.Errorf("root has %d elements", len(next.UISchema.Elements))
	}
}

func TestMoveNoOp(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	before := snapshot(t, s)
	el := s.UISchema.Elements[1]
	for _, index := range []int{1, 2} {
		next, err := e.Reduce(s, MoveUISchemaElement{ElementID: el.ID, ContainerID: s.UISchema.ID, Index: index})
		if err != nil {
			t.Fatalf("index %d: %v", index, err)
		}
		if got := snapshot(t, next); got != before {
			t.Errorf("index %d: tree changed\ngot  %s\nwant %s", index, got, before)
		}
	}
}

func TestMoveRejected(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	root := s.UISchema
	for _, tt := range []struct {
		name string
		a    MoveUISchemaElement
		want error
	}{
		{"root", MoveUISchemaElement{ElementID: root.ID, ContainerID: root.Elements[2].ID}, ErrIllegalMove},
		{"into itself", MoveUISchemaElement{ElementID: root.Elements[2].ID, ContainerID: root.Elements[2].ID}, ErrIllegalMove},
		{"control into control", MoveUISchemaElement{ElementID: root.Elements[0].ID, ContainerID: root.Elements[3].ID}, ErrIllegalMove},
		{"unknown element", MoveUISchemaElement{ElementID: "nope", ContainerID: root.ID}, ErrNotFound},
		{"unknown container", MoveUISchemaElement{ElementID: root.Elements[0].ID, ContainerID: "nope"}, ErrNotFound},
		{"unknown schema node", MoveUISchemaElement{ElementID: root.Elements[0].ID, ContainerID: root.ID, Index: 4, SchemaNodeID: "nope"}, ErrNotFound},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Reduce(s, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got.UISchema != s.UISchema {
				t.Error("state changed")
			}
		})
	}
}

func TestMoveRebind(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	nameCtrl := s.UISchema.Elements[0]
	age := s.Schema.Properties["age"]
	next, err := e.Reduce(s, MoveUISchemaElement{ElementID: nameCtrl.ID, ContainerID: s.UISchema.ID, Index: 3, SchemaNodeID: age.ID})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	moved, _ := uischema.Find(next.UISchema, nameCtrl.ID)
	if moved.LinkedSchemaNode != age.ID {
		t.Errorf("moved control linked to %q", moved.LinkedSchemaNode)
	}
	if got := next.Schema.Properties["name"].LinkedIDs(); len(got) != 0 {
		t.Errorf("name keeps links %v", got)
	}
	if !s.Schema.Properties["name"].IsLinked(nameCtrl.ID) {
		t.Error("previous schema was modified")
	}
}

func TestRemove(t *testing.T) {
	e, s := load(t, personSchema, `{
		"type": "VerticalLayout",
		"elements": [
			{"type": "Control", "scope": "#/properties/name"},
			{"type": "Group", "elements": [
				{"type": "Control", "scope": "#/properties/age"},
				{"type": "Control", "scope": "#/properties/tags", "options": {"detail": {
					"type": "VerticalLayout", "elements": [{"type": "Control", "scope": "#/properties/label"}]
				}}}
			]}
		]
	}`)
	before := snapshot(t, s)

	t.Run("control", func(t *testing.T) {
		ctrl := s.UISchema.Elements[0]
		next, err := e.Reduce(s, RemoveUISchemaElement{ElementID: ctrl.ID})
		if err != nil {
			t.Fatal(err)
		}
		checkConsistent(t, next)
		if got := next.Schema.Properties["name"].LinkedIDs(); len(got) != 0 {
			t.Errorf("name keeps links %v", got)
		}
		if _, ok := uischema.Find(next.UISchema, ctrl.ID); ok {
			t.Error("control still in tree")
		}
	})

	t.Run("layout", func(t *testing.T) {
		group := s.UISchema.Elements[1]
		var ids []string
		for n := range uischema.All(group) {
			ids = append(ids, n.ID)
		}
		next, err := e.Reduce(s, RemoveUISchemaElement{ElementID: group.ID})
		if err != nil {
			t.Fatal(err)
		}
		checkConsistent(t, next)
		for _, id := range ids {
			if _, ok := uischema.Find(next.UISchema, id); ok {
				t.Errorf("%s still in tree", id)
			}
			for n := range jsonschema.All(next.Schema) {
				if n.IsLinked(id) {
					t.Errorf("%v still linked to %s", n, id)
				}
			}
		}
		if len(next.UISchema.Elements) != 1 {
			t.Errorf("root has %d elements", len(next.UISchema.Elements))
		}
	})

	t.Run("root", func(t *testing.T) {
		next, err := e.Reduce(s, RemoveUISchemaElement{ElementID: s.UISchema.ID})
		if err != nil {
			t.Fatal(err)
		}
		if next.UISchema != nil {
			t.Error("UI schema not cleared")
		}
		for n := range jsonschema.All(next.Schema) {
			if len(n.LinkedUINodes) != 0 {
				t.Errorf("%v keeps links", n)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := e.Reduce(s, RemoveUISchemaElement{ElementID: "nope"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v", err)
		}
	})

	if got := snapshot(t, s); got != before {
		t.Error("previous state was modified")
	}
}

func TestRemoveBrokenLink(t *testing.T) {
	schema, err := jsonschema.Build(obj(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	ui := uiNode(t, `{"type": "VerticalLayout", "elements": [{"type": "Control", "scope": "#/properties/gone"}]}`)
	ui.Elements[0].LinkedSchemaNode = "no-such-node"

	e := New(WithLogger(zerolog.Nop()))
	next, err := e.Reduce(State{Schema: schema, UISchema: ui}, RemoveUISchemaElement{ElementID: ui.Elements[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	if next.UISchema == nil || len(next.UISchema.Elements) != 0 {
		t.Errorf("UI schema = %v", next.UISchema)
	}
}

func TestRemovePurgesTabs(t *testing.T) {
	e, s := load(t, personSchema, `{
		"type": "VerticalLayout",
		"elements": [
			{"type": "Categorization", "elements": [
				{"type": "Category", "elements": [
					{"type": "Categorization", "elements": [{"type": "Category", "elements": []}]}
				]}
			]},
			{"type": "Categorization", "elements": []}
		]
	}`)
	outer := s.UISchema.Elements[0]
	inner := outer.Elements[0].Elements[0]
	other := s.UISchema.Elements[1]
	sel := e.Selection()
	sel.SetTab(outer.ID, 0)
	sel.SetTab(inner.ID, 0)
	sel.SetTab(other.ID, 1)
	sel.Select(inner.Elements[0].ID)

	if _, err := e.Reduce(s, RemoveUISchemaElement{ElementID: outer.ID}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{outer.ID, inner.ID} {
		if _, ok := sel.Tab(id); ok {
			t.Errorf("tab of removed %s kept", id)
		}
	}
	if i, ok := sel.Tab(other.ID); !ok || i != 1 {
		t.Errorf("unrelated tab = %d, %t", i, ok)
	}
	if sel.Selected() != "" {
		t.Error("selection inside removed element kept")
	}
}

func TestUpdate(t *testing.T) {
	e, s := load(t, personSchema, `{
		"type": "VerticalLayout",
		"elements": [
			{"type": "Control", "scope": "#/properties/name"},
			{"type": "Control", "scope": "#/properties/tags", "options": {"detail": {"type": "VerticalLayout"}}}
		]
	}`)
	nameCtrl := s.UISchema.Elements[0]
	tagsCtrl := s.UISchema.Elements[1]

	next, err := e.Reduce(s, UpdateUISchemaElement{
		ElementID: nameCtrl.ID,
		Changes:   obj(t, `{"label": "Full name", "options": {"readonly": true, "detail": {"type": "Group"}}}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := uischema.ToRaw(next.UISchema.Elements[0])
	want := obj(t, `{"type": "Control", "scope": "#/properties/name", "label": "Full name", "options": {"readonly": true}}`)
	if !jsonvalue.Equal(want, got) {
		out, _ := jsonvalue.MarshalJSON(got)
		t.Errorf("updated control = %s", out)
	}
	if next.UISchema.Elements[0].LinkedSchemaNode != nameCtrl.LinkedSchemaNode {
		t.Error("unchanged scope lost its link")
	}

	next, err = e.Reduce(s, UpdateUISchemaElement{ElementID: tagsCtrl.ID, Changes: obj(t, `{"options": {"showSortButtons": true}}`)})
	if err != nil {
		t.Fatal(err)
	}
	if d := next.UISchema.Elements[1].Detail; d == nil || d.ID != tagsCtrl.Detail.ID {
		t.Error("detail lost by update")
	}

	next, err = e.Reduce(s, UpdateUISchemaElement{ElementID: nameCtrl.ID, Changes: obj(t, `{"scope": "#/properties/age"}`)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	if got := next.UISchema.Elements[0].LinkedSchemaNode; got != s.Schema.Properties["age"].ID {
		t.Errorf("rescoped control linked to %q", got)
	}
	if got := next.Schema.Properties["name"].LinkedIDs(); len(got) != 0 {
		t.Errorf("name keeps links %v", got)
	}

	next, err = e.Reduce(s, UpdateUISchemaElement{ElementID: nameCtrl.ID, Changes: obj(t, `{"scope": "#/properties/nope"}`)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	if next.UISchema.Elements[0].LinkedSchemaNode != "" {
		t.Error("dangling scope is linked")
	}

	if _, err := e.Reduce(s, UpdateUISchemaElement{ElementID: nameCtrl.ID, Changes: obj(t, `{"type": "Label"}`)}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("kind change: %v", err)
	}
	if _, err := e.Reduce(s, UpdateUISchemaElement{ElementID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown element: %v", err)
	}
}

func TestUpdateRescopesDetail(t *testing.T) {
	e, s := load(t, `{
		"type": "object",
		"properties": {
			"a": {"type": "array", "items": {"type": "object", "properties": {"x": {"type": "string"}}}},
			"b": {"type": "array", "items": {"type": "object", "properties": {"x": {"type": "string"}}}}
		}
	}`, `{
		"type": "Control",
		"scope": "#/properties/a",
		"options": {"detail": {
			"type": "VerticalLayout",
			"elements": [{"type": "Control", "scope": "#/properties/x"}]
		}}
	}`)
	ax := s.Schema.Properties["a"].Items.Properties["x"]
	bx := s.Schema.Properties["b"].Items.Properties["x"]
	if got := s.UISchema.Detail.Elements[0].LinkedSchemaNode; got != ax.ID {
		t.Fatalf("detail control linked to %q, want a's x", got)
	}

	next, err := e.Reduce(s, UpdateUISchemaElement{ElementID: s.UISchema.ID, Changes: obj(t, `{"scope": "#/properties/b"}`)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	inner := next.UISchema.Detail.Elements[0]
	if inner.LinkedSchemaNode != bx.ID {
		t.Errorf("detail control linked to %q, want b's x %q", inner.LinkedSchemaNode, bx.ID)
	}
	if got := next.Schema.Properties["a"].Items.Properties["x"].LinkedIDs(); len(got) != 0 {
		t.Errorf("a's x keeps links %v", got)
	}
	if !s.Schema.Properties["a"].Items.Properties["x"].IsLinked(inner.ID) {
		t.Error("previous state was modified")
	}

	// The same document loaded from scratch links identically.
	schema := next.Schema.Clone()
	CleanSchemaLinks(schema)
	ui := next.UISchema.Clone()
	CleanUILinks(ui)
	if got := Link(schema, ui).UISchema.Detail.Elements[0].LinkedSchemaNode; got != inner.LinkedSchemaNode {
		t.Errorf("fresh link = %q, edited link = %q", got, inner.LinkedSchemaNode)
	}

	// A scope that no longer resolves to an array leaves the detail unlinked.
	next, err = e.Reduce(s, UpdateUISchemaElement{ElementID: s.UISchema.ID, Changes: obj(t, `{"scope": "#/properties/nope"}`)})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	if got := next.UISchema.Detail.Elements[0].LinkedSchemaNode; got != "" {
		t.Errorf("detail control still linked to %q", got)
	}
}

func TestAddDetail(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	tagsCtrl := s.UISchema.Elements[3]
	label := s.Schema.Properties["tags"].Items.Properties["label"]
	before := snapshot(t, s)

	detail := uiNode(t, `{"type": "VerticalLayout", "elements": [{"type": "Control", "scope": "#/properties/label"}]}`)
	next, err := e.Reduce(s, AddDetail{ControlID: tagsCtrl.ID, Detail: detail})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	inner := detail.Elements[0]
	nextLabel, _ := jsonschema.Find(next.Schema, label.ID)
	if !nextLabel.IsLinked(inner.ID) {
		t.Errorf("label links = %v, want %s", nextLabel.LinkedIDs(), inner.ID)
	}
	if got := snapshot(t, s); got != before {
		t.Error("previous state was modified")
	}

	// A second detail replaces the first one and its links.
	second := uiNode(t, `{"type": "Group", "elements": [{"type": "Control", "scope": "#/properties/label"}]}`)
	final, err := e.Reduce(next, AddDetail{ControlID: tagsCtrl.ID, Detail: second})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, final)
	finalLabel, _ := jsonschema.Find(final.Schema, label.ID)
	if diff := cmp.Diff([]string{second.Elements[0].ID}, finalLabel.LinkedIDs()); diff != "" {
		t.Errorf("label links (-want +got):\n%s", diff)
	}
	if _, ok := uischema.Find(final.UISchema, inner.ID); ok {
		t.Error("old detail still in tree")
	}
}

func TestAddDetailFailures(t *testing.T) {
	e, s := load(t, personSchema, personUI)
	tagsCtrl := s.UISchema.Elements[3]

	broken := uiNode(t, `{"type": "VerticalLayout", "elements": [{"type": "Control", "scope": "#/properties/label"}]}`)
	broken.Elements[0].LinkedSchemaNode = "missing"
	preset := uiNode(t, `{"type": "VerticalLayout", "elements": [{"type": "Control", "scope": "#/whatever"}]}`)
	preset.Elements[0].LinkedSchemaNode = s.Schema.Properties["age"].ID

	for _, tt := range []struct {
		name string
		a    AddDetail
		want error
	}{
		{"broken preset link", AddDetail{ControlID: tagsCtrl.ID, Detail: broken}, ErrDetailLink},
		{"unknown control", AddDetail{ControlID: "nope", Detail: preset}, ErrNotFound},
		{"not a control", AddDetail{ControlID: s.UISchema.Elements[2].ID, Detail: preset}, ErrNotControl},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Reduce(s, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got.UISchema != s.UISchema || got.Schema != s.Schema {
				t.Error("state changed")
			}
		})
	}

	next, err := e.Reduce(s, AddDetail{ControlID: tagsCtrl.ID, Detail: preset})
	if err != nil {
		t.Fatal(err)
	}
	checkConsistent(t, next)
	if !next.Schema.Properties["age"].IsLinked(preset.Elements[0].ID) {
		t.Error("preset link not registered")
	}
}

func TestReduceNilActionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic")
		}
	}()
	New(WithLogger(zerolog.Nop())).Reduce(State{}, nil)
}
