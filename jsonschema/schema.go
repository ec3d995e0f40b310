// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dacolabs/jsonforms-go/internal/tree"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

// Kind classifies a schema node by the structure it can hold.
type Kind int

const (
	KindOther     Kind = iota // anything else, including boolean schemas
	KindObject                // holds Properties
	KindArray                 // holds Items or ItemsArray
	KindPrimitive             // string, number, integer, boolean, null, enum, const
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	default:
		return "other"
	}
}

// A Node is one schema in a schema tree built from a JSON Schema document.
//
// Nested schemas are split off the raw document into child nodes; Schema keeps
// the remaining keywords of this level only. For example, an object node's
// Schema has no "properties" keyword: the properties are in Properties.
//
// Like the document it came from, a Node distinguishes nil and empty
// containers: Properties is non-nil exactly when "properties" was present.
// Items and ItemsArray are mutually exclusive.
type Node struct {
	// ID is assigned when the node is built and never reused.
	ID   string
	Kind Kind

	// Schema is the raw fragment for this level. It is nil for a boolean schema.
	Schema *jsonvalue.Object
	// Boolean is set for the boolean schemas true and false.
	Boolean *bool

	// Parent is nil for the root. It is only used to walk upwards.
	Parent *Node

	// objects
	Properties map[string]*Node
	// PropertyOrder is the declaration order of Properties.
	PropertyOrder []string

	// arrays
	Items      *Node
	ItemsArray []*Node

	// Other holds the remaining nested schemas, keyed by keyword for
	// single-schema keywords ("not", "if"), by keyword/index for schema
	// lists ("allOf/0"), and by keyword/name for schema maps ("$defs/address").
	Other      map[string]*Node
	OtherOrder []string

	// LinkedUINodes is the set of UI schema control ids whose scope
	// resolves to this node.
	LinkedUINodes map[string]struct{}
}

// Nested-schema keywords other than "properties" and "items".
var (
	singleKeywords = []string{
		"additionalItems", "additionalProperties", "contains", "contentSchema",
		"else", "if", "not", "propertyNames", "then",
		"unevaluatedItems", "unevaluatedProperties",
	}
	listKeywords = []string{"allOf", "anyOf", "oneOf", "prefixItems"}
	mapKeywords  = []string{"$defs", "definitions", "dependentSchemas", "patternProperties"}
)

var primitiveTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"null":    true,
}

// String returns a short description of the node.
func (n *Node) String() string {
	if n == nil {
		return "<nil schema node>"
	}
	return fmt.Sprintf("%s schema %s", n.Kind, n.ID)
}

// ParentNode returns n's parent.
func (n *Node) ParentNode() *Node { return n.Parent }

// ChildNodes returns the direct children of n: properties in declaration
// order, then items, then the other nested schemas.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for _, name := range n.PropertyOrder {
		out = append(out, n.Properties[name])
	}
	if n.Items != nil {
		out = append(out, n.Items)
	}
	out = append(out, n.ItemsArray...)
	for _, k := range n.OtherOrder {
		out = append(out, n.Other[k])
	}
	return out
}

// Children returns the direct children of n.
func Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return n.ChildNodes()
}

// All iterates over n and every node under it, in preorder.
func All(n *Node) iter.Seq[*Node] {
	return tree.All(n)
}

// Find returns the node with the given id under root.
func Find(root *Node, id string) (*Node, bool) {
	return tree.Find(root, func(n *Node) bool { return n.ID == id })
}

// Title returns the schema's "title", if any.
func (n *Node) Title() (string, bool) {
	return n.Schema.String("title")
}

// Link records that the UI schema node uiID is scoped to n.
func (n *Node) Link(uiID string) {
	if n.LinkedUINodes == nil {
		n.LinkedUINodes = make(map[string]struct{})
	}
	n.LinkedUINodes[uiID] = struct{}{}
}

// Unlink removes uiID from n's links.
func (n *Node) Unlink(uiID string) {
	delete(n.LinkedUINodes, uiID)
}

// IsLinked reports whether uiID is linked to n.
func (n *Node) IsLinked(uiID string) bool {
	_, ok := n.LinkedUINodes[uiID]
	return ok
}

// LinkedIDs returns the linked UI node ids, sorted.
func (n *Node) LinkedIDs() []string {
	return slices.Sorted(maps.Keys(n.LinkedUINodes))
}

// Clone returns a deep copy of the tree rooted at n.
// Ids and links are kept, so a node of the copy can be found by the id of
// the original. The copy's root has no parent.
func (n *Node) Clone() *Node {
	return n.clone(nil)
}

func (n *Node) clone(parent *Node) *Node {
	if n == nil {
		return nil
	}
	n2 := *n
	n2.Parent = parent
	n2.Schema = n.Schema.Clone()
	if n.Boolean != nil {
		n2.Boolean = Ptr(*n.Boolean)
	}
	if n.Properties != nil {
		n2.Properties = make(map[string]*Node, len(n.Properties))
		for k, c := range n.Properties {
			n2.Properties[k] = c.clone(&n2)
		}
	}
	n2.PropertyOrder = slices.Clone(n.PropertyOrder)
	n2.Items = n.Items.clone(&n2)
	if n.ItemsArray != nil {
		n2.ItemsArray = make([]*Node, len(n.ItemsArray))
		for i, c := range n.ItemsArray {
			n2.ItemsArray[i] = c.clone(&n2)
		}
	}
	if n.Other != nil {
		n2.Other = make(map[string]*Node, len(n.Other))
		for k, c := range n.Other {
			n2.Other[k] = c.clone(&n2)
		}
	}
	n2.OtherOrder = slices.Clone(n.OtherOrder)
	n2.LinkedUINodes = maps.Clone(n.LinkedUINodes)
	return &n2
}

// Ptr returns a pointer to a new variable whose value is x.
func Ptr[T any](x T) *T { return &x }

// key returns the segments addressing n inside its parent.
func (n *Node) key() []string {
	p := n.Parent
	if p == nil {
		return nil
	}
	for name, c := range p.Properties {
		if c == n {
			return []string{"properties", name}
		}
	}
	if p.Items == n {
		return []string{"items"}
	}
	if i := slices.Index(p.ItemsArray, n); i >= 0 {
		return []string{"items", strconv.Itoa(i)}
	}
	for k, c := range p.Other {
		if c == n {
			kw, rest, ok := strings.Cut(k, "/")
			if ok {
				return []string{kw, rest}
			}
			return []string{kw}
		}
	}
	return nil
}

// isItemsOf reports whether n is the items schema (or a tuple entry) of p.
func (n *Node) isItemsOf(p *Node) bool {
	return p != nil && p.Kind == KindArray && (p.Items == n || slices.Contains(p.ItemsArray, n))
}

// PathFromRoot returns the full structural path from the root of n's tree
// to n, e.g. ["properties", "address", "properties", "street"].
func PathFromRoot(n *Node) []string {
	var rev [][]string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		rev = append(rev, cur.key())
	}
	var path []string
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i]...)
	}
	return path
}

// ScopeFromRoot returns the JSON Forms scope of n. Array elements are not
// addressable by index, so the scope stops ascending at the nearest
// enclosing array: the items schema of an array has scope "#".
func ScopeFromRoot(n *Node) string {
	var rev [][]string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if cur.isItemsOf(cur.Parent) {
			break
		}
		rev = append(rev, cur.key())
	}
	var b strings.Builder
	b.WriteString("#")
	for i := len(rev) - 1; i >= 0; i-- {
		for _, seg := range rev[i] {
			b.WriteByte('/')
			b.WriteString(escapeSegment(seg))
		}
	}
	return b.String()
}

// NearestEnclosingArray returns the closest array whose items contain n,
// or nil if n is not inside array items.
func NearestEnclosingArray(n *Node) *Node {
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if cur.isItemsOf(cur.Parent) {
			return cur.Parent
		}
	}
	return nil
}

// NoLabel is the label of a node with neither a title nor a name.
const NoLabel = "<No Label>"

// Label returns a display label for n: its title, else its property name or
// tuple index, else [NoLabel].
func Label(n *Node) string {
	if n == nil {
		return NoLabel
	}
	if title, ok := n.Title(); ok && title != "" {
		return title
	}
	if p := n.Parent; p != nil {
		for name, c := range p.Properties {
			if c == n {
				return name
			}
		}
		if i := slices.Index(p.ItemsArray, n); i >= 0 {
			return strconv.Itoa(i)
		}
	}
	return NoLabel
}

func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

func (n Node) MarshalJSON() ([]byte, error) {
	// NOTE: value receiver, so that json.Marshal renders a Node the same way
	// whether or not it is addressable.
	return jsonvalue.MarshalJSON(ToRaw(&n))
}

// MarshalYAML implements yaml.Marshaler by rendering the raw schema.
func (n Node) MarshalYAML() (any, error) {
	return jsonvalue.YAMLNode(ToRaw(&n))
}
