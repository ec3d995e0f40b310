// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package uischema builds and queries JSON Forms UI schema trees.
//
// A UI schema document nests elements through "elements" and, for controls
// over arrays or objects, through an object-valued "options.detail". The tree
// built from it has one [Node] per element, each with a stable id and a
// parent pointer.
package uischema

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/dacolabs/jsonforms-go/internal/ident"
	"github.com/dacolabs/jsonforms-go/internal/tree"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
)

// Kind is the variant of a UI schema node.
type Kind int

const (
	KindLayout Kind = iota
	KindControl
	KindLabel
	KindCategorization
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindControl:
		return "Control"
	case KindLabel:
		return "Label"
	case KindCategorization:
		return "Categorization"
	case KindCategory:
		return "Category"
	default:
		return "Layout"
	}
}

// KindOf maps the "type" keyword to a Kind. Unknown types are layouts.
func KindOf(typ string) Kind {
	switch typ {
	case "Control":
		return KindControl
	case "Label":
		return KindLabel
	case "Categorization":
		return KindCategorization
	case "Category":
		return KindCategory
	}
	return KindLayout
}

var (
	// ErrNotContainer is returned when inserting into a node that cannot
	// hold the element.
	ErrNotContainer = errors.New("uischema: node cannot hold elements")

	// ErrNoPath is returned by [ResolvePath] for a path that leads nowhere.
	ErrNoPath = errors.New("uischema: no element at path")
)

// A Node is one element of a UI schema tree.
type Node struct {
	ID   string
	Kind Kind

	// Props holds every keyword of the element except "elements" and an
	// object-valued "options.detail".
	Props *jsonvalue.Object

	// Parent is nil for the root.
	Parent *Node

	// Elements is used by layouts, categorizations and categories.
	Elements []*Node
	// Detail is the nested layout of a control.
	Detail *Node

	// LinkedSchemaNode is the id of the schema node the control's scope
	// resolves to, or "".
	LinkedSchemaNode string
}

func (n *Node) String() string {
	if n == nil {
		return "<nil ui node>"
	}
	return fmt.Sprintf("%s %s", n.Type(), n.ID)
}

// ParentNode returns n's parent.
func (n *Node) ParentNode() *Node { return n.Parent }

// ChildNodes returns the elements of n followed by its detail.
func (n *Node) ChildNodes() []*Node {
	if n.Detail == nil {
		return n.Elements
	}
	return append(slices.Clip(n.Elements), n.Detail)
}

// Type returns the "type" keyword, e.g. "VerticalLayout".
func (n *Node) Type() string {
	if t, ok := n.Props.String("type"); ok {
		return t
	}
	return n.Kind.String()
}

// Scope returns the "scope" keyword of n.
func (n *Node) Scope() (string, bool) {
	return n.Props.String("scope")
}

// IsContainer reports whether n holds an ordered list of elements.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case KindLayout, KindCategorization, KindCategory:
		return true
	}
	return false
}

// All iterates over n and every node under it, in preorder.
func All(n *Node) iter.Seq[*Node] {
	return tree.All(n)
}

// Find returns the node with the given id under root.
func Find(root *Node, id string) (*Node, bool) {
	return tree.Find(root, func(n *Node) bool { return n.ID == id })
}

// IsAncestor reports whether a is n or an ancestor of n.
func IsAncestor(a, n *Node) bool {
	return tree.IsAncestor(a, n)
}

// Root returns the root of n's tree.
func Root(n *Node) *Node {
	return tree.Root(n)
}

// ContainsControls reports whether n or any node under it is a Control.
func ContainsControls(n *Node) bool {
	for c := range All(n) {
		if c.Kind == KindControl {
			return true
		}
	}
	return false
}

// DetailContainer returns the nearest control whose detail is n or an
// ancestor of n, or nil when n is not inside a detail.
func DetailContainer(n *Node) *Node {
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if cur.Parent.Detail == cur {
			return cur.Parent
		}
	}
	return nil
}

// IndexOf returns the position of n in its parent's elements, or -1.
func IndexOf(n *Node) int {
	if n.Parent == nil {
		return -1
	}
	return slices.Index(n.Parent.Elements, n)
}

// Insert adds child to container. For a layout the child is placed at index
// in its elements; index is clamped to the list. A control without a detail
// takes child as its detail and index is ignored.
func Insert(container, child *Node, index int) error {
	switch {
	case container.IsContainer():
		index = max(0, min(index, len(container.Elements)))
		container.Elements = slices.Insert(container.Elements, index, child)
	case container.Kind == KindControl && container.Detail == nil:
		container.Detail = child
	case container.Kind == KindControl:
		return fmt.Errorf("%w: control %s already has a detail", ErrNotContainer, container.ID)
	default:
		return fmt.Errorf("%w: %s", ErrNotContainer, container)
	}
	child.Parent = container
	return nil
}

// Detach removes n from its parent and returns the index it had in the
// parent's elements, or -1 if it was a detail or a root.
func Detach(n *Node) int {
	p := n.Parent
	if p == nil {
		return -1
	}
	n.Parent = nil
	if p.Detail == n {
		p.Detail = nil
		return -1
	}
	i := slices.Index(p.Elements, n)
	if i >= 0 {
		p.Elements = slices.Delete(p.Elements, i, i+1)
	}
	return i
}

// Clone returns a deep copy of the tree rooted at n, ids and links
// included. The copy's root has no parent.
func (n *Node) Clone() *Node {
	return n.clone(nil)
}

func (n *Node) clone(parent *Node) *Node {
	if n == nil {
		return nil
	}
	n2 := *n
	n2.Parent = parent
	n2.Props = n.Props.Clone()
	if n.Elements != nil {
		n2.Elements = make([]*Node, len(n.Elements))
		for i, e := range n.Elements {
			n2.Elements[i] = e.clone(&n2)
		}
	}
	n2.Detail = n.Detail.clone(&n2)
	return &n2
}

// A PathError reports a node that cannot be reached from the root of the
// tree its parent pointers lead to.
type PathError struct {
	ID string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("uischema: node %s is not reachable from its root", e.ID)
}

// PathFromRoot returns the segments leading from the root to n, such as
// ["elements", "0", "options", "detail"].
func PathFromRoot(n *Node) ([]string, error) {
	var rev [][]string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		p := cur.Parent
		if p.Detail == cur {
			rev = append(rev, []string{"options", "detail"})
			continue
		}
		i := slices.Index(p.Elements, cur)
		if i < 0 {
			return nil, &PathError{ID: cur.ID}
		}
		rev = append(rev, []string{"elements", fmt.Sprint(i)})
	}
	path := []string{}
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i]...)
	}
	return path, nil
}

// ResolvePath is the inverse of [PathFromRoot]. The path is written as a
// JSON Pointer, such as "/elements/0/options/detail"; "" and "/" are root.
func ResolvePath(root *Node, pointer string) (*Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoPath, pointer)
	}
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return root, nil
	}
	segs := strings.Split(pointer, "/")
	if len(segs)%2 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPath, "/"+pointer)
	}
	cur := root
	for i := 0; i < len(segs); i += 2 {
		var next *Node
		switch segs[i] {
		case "elements":
			if idx, err := strconv.Atoi(segs[i+1]); err == nil && idx >= 0 && idx < len(cur.Elements) {
				next = cur.Elements[idx]
			}
		case "options":
			if segs[i+1] == "detail" {
				next = cur.Detail
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoPath, "/"+strings.Join(segs[:i+2], "/"))
		}
		cur = next
	}
	return cur, nil
}

// NewElement returns a fresh, parentless element of the given type, as a
// palette would create it. Containers start with no elements.
func NewElement(typ string) *Node {
	n := &Node{
		ID:    ident.New(),
		Kind:  KindOf(typ),
		Props: jsonvalue.ObjectOf("type", typ),
	}
	if n.IsContainer() {
		n.Elements = []*Node{}
	}
	return n
}

// NewControl returns a fresh control with the given scope.
func NewControl(scope string) *Node {
	n := NewElement("Control")
	n.Props.Set("scope", scope)
	return n
}

func (n Node) MarshalJSON() ([]byte, error) {
	return jsonvalue.MarshalJSON(ToRaw(&n))
}
