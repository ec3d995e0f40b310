// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tree provides traversal helpers shared by the schema and UI
// schema trees. Both trees keep child collections for ownership and a
// parent pointer for upward walks.
package tree

import "iter"

// Node is implemented by tree nodes. N is the node's own pointer type.
// A node with no parent returns the zero N from ParentNode.
type Node[N any] interface {
	comparable
	ParentNode() N
	ChildNodes() []N
}

// every applies f preorder to n and every node under it.
// It stops when f returns false.
func every[N Node[N]](n N, f func(N) bool) bool {
	if !f(n) {
		return false
	}
	for _, c := range n.ChildNodes() {
		if !every(c, f) {
			return false
		}
	}
	return true
}

// All iterates over n and its descendants in preorder.
// A zero n yields nothing.
func All[N Node[N]](n N) iter.Seq[N] {
	return func(yield func(N) bool) {
		var zero N
		if n == zero {
			return
		}
		every(n, yield)
	}
}

// Find returns the first node under root, in preorder, for which match is true.
func Find[N Node[N]](root N, match func(N) bool) (N, bool) {
	for n := range All(root) {
		if match(n) {
			return n, true
		}
	}
	var zero N
	return zero, false
}

// Hierarchy iterates from n up to the root, n included.
func Hierarchy[N Node[N]](n N) iter.Seq[N] {
	return func(yield func(N) bool) {
		var zero N
		for cur := n; cur != zero; cur = cur.ParentNode() {
			if !yield(cur) {
				return
			}
		}
	}
}

// Root returns the topmost ancestor of n.
func Root[N Node[N]](n N) N {
	root := n
	for cur := range Hierarchy(n) {
		root = cur
	}
	return root
}

// IsAncestor reports whether a is n or one of n's ancestors.
func IsAncestor[N Node[N]](a, n N) bool {
	for cur := range Hierarchy(n) {
		if cur == a {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of n.
func Depth[N Node[N]](n N) int {
	d := -1
	for range Hierarchy(n) {
		d++
	}
	return d
}
