// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"github.com/dacolabs/jsonforms-go/uischema"
)

// Selection tracks the selected UI element and the selected tab of every
// categorization. It is keyed by element id and lives as long as its
// Editor; the Editor drops entries for elements that leave the tree.
type Selection struct {
	selected string
	tabs     map[string]int
}

// NewSelection returns an empty Selection.
func NewSelection() *Selection {
	return &Selection{tabs: make(map[string]int)}
}

// Select marks the element id as selected. An empty id clears the selection.
func (s *Selection) Select(id string) { s.selected = id }

// Selected returns the selected element id, or "".
func (s *Selection) Selected() string { return s.selected }

// SetTab records the selected tab index of a categorization.
func (s *Selection) SetTab(categorizationID string, index int) {
	s.tabs[categorizationID] = index
}

// Tab returns the selected tab index of a categorization.
func (s *Selection) Tab(categorizationID string) (int, bool) {
	i, ok := s.tabs[categorizationID]
	return i, ok
}

// RemoveElement forgets n and everything under it: the selection if it
// points into n, and the tabs of n and its categorizations and categories.
func (s *Selection) RemoveElement(n *uischema.Node) {
	for c := range uischema.All(n) {
		if c.ID == s.selected {
			s.selected = ""
		}
		if c.Kind == uischema.KindCategorization || c.Kind == uischema.KindCategory {
			delete(s.tabs, c.ID)
		}
	}
}

// Clear forgets everything.
func (s *Selection) Clear() {
	s.selected = ""
	s.ClearTabs()
}

// ClearTabs forgets all tab selections.
func (s *Selection) ClearTabs() {
	clear(s.tabs)
}

// Sync drops every entry whose element is no longer in root.
func (s *Selection) Sync(root *uischema.Node) {
	live := make(map[string]bool)
	for n := range uischema.All(root) {
		live[n.ID] = true
	}
	if !live[s.selected] {
		s.selected = ""
	}
	for id := range s.tabs {
		if !live[id] {
			delete(s.tabs, id)
		}
	}
}
