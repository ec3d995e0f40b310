// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package editor

import (
	"testing"

	"github.com/dacolabs/jsonforms-go/uischema"
)

func TestSelection(t *testing.T) {
	root := uiNode(t, `{"type": "Categorization", "elements": [{"type": "Category", "elements": [{"type": "Label"}]}]}`)
	cat := root.Elements[0]
	label := cat.Elements[0]

	s := NewSelection()
	s.Select(label.ID)
	s.SetTab(root.ID, 2)
	if s.Selected() != label.ID {
		t.Errorf("Selected = %q", s.Selected())
	}
	if i, ok := s.Tab(root.ID); !ok || i != 2 {
		t.Errorf("Tab = %d, %t", i, ok)
	}

	s.Sync(root)
	if s.Selected() != label.ID {
		t.Error("Sync dropped a live selection")
	}
	uischema.Detach(cat)
	s.Sync(root)
	if s.Selected() != "" {
		t.Error("Sync kept a dead selection")
	}
	if _, ok := s.Tab(root.ID); !ok {
		t.Error("Sync dropped a live tab")
	}

	s.Select(root.ID)
	s.ClearTabs()
	if _, ok := s.Tab(root.ID); ok || s.Selected() != root.ID {
		t.Error("ClearTabs")
	}
	s.SetTab(root.ID, 1)
	s.Clear()
	if _, ok := s.Tab(root.ID); ok || s.Selected() != "" {
		t.Error("Clear")
	}
}
