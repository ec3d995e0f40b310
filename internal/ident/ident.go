// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ident generates the identifiers given to tree nodes.
package ident

import "github.com/google/uuid"

// New returns a fresh random (version 4) UUID string.
// Identifiers are opaque to callers; they are never reused.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s looks like an identifier produced by New.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
