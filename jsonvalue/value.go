// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package jsonvalue represents arbitrary JSON documents as Go values
// without losing the order of object keys.
//
// A value is one of:
//
//	nil            JSON null
//	bool           JSON true or false
//	json.Number    JSON number, kept as its literal
//	string         JSON string
//	[]any          JSON array
//	*Object        JSON object, keys in insertion order
//
// Documents are decoded from JSON with [Parse] and from YAML with [ParseYAML].
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// A TypeError reports a value of an unexpected JSON type.
type TypeError struct {
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("jsonvalue: expected %s, got %s", e.Want, TypeName(e.Got))
}

// TypeName returns the JSON type name of v.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Clone returns a deep copy of v.
func Clone(v any) any {
	switch v := v.(type) {
	case *Object:
		return v.Clone()
	case []any:
		if v == nil {
			return nil
		}
		a := make([]any, len(v))
		for i, e := range v {
			a[i] = Clone(e)
		}
		return a
	default:
		return v
	}
}

// Equal reports whether a and b are the same JSON value.
// Object key order is ignored; numbers compare by value.
func Equal(a, b any) bool {
	switch a := a.(type) {
	case *Object:
		b, ok := b.(*Object)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for k, av := range a.All() {
			bv, ok := b.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case json.Number:
		b, ok := b.(json.Number)
		if !ok {
			return false
		}
		if a == b {
			return true
		}
		af, err1 := a.Float64()
		bf, err2 := b.Float64()
		return err1 == nil && err2 == nil && af == bf
	default:
		return reflect.DeepEqual(a, b)
	}
}

// FromGo converts an ordinary Go value (maps, slices, numbers, structs with
// JSON tags) into the jsonvalue representation. Map keys come out sorted.
func FromGo(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, json.Number, *Object:
		return Clone(v), nil
	}
	data, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: %w", err)
	}
	return Parse(data)
}

// Number returns a json.Number for an integer.
func Number(i int) json.Number {
	return json.Number(strconv.Itoa(i))
}

// Int returns v as an int, if it is an integral number.
func Int(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(string(n))
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	}
	return i, true
}
