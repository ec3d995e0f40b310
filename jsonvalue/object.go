// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonvalue

import (
	"bytes"
	"iter"
	"slices"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// An Object is a JSON object whose keys keep their insertion order.
//
// The order is part of the value: JSON Schema documents declare properties
// in a meaningful order, and rendering an Object reproduces it.
// Setting an existing key replaces its value in place.
//
// A nil *Object behaves like an empty object for all read methods.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// ObjectOf builds an Object from alternating keys and values.
// Values are stored as given; use [FromGo] for arbitrary Go values.
// It panics if kv has odd length or a key is not a string.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("jsonvalue.ObjectOf: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("jsonvalue.ObjectOf: key is not a string")
		}
		o.Set(k, kv[i+1])
	}
	return o
}

// Len returns the number of keys in o.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys of o in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.vals[key]
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Delete removes key, if present.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// All iterates over the entries of o in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}

// String returns the value under key if it is a string.
func (o *Object) String(key string) (string, bool) {
	v, _ := o.Get(key)
	s, ok := v.(string)
	return s, ok
}

// Object returns the value under key if it is an object.
func (o *Object) Object(key string) (*Object, bool) {
	v, _ := o.Get(key)
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// Array returns the value under key if it is an array.
func (o *Object) Array(key string) ([]any, bool) {
	v, _ := o.Get(key)
	arr, ok := v.([]any)
	return arr, ok
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	o2 := &Object{
		keys: slices.Clone(o.keys),
		vals: make(map[string]any, len(o.vals)),
	}
	for k, v := range o.vals {
		o2.vals[k] = Clone(v)
	}
	return o2
}

// Merge sets every entry of src into o, in src order.
// It is a shallow merge: nested objects are replaced, not merged.
func (o *Object) Merge(src *Object) {
	for k, v := range src.All() {
		o.Set(k, Clone(v))
	}
}

func (o Object) MarshalJSON() ([]byte, error) {
	// NOTE: a value receiver makes Object itself implement json.Marshaler,
	// so the key order is kept even when an Object is stored by value.
	var buf bytes.Buffer
	if err := appendJSON(&buf, &o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	*o = *obj
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting keys in order.
func (o Object) MarshalYAML() (any, error) {
	return toYAMLNode(&o)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &TypeError{Want: "object", Got: v}
	}
	*o = *obj
	return nil
}

// appendJSON writes v to buf. Object keys keep their order;
// scalars are encoded with go-json.
func appendJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case *Object:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := gojson.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := appendJSON(buf, v.vals[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		if v == nil {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		bs, err := gojson.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(bs)
		return nil
	}
}
