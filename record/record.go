// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Package record models pcapng blocks as ordered key/value records with typed
// scalar values, and renders a stream of such records to and from a
// blank-line separated YAML document stream. Field order is part of the
// contract: a record always serializes its fields in insertion order, so that
// decoding a capture and re-encoding it reproduces a stable document.
package record

import (
	"time"

	"golang.org/x/exp/slices"
)

// Field is a single key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered mapping from field names to typed values. The zero
// Record is empty and ready for use. With only a handful of fields per block
// a plain pair slice with linear lookup beats any map here.
type Record struct {
	fields []Field
}

// New returns a new empty Record.
func New() *Record {
	return &Record{}
}

func (r *Record) index(key string) int {
	return slices.IndexFunc(r.fields, func(f Field) bool { return f.Key == key })
}

// Set stores the given value under the given key. A new key is appended at
// the end; setting an existing key replaces its value but keeps its position.
func (r *Record) Set(key string, v Value) {
	if i := r.index(key); i >= 0 {
		r.fields[i].Value = v
		return
	}
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// Get returns the value stored under the given key, if any.
func (r *Record) Get(key string) (Value, bool) {
	if i := r.index(key); i >= 0 {
		return r.fields[i].Value, true
	}
	return Value{}, false
}

// Has reports whether the given key is present.
func (r *Record) Has(key string) bool {
	return r.index(key) >= 0
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Fields returns the fields in insertion order. The returned slice is the
// record's own backing storage and must not be modified.
func (r *Record) Fields() []Field {
	return r.fields
}

// Uint returns the numeric value under the given key, or 0 when the key is
// absent or not an integer.
func (r *Record) Uint(key string) uint64 {
	v, _ := r.Get(key)
	return v.Uint()
}

// Time returns the timestamp under the given key, or the zero time.
func (r *Record) Time(key string) time.Time {
	v, _ := r.Get(key)
	return v.Time()
}

// Sub returns the nested record under the given key, or nil.
func (r *Record) Sub(key string) *Record {
	v, _ := r.Get(key)
	return v.Record()
}
