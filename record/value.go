// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package record

import "time"

// Kind identifies the type of value stored in a Value.
type Kind int

// The kinds of values a Record field can hold.
const (
	KindInvalid Kind = iota
	KindInt          // unsigned integer, rendered decimal
	KindHexInt       // unsigned integer, rendered 0x…
	KindString       // UTF-8 string
	KindBytes        // octet string, rendered as a flow list of hex integers
	KindTimestamp    // civil date-time, microsecond resolution, epoch 1970-01-01 UTC
	KindList         // sequence of values, either flow (one line) or block (one item per line)
	KindRecord       // nested record
)

// Value is a tagged variant over the scalar and composite types a Record
// field can hold. KindHexInt differs from KindInt only in presentation;
// Uint collapses the distinction.
type Value struct {
	kind  Kind
	num   uint64
	str   string
	bytes []byte
	ts    time.Time
	list  []Value
	block bool
	rec   *Record
}

// Int returns a decimal integer value.
func Int(v uint64) Value { return Value{kind: KindInt, num: v} }

// Hex returns an integer value that renders in 0x… form.
func Hex(v uint64) Value { return Value{kind: KindHexInt, num: v} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Bytes returns an octet string value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTimestamp, ts: t} }

// Flow returns a sequence value that renders compactly on a single line.
func Flow(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Block returns a sequence value that renders one item per line.
func Block(vs ...Value) Value { return Value{kind: KindList, list: vs, block: true} }

// Nested returns a nested record value.
func Nested(r *Record) Value { return Value{kind: KindRecord, rec: r} }

// Kind returns the kind of this value.
func (v Value) Kind() Kind { return v.kind }

// IsHex reports whether this value renders as a hex integer.
func (v Value) IsHex() bool { return v.kind == KindHexInt }

// Uint returns the numeric value of an integer, regardless of its decimal or
// hex presentation. It returns 0 for non-integer values.
func (v Value) Uint() uint64 {
	if v.kind == KindInt || v.kind == KindHexInt {
		return v.num
	}
	return 0
}

// Str returns the string value, or "" for non-string values.
func (v Value) Str() string { return v.str }

// Time returns the timestamp value, or the zero time for other kinds.
func (v Value) Time() time.Time { return v.ts }

// List returns the elements of a sequence value, or nil.
func (v Value) List() []Value { return v.list }

// IsBlock reports whether a sequence value renders one item per line.
func (v Value) IsBlock() bool { return v.kind == KindList && v.block }

// Record returns the nested record, or nil for other kinds.
func (v Value) Record() *Record { return v.rec }

// ByteString flattens this value into its octets: octet strings are returned
// as-is, sequences element-wise with integer elements becoming single octets
// and string elements their UTF-8 encoding. Hand-edited documents may mix
// both in a payload sequence.
func (v Value) ByteString() []byte {
	switch v.kind {
	case KindBytes:
		return v.bytes
	case KindString:
		return []byte(v.str)
	case KindList:
		b := make([]byte, 0, len(v.list))
		for _, el := range v.list {
			switch el.kind {
			case KindInt, KindHexInt:
				b = append(b, byte(el.num))
			case KindString:
				b = append(b, el.str...)
			}
		}
		return b
	}
	return nil
}
