// Package jsonvalue provides a tagged-union representation of JSON documents.
//
// Records in the toolmap dataset are loosely structured: the same field may
// hold a string in one record and a list of strings in the next. Value keeps
// that shape explicit. Every Value has exactly one Kind, objects remember the
// order their keys were first written, and Key returns a canonical form that
// is independent of key order so values can be compared and used as map keys.
//
// Example:
//
//	v, err := jsonvalue.Parse([]byte(`{"id":"p1","tags":["x","y"]}`))
//	if err != nil {
//	    return err
//	}
//	obj, _ := v.AsObject()
//	tags, _ := obj.Get("tags")
//	fmt.Println(tags.Len()) // 2
package jsonvalue

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable-by-convention JSON value.
// The zero Value is JSON null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a JSON number from its literal text.
// The literal is kept verbatim so large integers survive a round trip.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// Int returns a JSON number for an integer.
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// Float returns a JSON number for a float.
func Float(f float64) Value {
	return Number(json.Number(strconv.FormatFloat(f, 'g', -1, 64)))
}

// Array returns a JSON array holding items.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromObject wraps an Object as a Value.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number literal held by v.
func (v Value) AsNumber() (json.Number, bool) { return v.num, v.kind == KindNumber }

// AsFloat returns the numeric value of a number.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsArray returns the items of an array. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object held by v.
func (v Value) AsObject() (*Object, bool) { return v.obj, v.kind == KindObject }

// Len returns the number of items in an array or fields in an object, else 0.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// IsEmpty reports whether v carries no usable data: null or the empty string.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	default:
		return false
	}
}

// IsBlank reports whether v is null or a string with only whitespace.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Text returns a plain string form of a scalar: the string itself, the number
// literal or "true"/"false". Arrays and objects return their canonical key.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	default:
		return v.Key()
	}
}

// Equal reports deep structural equality, ignoring object key order.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Array(items...)
	case KindObject:
		return FromObject(v.obj.Clone())
	default:
		return v
	}
}
