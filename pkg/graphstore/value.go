package graphstore

import (
	"fmt"
	"strconv"
)

// Kind discriminates the forms an attribute [Value] can take.
type Kind int

const (
	// KindNone is the absent/none sentinel (e.g. the parent of a BFS source).
	KindNone Kind = iota
	// KindInt is a signed integer value.
	KindInt
	// KindFloat is a real-number value.
	KindFloat
	// KindRef is a node reference (e.g. a recorded BFS parent).
	KindRef
	// KindString is free text, used for pass-through of unrecognized
	// attribute keys so they survive a load/save round-trip.
	KindString
)

// Value is the tagged union stored in node attribute records. The closed
// set of recognized attribute keys maps onto these forms: component and
// distance attributes are KindInt, parent attributes are KindRef or
// KindNone, anything unrecognized is carried as KindString.
type Value struct {
	kind Kind
	i    int64
	f    float64
	ref  NodeID
	s    string
}

// None returns the none-sentinel value.
func None() Value { return Value{} }

// Int wraps an integer attribute value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float wraps a real-number attribute value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Ref wraps a node-reference attribute value.
func Ref(id NodeID) Value { return Value{kind: KindRef, ref: id} }

// Str wraps a textual attribute value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the discriminator for the value.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload and true when the value is KindInt.
func (v Value) Int() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	return 0, false
}

// Float returns the real payload and true when the value is KindFloat.
func (v Value) Float() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	return 0, false
}

// Ref returns the node-reference payload and true when the value is KindRef.
func (v Value) Ref() (NodeID, bool) {
	if v.kind == KindRef {
		return v.ref, true
	}
	return NodeID{}, false
}

// Text returns the string payload and true when the value is KindString.
func (v Value) Text() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

// String renders the value in its canonical textual form.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindRef:
		return v.ref.String()
	case KindString:
		return v.s
	default:
		return "none"
	}
}

// GoString implements fmt.GoStringer for debugging output.
func (v Value) GoString() string {
	return fmt.Sprintf("graphstore.Value{%v}", v.String())
}
