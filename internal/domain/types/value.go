package types

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is the tagged variant stored under every key.
//
// The zero Value is null. Values are treated as immutable: constructors
// copy their input and accessors return copies of mutable parts.
type Value struct {
	kind  Kind
	raw   []byte
	text  string
	num   int64
	float float64
	flag  bool
	list  []Value
	dict  map[string]Value
	cell  Sealed
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bytes returns a bytes value holding a copy of b.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte{}, b...)}
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List returns a sequence value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value{}, items...)}
}

// Map returns a mapping value holding a shallow copy of m.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, dict: maps.Clone(m)}
}

// Cell returns a value holding sealed cell state.
func Cell(s Sealed) Value { return Value{kind: KindCell, cell: s.Clone()} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBytes returns a copy of the bytes held by v. Like every As
// accessor, its bool reports whether v has that kind.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte{}, v.raw...), true
}

// AsText returns the text held by v.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

// AsFloat returns the float held by v.
func (v Value) AsFloat() (float64, bool) { return v.float, v.kind == KindFloat }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsList returns a shallow copy of the items held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsMap returns a shallow copy of the map held by v.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return maps.Clone(v.dict), true
}

// AsCell returns a copy of the sealed cell state held by v.
func (v Value) AsCell() (Sealed, bool) {
	if v.kind != KindCell {
		return Sealed{}, false
	}
	return v.cell.Clone(), true
}

// Len returns the element count of bytes, text, list and map values and
// zero for everything else.
func (v Value) Len() int {
	switch v.kind {
	case KindBytes:
		return len(v.raw)
	case KindText:
		return len(v.text)
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.dict)
	}
	return 0
}

// Truthy reports whether v counts as a non-empty value. Empty bytes,
// text and collections, zero numbers, false and null are falsy. Cells
// are always truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBytes, KindText, KindList, KindMap:
		return v.Len() > 0
	case KindInt:
		return v.num != 0
	case KindFloat:
		return v.float != 0
	case KindBool:
		return v.flag
	case KindCell:
		return true
	}
	return false
}

// Equal reports deep equality. NaN compares equal to NaN so that a
// decoded value equals its source.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindText:
		return v.text == o.text
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.float == o.float || (math.IsNaN(v.float) && math.IsNaN(o.float))
	case KindBool:
		return v.flag == o.flag
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		return maps.EqualFunc(v.dict, o.dict, Value.Equal)
	case KindCell:
		return v.cell.Alias == o.cell.Alias &&
			v.cell.Encrypted == o.cell.Encrypted &&
			v.cell.Private == o.cell.Private &&
			bytes.Equal(v.cell.Payload, o.cell.Payload)
	}
	return false
}

// Any converts v to plain Go values: []byte, string, int64, float64,
// bool, []any, map[string]any or nil. Cells become a descriptive map
// that never includes the payload.
func (v Value) Any() any {
	switch v.kind {
	case KindBytes:
		return append([]byte{}, v.raw...)
	case KindText:
		return v.text
	case KindInt:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.dict))
		for k, item := range v.dict {
			out[k] = item.Any()
		}
		return out
	case KindCell:
		return map[string]any{
			"cell":      v.cell.Alias,
			"encrypted": v.cell.Encrypted,
			"private":   v.cell.Private,
		}
	}
	return nil
}

// String renders v for humans. Map keys are printed in sorted order.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBytes:
		fmt.Fprintf(sb, "b%q", v.raw)
	case KindText:
		sb.WriteString(strconv.Quote(v.text))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.float, 'g', -1, 64))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.flag))
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.format(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(v.dict)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			v.dict[k].format(sb)
		}
		sb.WriteByte('}')
	case KindCell:
		fmt.Fprintf(sb, "Cell(%q, encrypted=%t, private=%t)", v.cell.Alias, v.cell.Encrypted, v.cell.Private)
	}
}
