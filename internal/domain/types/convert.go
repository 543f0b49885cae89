package types

import (
	"fmt"
	"math"
)

// FromAny converts plain Go data into a Value. Supported inputs are
// nil, Value, Sealed, string, []byte, bool, all integer and float
// kinds, []any, []string, []Value, map[string]any and map[string]Value.
// Nested containers are converted recursively.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case Sealed:
		return Cell(t), nil
	case string:
		return Text(t), nil
	case []byte:
		return Bytes(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []Value:
		return List(t...), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = Text(s)
		}
		return List(items...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]Value:
		return Map(t), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = v
		}
		return Map(m), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

// MustFromAny is FromAny that panics on unsupported input. It is meant
// for literals in tests and examples.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

func fromUint(n uint64) (Value, error) {
	if n > math.MaxInt64 {
		return Value{}, fmt.Errorf("unsigned value %d overflows int64", n)
	}
	return Int(int64(n)), nil
}
