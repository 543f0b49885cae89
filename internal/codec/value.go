package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"confshelf/internal/domain"
)

// CellTag is the CBOR tag number wrapping encryption cells.
const CellTag = 1634018

type cellWire struct {
	Alias     string `cbor:"alias,omitempty"`
	Encrypted bool   `cbor:"encrypted"`
	Private   bool   `cbor:"private,omitempty"`
	Payload   []byte `cbor:"payload,omitempty"`
}

// EncodeValue serializes v. Values nested deeper than MaxNestedLevels
// or with more elements than the decoder accepts are rejected with
// domain.ErrInvalidArgument.
func EncodeValue(v domain.Value) ([]byte, error) {
	if err := checkLimits(v, 0); err != nil {
		return nil, err
	}
	return Marshal(toWire(v))
}

// checkLimits mirrors the decoder's accounting: every array, map and tag
// opens one nesting level.
func checkLimits(v domain.Value, depth int) error {
	switch v.Kind() {
	case domain.KindList:
		depth++
		items, _ := v.AsList()
		if len(items) > MaxArrayElements {
			return domain.InvalidArg("value", "list of %d elements exceeds %d", len(items), MaxArrayElements)
		}
		if depth > MaxNestedLevels {
			return domain.InvalidArg("value", "nesting exceeds %d levels", MaxNestedLevels)
		}
		for _, item := range items {
			if err := checkLimits(item, depth); err != nil {
				return err
			}
		}
	case domain.KindMap:
		depth++
		m, _ := v.AsMap()
		if len(m) > MaxMapPairs {
			return domain.InvalidArg("value", "map of %d pairs exceeds %d", len(m), MaxMapPairs)
		}
		if depth > MaxNestedLevels {
			return domain.InvalidArg("value", "nesting exceeds %d levels", MaxNestedLevels)
		}
		for _, item := range m {
			if err := checkLimits(item, depth); err != nil {
				return err
			}
		}
	case domain.KindCell:
		// Tag plus the content map.
		if depth+2 > MaxNestedLevels {
			return domain.InvalidArg("value", "nesting exceeds %d levels", MaxNestedLevels)
		}
	}
	return nil
}

// DecodeValue parses data produced by EncodeValue.
func DecodeValue(data []byte) (domain.Value, error) {
	var raw any
	if err := Unmarshal(data, &raw); err != nil {
		return domain.Value{}, err
	}
	return fromWire(raw)
}

func toWire(v domain.Value) any {
	switch v.Kind() {
	case domain.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toWire(item)
		}
		return out
	case domain.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = toWire(item)
		}
		return out
	case domain.KindCell:
		s, _ := v.AsCell()
		return cbor.Tag{Number: CellTag, Content: cellWire(s)}
	case domain.KindBytes:
		b, _ := v.AsBytes()
		return b
	}
	// Scalars and null map directly.
	return v.Any()
}

func fromWire(raw any) (domain.Value, error) {
	switch t := raw.(type) {
	case nil:
		return domain.Null(), nil
	case []byte:
		return domain.Bytes(t), nil
	case string:
		return domain.Text(t), nil
	case int64:
		return domain.Int(t), nil
	case float64:
		return domain.Float(t), nil
	case bool:
		return domain.Bool(t), nil
	case []any:
		items := make([]domain.Value, len(t))
		for i, item := range t {
			v, err := fromWire(item)
			if err != nil {
				return domain.Value{}, err
			}
			items[i] = v
		}
		return domain.List(items...), nil
	case map[string]any:
		m := make(map[string]domain.Value, len(t))
		for k, item := range t {
			v, err := fromWire(item)
			if err != nil {
				return domain.Value{}, err
			}
			m[k] = v
		}
		return domain.Map(m), nil
	case cbor.Tag:
		if t.Number != CellTag {
			return domain.Value{}, fmt.Errorf("unexpected CBOR tag %d", t.Number)
		}
		return cellFromWire(t.Content)
	}
	return domain.Value{}, fmt.Errorf("unsupported CBOR item %T", raw)
}

func cellFromWire(content any) (domain.Value, error) {
	m, ok := content.(map[string]any)
	if !ok {
		return domain.Value{}, fmt.Errorf("cell content is %T, want map", content)
	}
	var s domain.Sealed
	var okField bool
	if raw, present := m["alias"]; present {
		if s.Alias, okField = raw.(string); !okField {
			return domain.Value{}, fmt.Errorf("cell alias is %T", raw)
		}
	}
	if raw, present := m["encrypted"]; present {
		if s.Encrypted, okField = raw.(bool); !okField {
			return domain.Value{}, fmt.Errorf("cell encrypted flag is %T", raw)
		}
	}
	if raw, present := m["private"]; present {
		if s.Private, okField = raw.(bool); !okField {
			return domain.Value{}, fmt.Errorf("cell private flag is %T", raw)
		}
	}
	if raw, present := m["payload"]; present {
		if s.Payload, okField = raw.([]byte); !okField {
			return domain.Value{}, fmt.Errorf("cell payload is %T", raw)
		}
	}
	if s.Encrypted && len(s.Payload) == 0 {
		return domain.Value{}, fmt.Errorf("encrypted cell %q has no payload", s.Alias)
	}
	return domain.Cell(s), nil
}
