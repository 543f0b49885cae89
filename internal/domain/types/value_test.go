package types_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confshelf/internal/domain/types"
)

func TestTruthy(t *testing.T) {
	falsy := []types.Value{
		types.Null(),
		types.Bytes(nil),
		types.Text(""),
		types.Int(0),
		types.Float(0),
		types.Bool(false),
		types.List(),
		types.Map(nil),
	}
	for _, v := range falsy {
		assert.False(t, v.Truthy(), "%s %v should be falsy", v.Kind(), v)
	}

	truthy := []types.Value{
		types.Bytes([]byte{0}),
		types.Text("x"),
		types.Int(-1),
		types.Float(0.1),
		types.Bool(true),
		types.List(types.Null()),
		types.Map(map[string]types.Value{"k": types.Null()}),
		types.Cell(types.Sealed{}),
	}
	for _, v := range truthy {
		assert.True(t, v.Truthy(), "%s %v should be truthy", v.Kind(), v)
	}
}

func TestFromAny(t *testing.T) {
	v, err := types.FromAny(map[string]any{
		"a": 1,
		"b": []any{uint8(2), 3.5, "s"},
		"c": []string{"x", "y"},
	})
	require.NoError(t, err)

	want := types.Map(map[string]types.Value{
		"a": types.Int(1),
		"b": types.List(types.Int(2), types.Float(3.5), types.Text("s")),
		"c": types.List(types.Text("x"), types.Text("y")),
	})
	assert.True(t, want.Equal(v), "got %v", v)

	_, err = types.FromAny(uint64(math.MaxUint64))
	require.Error(t, err)

	_, err = types.FromAny(struct{}{})
	require.Error(t, err)

	_, err = types.FromAny(map[string]any{"bad": []any{make(chan int)}})
	require.Error(t, err)
}

func TestValueIsImmutable(t *testing.T) {
	raw := []byte("abc")
	v := types.Bytes(raw)
	raw[0] = 'z'
	got, _ := v.AsBytes()
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := v.AsBytes()
	assert.Equal(t, "abc", string(again))

	m := map[string]types.Value{"k": types.Int(1)}
	mv := types.Map(m)
	m["k"] = types.Int(2)
	inner, _ := mv.AsMap()
	assert.True(t, inner["k"].Equal(types.Int(1)))
}

func TestString(t *testing.T) {
	v := types.MustFromAny(map[string]any{"b": []any{1, "x"}, "a": true})
	assert.Equal(t, `{"a": true, "b": [1, "x"]}`, v.String())
	assert.Equal(t, "null", types.Null().String())
	assert.Equal(t, `Cell("pw", encrypted=false, private=true)`, types.Cell(types.Sealed{Alias: "pw", Private: true}).String())
}

func TestAny(t *testing.T) {
	v := types.MustFromAny(map[string]any{"n": 1, "l": []any{"x"}})
	assert.Equal(t, map[string]any{"n": int64(1), "l": []any{"x"}}, v.Any())

	cell := types.Cell(types.Sealed{Alias: "pw", Encrypted: true, Payload: []byte("ct")})
	assert.Equal(t, map[string]any{"cell": "pw", "encrypted": true, "private": false}, cell.Any())
}
