package domain

import (
	interfaces "confshelf/internal/domain/interfaces"
	types "confshelf/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Kind   = types.Kind
	Value  = types.Value
	Sealed = types.Sealed
	Pair   = types.Pair
)

// Interface aliases.
type (
	Mapping = interfaces.Mapping
)

const (
	KindNull  = types.KindNull
	KindBytes = types.KindBytes
	KindText  = types.KindText
	KindInt   = types.KindInt
	KindFloat = types.KindFloat
	KindBool  = types.KindBool
	KindList  = types.KindList
	KindMap   = types.KindMap
	KindCell  = types.KindCell
)

// Constructors re-exported for callers that only import domain.
var (
	Null        = types.Null
	Bytes       = types.Bytes
	Text        = types.Text
	Int         = types.Int
	Float       = types.Float
	Bool        = types.Bool
	List        = types.List
	Map         = types.Map
	Cell        = types.Cell
	FromAny     = types.FromAny
	MustFromAny = types.MustFromAny
)
