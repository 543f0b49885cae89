package interfaces

import (
	"iter"

	domaintypes "confshelf/internal/domain/types"
)

// Mapping is the container contract of a key-value store.
//
// Get on a missing key reports false; Delete on a missing key is a no-op.
type Mapping interface {
	Get(key string) (domaintypes.Value, bool)
	Set(key string, value domaintypes.Value)
	Delete(key string)
	Contains(key string) bool
	Len() int
	Keys() []string
	All() iter.Seq2[string, domaintypes.Value]
}
