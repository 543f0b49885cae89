package types

// Kind tags which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBytes
	KindText
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
	KindCell
)

var kindNames = [...]string{
	KindNull:  "null",
	KindBytes: "bytes",
	KindText:  "text",
	KindInt:   "int",
	KindFloat: "float",
	KindBool:  "bool",
	KindList:  "list",
	KindMap:   "map",
	KindCell:  "cell",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Sealed is the persisted state of an encryption cell.
//
// Payload is ciphertext when Encrypted is set and empty otherwise. The
// struct carries no key material; binding it to a salt is done by the
// crypto package.
type Sealed struct {
	Alias     string
	Encrypted bool
	Private   bool
	Payload   []byte
}

// Clone returns a deep copy of s.
func (s Sealed) Clone() Sealed {
	s.Payload = append([]byte(nil), s.Payload...)
	return s
}

// Pair is a single key/value assignment.
type Pair struct {
	Key   string
	Value Value
}
