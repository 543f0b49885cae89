package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Decoder limits, set to the largest values fxamacker/cbor accepts.
// EncodeValue refuses anything beyond them so that every published
// snapshot can be read back.
const (
	MaxNestedLevels  = 65535
	MaxArrayElements = 2147483647
	MaxMapPairs      = 2147483647
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Keys are always strings; decoding into any must produce
		// map[string]any rather than map[interface{}]interface{}.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Unsigned integers decode to int64 so they map onto Int values.
		IntDec: cbor.IntDecConvertSigned,
		// Text values are stored as given, valid UTF-8 or not.
		UTF8: cbor.UTF8DecodeInvalid,

		MaxNestedLevels:  MaxNestedLevels,
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxMapPairs,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
