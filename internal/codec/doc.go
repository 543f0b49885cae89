// Package codec is the serialization primitive of the store.
//
// Everything confshelf writes to disk is CBOR produced with Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same logical data
// always produces identical bytes, which keeps repeated syncs of an
// unchanged plain store byte-for-byte stable.
//
// Values are encoded natively (byte strings, text strings, integers,
// floats, booleans, arrays and maps). Encryption cells are wrapped in
// CBOR tag CellTag so that they survive a round trip as cells rather
// than plain maps.
//
//	data, err := codec.EncodeValue(v)
//	v, err = codec.DecodeValue(data)
//
// Optional zstd compression of whole payloads lives in compress.go.
package codec
