package store

import (
	"errors"
	"fmt"

	"confshelf/internal/codec"
)

// The current supported version of the snapshot envelope.
const envelopeVersion = 1

// envelope is the on-disk unit. Payload is either a single sealed blob
// of the whole map (Encrypted) or the CBOR encoding of a
// map[string][]byte holding each serialized value, optionally
// compressed.
type envelope struct {
	V           int    `cbor:"v"`
	Encrypted   bool   `cbor:"encrypted"`
	Compression string `cbor:"compression,omitempty"`
	Payload     []byte `cbor:"payload"`
}

func encodeEnvelope(env envelope) ([]byte, error) {
	return codec.Marshal(env)
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("envelope: %w", err)
	}
	if env.V == 0 || env.V > envelopeVersion {
		return envelope{}, fmt.Errorf("unsupported envelope version %d", env.V)
	}
	if len(env.Payload) == 0 {
		return envelope{}, errors.New("envelope has no payload")
	}
	if !codec.ValidCompression(env.Compression) {
		return envelope{}, fmt.Errorf("unknown compression %q", env.Compression)
	}
	if env.Encrypted && env.Compression != codec.CompressionNone {
		return envelope{}, errors.New("encrypted envelope cannot be compressed")
	}
	return env, nil
}
