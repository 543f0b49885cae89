package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression names recognised in snapshot envelopes.
const (
	CompressionNone = ""
	CompressionZstd = "zstd"
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// ValidCompression reports whether name is a supported compression.
func ValidCompression(name string) bool {
	return name == CompressionNone || name == CompressionZstd
}

// Compress applies the named compression to data.
func Compress(name string, data []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}

// Decompress reverses Compress.
func Decompress(name string, data []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}
