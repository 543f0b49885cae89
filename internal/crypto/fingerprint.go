package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a short hex fingerprint of b.
//
// It hashes with BLAKE3 and truncates to 8 bytes (16 hex chars).
func Fingerprint(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
