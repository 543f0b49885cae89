// Package crypto holds the key material and value encryption of confshelf.
//
// Contents
//
//   - Salt material: a 32-byte random secret persisted once in a salt
//     file and shared by pointer across stores (NewSalt, LoadOrCreateSalt,
//     WriteSalt)
//   - Optional passphrase protection of the salt file (scrypt +
//     ChaCha20-Poly1305)
//   - Encryption cells: values sealed with XChaCha20-Poly1305 under a
//     subkey of the salt (NewCell, OpenCell)
//   - Short fingerprints for logs (Fingerprint)
//   - Best-effort wiping of key buffers (Wipe)
//
// # Notes
//
// Subkeys are derived from the salt secret with BLAKE3 in key derivation
// mode; the secret itself never encrypts anything. Opening a cell with a
// salt other than the one that sealed it fails with domain.ErrDecryption.
package crypto
