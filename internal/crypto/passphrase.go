package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"confshelf/internal/codec"
	"confshelf/internal/domain"
)

// Version of the sealed-secret blob stored in a salt file.
const keystoreFormatVersion = 1

// keystoreBlob is the sealed form of a salt secret. The scrypt parameters
// travel with it so a salt file stays readable if the defaults change.
type keystoreBlob struct {
	V      int    `cbor:"v"`
	Salt   []byte `cbor:"salt"`
	N      int    `cbor:"scrypt_n"`
	R      int    `cbor:"scrypt_r"`
	P      int    `cbor:"scrypt_p"`
	Cipher []byte `cbor:"cipher"`
}

// scryptParamsDefault returns the cost used when sealing a new salt file.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// sealWithPassphrase seals a salt secret under a key stretched from
// passphrase. The scrypt salt doubles as additional data.
func sealWithPassphrase(passphrase string, raw []byte, N, r, p int) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// Each seal draws a fresh scrypt salt and so a fresh key; the key is
	// used exactly once and a fixed nonce is safe.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return codec.Marshal(keystoreBlob{
		V:      keystoreFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// openWithPassphrase recovers the salt secret. A wrong passphrase and a
// tampered salt file look the same and both yield ErrDecryption.
func openWithPassphrase(passphrase string, b []byte) ([]byte, error) {
	var bl keystoreBlob
	if err := codec.Unmarshal(b, &bl); err != nil {
		return nil, fmt.Errorf("%w: keystore blob: %w", domain.ErrStateCorruption, err)
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("%w: unsupported keystore version %d", domain.ErrStateCorruption, bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: scrypt parameters: %w", domain.ErrStateCorruption, err)
	}
	defer Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted salt file", domain.ErrDecryption)
	}
	return pt, nil
}
