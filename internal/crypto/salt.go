package crypto

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"confshelf/internal/codec"
	"confshelf/internal/domain"
	"confshelf/internal/fileio"
)

// SecretBytes is the size of the salt secret.
const SecretBytes = 32

const saltFormatVersion = 1

// Key derivation contexts. Changing one makes existing data unreadable.
const (
	cellKeyContext = "confshelf 2026-01 cell encryption key"
)

// Salt is the long-lived secret all encryption keys derive from.
//
// A Salt is safe for concurrent use and is meant to be shared between
// stores; it is never mutated after construction.
type Salt struct {
	secret  [SecretBytes]byte
	created time.Time
}

// saltFile is the on-disk form. Exactly one of Secret and Sealed is set.
type saltFile struct {
	V       int    `cbor:"v"`
	Created int64  `cbor:"created"`
	Secret  []byte `cbor:"secret,omitempty"`
	Sealed  []byte `cbor:"sealed,omitempty"`
}

// NewSalt generates fresh salt material.
func NewSalt() (*Salt, error) {
	s := &Salt{created: time.Now().UTC().Truncate(time.Second)}
	if _, err := rand.Read(s.secret[:]); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return s, nil
}

// Created returns the creation time recorded with the salt.
func (s *Salt) Created() time.Time { return s.created }

// Fingerprint identifies the salt without revealing it.
func (s *Salt) Fingerprint() string {
	return Fingerprint(s.secret[:])
}

// Equal reports whether both salts hold the same secret.
func (s *Salt) Equal(o *Salt) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.secret == o.secret
}

// deriveKey returns a 32-byte subkey for purpose. Callers wipe it.
func (s *Salt) deriveKey(purpose string) []byte {
	out := make([]byte, 32)
	blake3.DeriveKey(purpose, s.secret[:], out)
	return out
}

// String never prints the secret.
func (s *Salt) String() string {
	return "Salt(" + s.Fingerprint() + ")"
}

// EncodeSalt serializes s. A non-empty passphrase seals the secret with
// scrypt + ChaCha20-Poly1305.
func EncodeSalt(s *Salt, passphrase string) ([]byte, error) {
	f := saltFile{V: saltFormatVersion, Created: s.created.Unix()}
	if passphrase == "" {
		f.Secret = s.secret[:]
	} else {
		N, r, p := scryptParamsDefault()
		sealed, err := sealWithPassphrase(passphrase, s.secret[:], N, r, p)
		if err != nil {
			return nil, fmt.Errorf("sealing salt: %w", err)
		}
		f.Sealed = sealed
	}
	return codec.Marshal(f)
}

// DecodeSalt parses data produced by EncodeSalt.
func DecodeSalt(data []byte, passphrase string) (*Salt, error) {
	var f saltFile
	if err := codec.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: salt file: %w", domain.ErrStateCorruption, err)
	}
	if f.V == 0 || f.V > saltFormatVersion {
		return nil, fmt.Errorf("%w: unsupported salt version %d", domain.ErrStateCorruption, f.V)
	}

	secret := f.Secret
	if len(f.Sealed) > 0 {
		if passphrase == "" {
			return nil, domain.InvalidArg("passphrase", "salt file is passphrase protected")
		}
		pt, err := openWithPassphrase(passphrase, f.Sealed)
		if err != nil {
			return nil, err
		}
		defer Wipe(pt)
		secret = pt
	}
	if len(secret) != SecretBytes {
		return nil, fmt.Errorf("%w: salt secret is %d bytes, want %d", domain.ErrStateCorruption, len(secret), SecretBytes)
	}

	s := &Salt{created: time.Unix(f.Created, 0).UTC()}
	copy(s.secret[:], secret)
	return s, nil
}

// LoadOrCreateSalt reads the salt file at path, or creates and persists
// new salt material when the file does not exist. The returned bool
// reports creation. A file that exists but does not decode is an error;
// it is never replaced, since that would orphan everything sealed with
// the old secret.
func LoadOrCreateSalt(ctx context.Context, path, passphrase string) (*Salt, bool, error) {
	data, err := fileio.ReadBytes(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if len(data) > 0 {
		s, err := DecodeSalt(data, passphrase)
		if err != nil {
			return nil, false, fmt.Errorf("loading salt %s: %w", path, err)
		}
		return s, false, nil
	}

	s, err := NewSalt()
	if err != nil {
		return nil, false, err
	}
	if err := WriteSalt(ctx, path, s, passphrase); err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// WriteSalt persists s at path with owner-only permissions. The file is
// written next to path and renamed into place, so a crash never leaves a
// half-written salt behind.
func WriteSalt(ctx context.Context, path string, s *Salt, passphrase string) error {
	data, err := EncodeSalt(s, passphrase)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := fileio.WriteBytes(ctx, tmp, data, 0o600); err != nil {
		_ = fileio.Delete(tmp)
		return err
	}
	if err := fileio.Replace(ctx, tmp, path); err != nil {
		_ = fileio.Delete(tmp)
		return err
	}
	return nil
}
