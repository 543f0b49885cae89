package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"confshelf/internal/codec"
	"confshelf/internal/domain"
)

// ErrPrivate is returned by Peek on a cell created as private.
var ErrPrivate = errors.New("cell is private")

var cellAD = []byte("confshelf cell v1")

// Cell is an encryption cell: a value sealed under a salt subkey.
//
// A Cell is a handle over domain.Sealed state bound to a Salt. Encrypt
// replaces the sealed state in place; callers that keep the cell in a
// store must store Value() again for the change to be persisted.
type Cell struct {
	salt   *Salt
	sealed domain.Sealed
}

// NewCell returns an empty cell bound to salt.
func NewCell(salt *Salt, alias string, private bool) *Cell {
	return &Cell{salt: salt, sealed: domain.Sealed{Alias: alias, Private: private}}
}

// OpenCell binds existing sealed state to salt.
func OpenCell(salt *Salt, sealed domain.Sealed) *Cell {
	return &Cell{salt: salt, sealed: sealed.Clone()}
}

// Encrypt serializes v and seals it, replacing any previous content.
func (c *Cell) Encrypt(v domain.Value) (*Cell, error) {
	if c.salt == nil {
		return nil, domain.InvalidArg("salt", "cell has no salt")
	}
	plaintext, err := codec.EncodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("encoding cell %q: %w", c.sealed.Alias, err)
	}
	defer Wipe(plaintext)

	key := c.salt.deriveKey(cellKeyContext)
	defer Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	c.sealed.Payload = aead.Seal(nonce, nonce, plaintext, cellAD)
	c.sealed.Encrypted = true
	return c, nil
}

// Decrypt opens the cell. An empty cell decrypts to the null value.
func (c *Cell) Decrypt() (domain.Value, error) {
	if !c.sealed.Encrypted {
		return domain.Null(), nil
	}
	if c.salt == nil {
		return domain.Value{}, domain.InvalidArg("salt", "cell has no salt")
	}

	key := c.salt.deriveKey(cellKeyContext)
	defer Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return domain.Value{}, err
	}
	payload := c.sealed.Payload
	if len(payload) < aead.NonceSize()+aead.Overhead() {
		return domain.Value{}, fmt.Errorf("%w: cell %q payload is truncated", domain.ErrDecryption, c.sealed.Alias)
	}
	nonce, ct := payload[:aead.NonceSize()], payload[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, cellAD)
	if err != nil {
		return domain.Value{}, fmt.Errorf("%w: cell %q", domain.ErrDecryption, c.sealed.Alias)
	}
	defer Wipe(plaintext)

	v, err := codec.DecodeValue(plaintext)
	if err != nil {
		return domain.Value{}, fmt.Errorf("%w: cell %q content: %w", domain.ErrStateCorruption, c.sealed.Alias, err)
	}
	return v, nil
}

// Peek decrypts the cell unless it was created private.
func (c *Cell) Peek() (domain.Value, error) {
	if c.sealed.Private {
		return domain.Value{}, fmt.Errorf("%w: %q", ErrPrivate, c.sealed.Alias)
	}
	return c.Decrypt()
}

// Attr returns the encrypted flag and the opaque payload.
func (c *Cell) Attr() (bool, []byte) {
	return c.sealed.Encrypted, append([]byte(nil), c.sealed.Payload...)
}

// Alias returns the name the cell was created under.
func (c *Cell) Alias() string { return c.sealed.Alias }

// Private reports whether Peek refuses to open the cell.
func (c *Cell) Private() bool { return c.sealed.Private }

// Encrypted reports whether the cell holds a sealed value.
func (c *Cell) Encrypted() bool { return c.sealed.Encrypted }

// Sealed returns a copy of the cell state.
func (c *Cell) Sealed() domain.Sealed { return c.sealed.Clone() }

// Value wraps the cell state for storage.
func (c *Cell) Value() domain.Value { return domain.Cell(c.sealed) }

// String describes the cell without its payload.
func (c *Cell) String() string {
	if c.sealed.Private {
		return fmt.Sprintf("Cell(%q, private)", c.sealed.Alias)
	}
	return fmt.Sprintf("Cell(%q, encrypted=%t, %d bytes)", c.sealed.Alias, c.sealed.Encrypted, len(c.sealed.Payload))
}
