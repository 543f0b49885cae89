package crypto_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confshelf/internal/crypto"
	"confshelf/internal/domain"
)

func newSalt(t *testing.T) *crypto.Salt {
	t.Helper()
	s, err := crypto.NewSalt()
	require.NoError(t, err)
	return s
}

func TestCell_EncryptDecrypt(t *testing.T) {
	salt := newSalt(t)
	value := domain.MustFromAny(map[string]any{"user": "kdawg", "ports": []any{22, 443}})

	cell, err := crypto.NewCell(salt, "login", false).Encrypt(value)
	require.NoError(t, err)

	encrypted, payload := cell.Attr()
	assert.True(t, encrypted)
	assert.False(t, bytes.Contains(payload, []byte("kdawg")), "payload leaks plaintext")

	got, err := crypto.OpenCell(salt, cell.Sealed()).Decrypt()
	require.NoError(t, err)
	assert.True(t, value.Equal(got), "got %v, want %v", got, value)
}

func TestCell_NoncesDiffer(t *testing.T) {
	salt := newSalt(t)
	a, err := crypto.NewCell(salt, "", false).Encrypt(domain.Text("same"))
	require.NoError(t, err)
	b, err := crypto.NewCell(salt, "", false).Encrypt(domain.Text("same"))
	require.NoError(t, err)

	_, pa := a.Attr()
	_, pb := b.Attr()
	assert.NotEqual(t, pa, pb)
}

func TestCell_WrongSaltFails(t *testing.T) {
	cell, err := crypto.NewCell(newSalt(t), "pw", false).Encrypt(domain.Text("secret"))
	require.NoError(t, err)

	_, err = crypto.OpenCell(newSalt(t), cell.Sealed()).Decrypt()
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestCell_TamperedPayloadFails(t *testing.T) {
	salt := newSalt(t)
	cell, err := crypto.NewCell(salt, "pw", false).Encrypt(domain.Text("secret"))
	require.NoError(t, err)

	sealed := cell.Sealed()
	sealed.Payload[len(sealed.Payload)-1] ^= 0xff
	_, err = crypto.OpenCell(salt, sealed).Decrypt()
	require.ErrorIs(t, err, domain.ErrDecryption)

	sealed.Payload = sealed.Payload[:4]
	_, err = crypto.OpenCell(salt, sealed).Decrypt()
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestCell_PrivatePeek(t *testing.T) {
	salt := newSalt(t)
	cell, err := crypto.NewCell(salt, "user_pass", true).Encrypt(domain.Text("test"))
	require.NoError(t, err)

	_, err = cell.Peek()
	require.ErrorIs(t, err, crypto.ErrPrivate)
	assert.NotContains(t, cell.String(), "test\"")

	got, err := cell.Decrypt()
	require.NoError(t, err)
	assert.True(t, got.Equal(domain.Text("test")))

	public, err := crypto.NewCell(salt, "user_name", false).Encrypt(domain.Text("kdawg"))
	require.NoError(t, err)
	got, err = public.Peek()
	require.NoError(t, err)
	assert.True(t, got.Equal(domain.Text("kdawg")))
}

func TestCell_EmptyDecryptsToNull(t *testing.T) {
	cell := crypto.NewCell(newSalt(t), "empty", false)
	got, err := cell.Decrypt()
	require.NoError(t, err)
	assert.True(t, got.IsNull())
	assert.True(t, cell.Value().Truthy(), "cells are truthy even when empty")
}
