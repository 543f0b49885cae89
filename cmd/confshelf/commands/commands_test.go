package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confshelf/cmd/confshelf/commands"
	"confshelf/internal/crypto"
	"confshelf/internal/domain"
)

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return filepath.Join(t.TempDir(), "home")
}

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := commands.NewRoot()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--home", home, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := run(t, home, args...)
	require.NoError(t, err, "confshelf %s", strings.Join(args, " "))
	return out
}

func TestCLI_SetGetDelete(t *testing.T) {
	home := isolate(t)

	mustRun(t, home, "set", "port", "8080")
	mustRun(t, home, "set", "hosts", "[a, b]")
	mustRun(t, home, "set", "motd", "--text", "hello: world")
	mustRun(t, home, "set", "blob", "--base64", crypto.B64([]byte{0, 1, 2}))

	assert.Equal(t, "8080\n", mustRun(t, home, "get", "port"))
	assert.Equal(t, "- a\n- b\n", mustRun(t, home, "get", "hosts", "-o", "yaml"))
	assert.Equal(t, "\"hello: world\"\n", mustRun(t, home, "get", "motd"))
	assert.Equal(t, "\"AAEC\"\n", mustRun(t, home, "get", "blob"))
	assert.Equal(t, "blob\nhosts\nmotd\nport\n", mustRun(t, home, "keys"))

	mustRun(t, home, "delete", "blob", "absent")
	_, err := run(t, home, "get", "blob")
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "8080\n", mustRun(t, home, "pop", "port"))
	_, err = run(t, home, "pop", "port")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_FalsyValues(t *testing.T) {
	home := isolate(t)

	mustRun(t, home, "set", "off", "false")
	assert.Empty(t, mustRun(t, home, "keys"))

	mustRun(t, home, "set", "off", "false", "--keep-falsy")
	assert.Equal(t, "false\n", mustRun(t, home, "get", "off"))
}

func TestCLI_Dump(t *testing.T) {
	home := isolate(t)
	mustRun(t, home, "set", "db", "{host: localhost, port: 5432}")
	mustRun(t, home, "setcrypt", "token", "--text", "abc123")

	out := mustRun(t, home, "dump")
	assert.Contains(t, out, "host: localhost")
	assert.Contains(t, out, "port: 5432")
	assert.Contains(t, out, "cell: token")
	assert.NotContains(t, out, "abc123")

	out = mustRun(t, home, "dump", "-o", "json")
	assert.Contains(t, out, `"port": 5432`)
}

func TestCLI_Cells(t *testing.T) {
	home := isolate(t)

	mustRun(t, home, "setcrypt", "api", "--text", "tok-1")
	mustRun(t, home, "setcrypt", "root", "--text", "s3cr3t", "--private")

	assert.Equal(t, "\"tok-1\"\n", mustRun(t, home, "reveal", "api"))

	_, err := run(t, home, "reveal", "root")
	require.ErrorIs(t, err, crypto.ErrPrivate)

	mustRun(t, home, "set", "plain", "1")
	_, err = run(t, home, "reveal", "plain")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_EncryptedStore(t *testing.T) {
	home := isolate(t)

	mustRun(t, home, "--encrypt", "set", "password", "--text", "hunter2")
	raw, err := os.ReadFile(filepath.Join(home, "config.db"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	assert.Equal(t, "\"hunter2\"\n", mustRun(t, home, "--encrypt", "get", "password"))
}

func TestCLI_SaltInitAndShow(t *testing.T) {
	home := isolate(t)

	out := mustRun(t, home, "salt", "init")
	assert.Contains(t, out, "created")
	fp := out[strings.LastIndex(out, " ")+1:]

	out = mustRun(t, home, "salt", "init")
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, fp)

	out = mustRun(t, home, "salt", "show")
	assert.Contains(t, out, strings.TrimSpace(fp))
}

func TestCLI_Backup(t *testing.T) {
	home := isolate(t)
	dest := t.TempDir()

	mustRun(t, home, "set", "k", "v")
	mustRun(t, home, "backup", dest, "--with-salt")
	assert.FileExists(t, filepath.Join(dest, "config.db"))
	assert.FileExists(t, filepath.Join(dest, "master.salt"))
	assert.Equal(t, "k\n", mustRun(t, home, "keys"))

	moved := t.TempDir()
	mustRun(t, home, "backup", moved, "--migrate")
	assert.FileExists(t, filepath.Join(moved, "config.db"))
	assert.NoFileExists(t, filepath.Join(home, "config.db"))
	assert.Empty(t, mustRun(t, home, "keys"))
}

func TestCLI_ClearNeedsConfirmation(t *testing.T) {
	home := isolate(t)
	mustRun(t, home, "set", "k", "v")

	_, err := run(t, home, "clear")
	require.Error(t, err)
	assert.Equal(t, "k\n", mustRun(t, home, "keys"))

	mustRun(t, home, "clear", "--yes")
	assert.NoFileExists(t, filepath.Join(home, "config.db"))
}

func TestCLI_InvalidValue(t *testing.T) {
	home := isolate(t)
	_, err := run(t, home, "set", "k", "v", "--text", "--base64")
	require.Error(t, err)
}
