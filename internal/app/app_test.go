package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confshelf/internal/app"
	"confshelf/internal/domain"
	"confshelf/internal/logging"
	"confshelf/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "confshelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := app.LoadConfig(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "config", c.Prefix)
	assert.Equal(t, store.DefaultExt, c.Ext)
	assert.Equal(t, store.DefaultLockTimeout, c.LockTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.Encrypt)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "prefix: fromfile\nencrypt: true\nlock_timeout: 2s\ncompression: zstd\n")
	t.Setenv("CONFSHELF_PREFIX", "fromenv")
	t.Setenv("CONFSHELF_LOG_LEVEL", "debug")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("compression", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn"}))

	c, err := app.LoadConfig(flags, path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", c.Prefix, "env beats file")
	assert.True(t, c.Encrypt)
	assert.Equal(t, 2*time.Second, c.LockTimeout)
	assert.Equal(t, "zstd", c.Compression, "unset flag keeps file value")
	assert.Equal(t, "warn", c.LogLevel, "flag beats env")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := app.LoadConfig(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestStoreOptions_DefaultsToHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "state")
	c := app.Config{Home: home, Prefix: "cfg"}

	opts, err := c.StoreOptions()
	require.NoError(t, err)
	assert.DirExists(t, home)
	assert.Equal(t, home, opts.Dir)
	assert.Equal(t, filepath.Join(home, app.DefaultSaltName), opts.Salt.DefaultPath)

	saltFile, err := c.SaltFile()
	require.NoError(t, err)
	assert.Equal(t, opts.Salt.DefaultPath, saltFile)
}

func TestApp_RunPersists(t *testing.T) {
	a := app.New(app.Config{Home: t.TempDir(), Prefix: "cfg", Encrypt: true}, logging.Discard())
	ctx := context.Background()

	require.NoError(t, a.Run(ctx, func(s *store.Store) error {
		s.Set("region", domain.Text("eu-west-1"))
		return nil
	}))

	require.NoError(t, a.Run(ctx, func(s *store.Store) error {
		v, ok := s.Get("region")
		require.True(t, ok)
		assert.True(t, domain.Text("eu-west-1").Equal(v))
		return nil
	}))
}
