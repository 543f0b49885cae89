package app

import (
	"fmt"
	"os"
	"path/filepath"

	"confshelf/internal/store"
)

// DefaultSaltName is the shared salt file created under Home.
const DefaultSaltName = "master.salt"

// HomeDir returns c.Home, or <user config dir>/confshelf when unset.
func (c Config) HomeDir() (string, error) {
	if c.Home != "" {
		return c.Home, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, ConfigName), nil
}

// EnsureHome creates the state dir when missing and returns it.
func (c Config) EnsureHome() (string, error) {
	home, err := c.HomeDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", home, err)
	}
	return home, nil
}

// StoreOptions resolves c into store options. Home is created when
// missing; an explicit Dir must already exist.
func (c Config) StoreOptions() (store.Options, error) {
	home, err := c.EnsureHome()
	if err != nil {
		return store.Options{}, err
	}

	dir := c.Dir
	if dir == "" {
		dir = home
	}
	return store.Options{
		Dir:         dir,
		Prefix:      c.Prefix,
		Ext:         c.Ext,
		Encrypt:     c.Encrypt,
		Compression: c.Compression,
		Salt: store.SaltOptions{
			Path:        c.SaltPath,
			DefaultPath: filepath.Join(home, DefaultSaltName),
			Create:      c.CreateSalt,
			Passphrase:  c.Passphrase,
		},
		LockTimeout: c.LockTimeout,
	}, nil
}

// SaltFile returns the salt file the store will use.
func (c Config) SaltFile() (string, error) {
	if c.SaltPath != "" {
		return c.SaltPath, nil
	}
	home, err := c.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultSaltName), nil
}
