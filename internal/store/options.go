package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"confshelf/internal/codec"
	"confshelf/internal/crypto"
	"confshelf/internal/domain"
)

const (
	// DefaultExt is the snapshot extension used when Options.Ext is empty.
	DefaultExt = "db"
	// DefaultLockTimeout bounds lock acquisition when Options.LockTimeout is zero.
	DefaultLockTimeout = 5 * time.Second
	// DefaultFileMode is the permission of snapshot files.
	DefaultFileMode os.FileMode = 0o600

	tmpExt = "tmp"
)

// Options configures a Store.
type Options struct {
	// Dir holds the snapshot and temp files. It must exist.
	Dir string
	// Prefix names the files: <Prefix>.<Ext> and <Prefix>.tmp.
	Prefix string
	// Ext is the snapshot extension without a dot. Defaults to "db".
	Ext string
	// Encrypt seals the whole snapshot under the salt.
	Encrypt bool
	// Compression applies to plain snapshots only ("" or "zstd").
	Compression string
	Salt        SaltOptions
	// LockTimeout bounds every lock acquisition. Zero means
	// DefaultLockTimeout; negative values are rejected.
	LockTimeout time.Duration
	FileMode    os.FileMode
	// Logger receives sync and flush diagnostics. Nil discards them.
	Logger *slog.Logger
}

// SaltOptions selects the salt material of a store.
//
// Material, when set, is used as is and shared with the caller; Path is
// then only consulted by Backup. Otherwise the salt is loaded from Path,
// or from DefaultPath when Path is empty, and created when absent.
type SaltOptions struct {
	Material *crypto.Salt
	// Path is a caller-chosen salt file. Unless Create is set the file
	// must already exist.
	Path string
	// DefaultPath is the shared salt file used when Path is empty. It is
	// created on first use.
	DefaultPath string
	// Create allows Path to be created. It requires Path.
	Create     bool
	Passphrase string
}

// resolved is a validated copy of Options with derived paths.
type resolved struct {
	Options
	path     string
	tmpPath  string
	saltPath string
}

func (o Options) resolve() (resolved, error) {
	if o.Dir == "" {
		return resolved{}, domain.InvalidArg("dir", "there is no value for this parameter")
	}
	if info, err := os.Stat(o.Dir); err != nil || !info.IsDir() {
		return resolved{}, domain.InvalidArg("dir", "directory %s does not exist", o.Dir)
	}
	if o.Prefix == "" {
		return resolved{}, domain.InvalidArg("prefix", "there is no value for this parameter")
	}
	if strings.Index(o.Prefix, ".") > 0 {
		return resolved{}, domain.InvalidArg("prefix", "%q cannot carry an extension", o.Prefix)
	}
	if strings.ContainsAny(o.Prefix, `/\`) {
		return resolved{}, domain.InvalidArg("prefix", "%q must be a bare file name", o.Prefix)
	}
	if o.Ext == "" {
		o.Ext = DefaultExt
	}
	if strings.ContainsAny(o.Ext, `./\`) {
		return resolved{}, domain.InvalidArg("ext", "%q has a . or separator in it", o.Ext)
	}
	if o.Ext == tmpExt {
		return resolved{}, domain.InvalidArg("ext", "%q is reserved for the temp file", o.Ext)
	}
	if o.LockTimeout < 0 {
		return resolved{}, domain.InvalidArg("lock_timeout", "%s is negative", o.LockTimeout)
	}
	if o.LockTimeout == 0 {
		o.LockTimeout = DefaultLockTimeout
	}
	if !codec.ValidCompression(o.Compression) {
		return resolved{}, domain.InvalidArg("compression", "unknown compression %q", o.Compression)
	}
	if o.FileMode == 0 {
		o.FileMode = DefaultFileMode
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	saltPath, err := o.Salt.resolve()
	if err != nil {
		return resolved{}, err
	}

	return resolved{
		Options:  o,
		path:     filepath.Join(o.Dir, o.Prefix+"."+o.Ext),
		tmpPath:  filepath.Join(o.Dir, o.Prefix+"."+tmpExt),
		saltPath: saltPath,
	}, nil
}

func (o SaltOptions) resolve() (string, error) {
	if o.Material != nil {
		return o.Path, nil
	}
	if o.Path == "" {
		if o.Create {
			return "", domain.InvalidArg("salt.path", "is not populated but salt.create is set")
		}
		if o.DefaultPath == "" {
			return "", domain.InvalidArg("salt.path", "no salt path and no default salt path configured")
		}
		return o.DefaultPath, nil
	}

	dir := filepath.Dir(o.Path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", domain.InvalidArg("salt.path", "%s directory does not exist", o.Path)
	}
	if !o.Create {
		if _, err := os.Stat(o.Path); errors.Is(err, fs.ErrNotExist) {
			return "", domain.InvalidArg("salt.path", "%s does not exist as a salt file", o.Path)
		}
	}
	return o.Path, nil
}

// BackupOptions controls Backup.
type BackupOptions struct {
	// Salt also backs up the salt file.
	Salt bool
	// SaltDir receives the salt file. Defaults to the backup directory.
	SaltDir string
	// Migrate moves the files instead of copying them. The live snapshot
	// is gone afterwards until the next sync rewrites it from memory.
	Migrate bool
}
