package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"confshelf/internal/domain"
)

// RetryDelay is the pause between lock attempts.
var RetryDelay = 20 * time.Millisecond

// ReadBytes returns the full content of path under a shared lock. A
// missing file is not an error: it yields nil, nil.
func ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, domain.InvalidArg("path", "no value specified")
	}

	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	if err := acquire(ctx, path, lock.TryRLockContext); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer release(lock)

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return b, nil
}

// WriteBytes replaces the content of path with data under an exclusive
// lock. data must be non-empty and the parent directory must exist.
func WriteBytes(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return domain.InvalidArg("path", "no value specified")
	}
	if len(data) == 0 {
		return domain.InvalidArg("data", "no value specified")
	}
	if err := requireDir(filepath.Dir(path), "path"); err != nil {
		return err
	}

	lock := flock.New(path, flock.SetFlag(os.O_CREATE|os.O_RDWR), flock.SetPermissions(perm))
	if err := acquire(ctx, path, lock.TryLockContext); err != nil {
		return err
	}
	defer release(lock)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &domain.IOError{Op: "open", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &domain.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return &domain.IOError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// Replace atomically renames tmp onto dst while holding dst's exclusive
// lock. Readers observe either the old or the new content, never a mix.
func Replace(ctx context.Context, tmp, dst string) error {
	if tmp == "" {
		return domain.InvalidArg("tmp", "no value specified")
	}
	if dst == "" {
		return domain.InvalidArg("dst", "no value specified")
	}
	if err := requireFile(tmp, "tmp"); err != nil {
		return err
	}

	lock := flock.New(dst, flock.SetFlag(os.O_CREATE|os.O_RDWR))
	if err := acquire(ctx, dst, lock.TryLockContext); err != nil {
		return err
	}
	defer release(lock)

	if err := os.Rename(tmp, dst); err != nil {
		return &domain.IOError{Op: "rename", Path: dst, Err: err}
	}
	syncDir(filepath.Dir(dst))
	return nil
}

// Delete removes path. A file that is already absent is not an error.
func Delete(path string) error {
	if path == "" {
		return domain.InvalidArg("path", "no value specified")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Move copies src to dst preserving mode and modification time. With
// migrate set, src is removed afterwards, making it a true move. src and
// the parent directory of dst must exist.
func Move(src, dst string, migrate bool) error {
	if src == "" {
		return domain.InvalidArg("src", "no value specified")
	}
	if dst == "" {
		return domain.InvalidArg("dst", "no value specified")
	}
	if err := requireFile(src, "src"); err != nil {
		return err
	}
	if err := requireDir(filepath.Dir(dst), "dst"); err != nil {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if migrate {
		return Delete(src)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &domain.IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &domain.IOError{Op: "stat", Path: src, Err: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &domain.IOError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &domain.IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &domain.IOError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return &domain.IOError{Op: "chmod", Path: dst, Err: err}
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return &domain.IOError{Op: "chtimes", Path: dst, Err: err}
	}
	return nil
}

func acquire(ctx context.Context, path string, try func(context.Context, time.Duration) (bool, error)) error {
	locked, err := try(ctx, RetryDelay)
	if ctxErr := ctx.Err(); !locked && ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, path, ctxErr)
	}
	if err != nil {
		return &domain.IOError{Op: "lock", Path: path, Err: err}
	}
	if !locked {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, path)
	}
	return nil
}

func release(lock *flock.Flock) {
	_ = lock.Unlock()
	_ = lock.Close()
}

func requireDir(dir, param string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return domain.InvalidArg(param, "directory %s cannot be found in file system", dir)
	}
	return nil
}

func requireFile(path, param string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return domain.InvalidArg(param, "%s cannot be found in file system", path)
	}
	return nil
}

// syncDir flushes a directory entry update. Failures are ignored: not
// every platform can fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
