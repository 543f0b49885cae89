package store

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"

	"golang.org/x/sync/semaphore"

	"confshelf/internal/crypto"
	"confshelf/internal/domain"
	"confshelf/internal/fileio"
)

// Store is a file-backed key-value store with deferred write-back.
//
// Mutations only touch memory and a change log. Sync merges the change
// log onto the current on-disk snapshot and publishes the result
// atomically. One coarse lock serializes Sync, Clear and Backup; the
// mutators take the same lock, so they block while a sync is running.
type Store struct {
	opts resolved
	salt *crypto.Salt
	sem  *semaphore.Weighted

	overlay map[string]domain.Value
	changes map[string]bool
}

// Compile-time assertion that Store implements domain.Mapping.
var _ domain.Mapping = (*Store)(nil)

// Open validates opts, loads or creates the salt material and hydrates
// the store from any existing snapshot.
func Open(ctx context.Context, opts Options) (*Store, error) {
	r, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	s := &Store{
		opts:    r,
		sem:     semaphore.NewWeighted(1),
		overlay: map[string]domain.Value{},
		changes: map[string]bool{},
	}
	if err := s.loadSalt(ctx); err != nil {
		return nil, err
	}
	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// With opens a store, runs fn and flushes on every exit path, panics
// included. A flush failure is logged; it is returned only when fn
// itself succeeded.
func With(ctx context.Context, opts Options, fn func(*Store) error) (err error) {
	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		r := recover()
		if flushErr := s.Sync(context.WithoutCancel(ctx)); flushErr != nil {
			s.opts.Logger.Error("flush on scope exit failed", "path", s.opts.path, "error", flushErr)
			if err == nil && r == nil {
				err = flushErr
			}
		}
		if r != nil {
			panic(r)
		}
	}()
	return fn(s)
}

// Close flushes pending changes. The store stays usable afterwards.
func (s *Store) Close() error {
	return s.Sync(context.Background())
}

func (s *Store) loadSalt(ctx context.Context) error {
	if s.opts.Salt.Material != nil {
		s.salt = s.opts.Salt.Material
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	defer cancel()

	salt, created, err := crypto.LoadOrCreateSalt(ctx, s.opts.saltPath, s.opts.Salt.Passphrase)
	if err != nil {
		return err
	}
	if created {
		s.opts.Logger.Info("created salt material", "path", s.opts.saltPath, "salt", salt.Fingerprint())
	}
	s.salt = salt
	return nil
}

// acquire takes the store lock for a blocking operation. The returned
// context carries the lock timeout and also bounds file lock waits.
func (s *Store) acquire(ctx context.Context) (context.Context, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	if err := s.sem.Acquire(ctx, 1); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: store %s: %w", domain.ErrTimeout, s.opts.path, err)
	}
	return ctx, func() {
		s.sem.Release(1)
		cancel()
	}, nil
}

// enter takes the store lock without a deadline for in-memory access.
func (s *Store) enter() {
	_ = s.sem.Acquire(context.Background(), 1)
}

func (s *Store) leave() { s.sem.Release(1) }

// Salt returns the salt material in use.
func (s *Store) Salt() *crypto.Salt { return s.salt }

// Path returns the snapshot file path.
func (s *Store) Path() string { return s.opts.path }

// SaltPath returns the salt file path, empty when the salt was supplied
// without one.
func (s *Store) SaltPath() string { return s.opts.saltPath }

// Get returns the value stored under key.
func (s *Store) Get(key string) (domain.Value, bool) {
	s.enter()
	defer s.leave()
	v, ok := s.overlay[key]
	return v, ok
}

// Set stores value under key. Falsy values (see domain.Value.Truthy)
// are dropped without touching the store.
func (s *Store) Set(key string, value domain.Value) {
	if !value.Truthy() {
		return
	}
	s.enter()
	defer s.leave()
	s.overlay[key] = value
	s.changes[key] = true
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	s.enter()
	defer s.leave()
	s.deleteLocked(key)
}

func (s *Store) deleteLocked(key string) {
	if _, ok := s.overlay[key]; !ok {
		return
	}
	delete(s.overlay, key)
	s.changes[key] = false
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.enter()
	defer s.leave()
	return len(s.overlay)
}

// Keys returns the in-memory keys in ascending order. Changes made on
// disk by other processes are not visible until the next Sync.
func (s *Store) Keys() []string {
	s.enter()
	defer s.leave()
	return slices.Sorted(maps.Keys(s.overlay))
}

// All iterates over a point-in-time copy of the store in key order.
// The loop body may mutate the store.
func (s *Store) All() iter.Seq2[string, domain.Value] {
	s.enter()
	keys := slices.Sorted(maps.Keys(s.overlay))
	view := maps.Clone(s.overlay)
	s.leave()

	return func(yield func(string, domain.Value) bool) {
		for _, k := range keys {
			if !yield(k, view[k]) {
				return
			}
		}
	}
}

// Pop removes and returns the value under key, or ErrNotFound.
func (s *Store) Pop(key string) (domain.Value, error) {
	s.enter()
	defer s.leave()
	v, ok := s.overlay[key]
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: key %q", domain.ErrNotFound, key)
	}
	s.deleteLocked(key)
	return v, nil
}

// PopDefault is Pop that returns def, without mutating anything, when
// key is missing.
func (s *Store) PopDefault(key string, def domain.Value) domain.Value {
	v, err := s.Pop(key)
	if err != nil {
		return def
	}
	return v
}

// PopItem removes and returns the first key in iteration order.
func (s *Store) PopItem() (string, domain.Value, error) {
	s.enter()
	defer s.leave()
	if len(s.overlay) == 0 {
		return "", domain.Value{}, fmt.Errorf("%w: store is empty", domain.ErrNotFound)
	}
	key := slices.Min(slices.Collect(maps.Keys(s.overlay)))
	v := s.overlay[key]
	s.deleteLocked(key)
	return key, v, nil
}

// Update merges mapping and then pairs into the store. Unlike Set,
// falsy values are stored.
func (s *Store) Update(mapping map[string]domain.Value, pairs ...domain.Pair) {
	s.enter()
	defer s.leave()
	for k, v := range mapping {
		s.overlay[k] = v
		s.changes[k] = true
	}
	for _, p := range pairs {
		s.overlay[p.Key] = p.Value
		s.changes[p.Key] = true
	}
}

// SetDefault returns the value under key, storing def first when the key
// is missing. def is stored even when falsy.
func (s *Store) SetDefault(key string, def domain.Value) domain.Value {
	s.enter()
	defer s.leave()
	if v, ok := s.overlay[key]; ok {
		return v
	}
	s.overlay[key] = def
	s.changes[key] = true
	return def
}

// SetCrypt stores a new encryption cell under key, bound to the store's
// salt. value is encrypted into the cell when it is truthy. The cell is
// independent of whole-store encryption.
func (s *Store) SetCrypt(key string, value domain.Value, private bool) (*crypto.Cell, error) {
	cell := crypto.NewCell(s.salt, key, private)
	if value.Truthy() {
		if _, err := cell.Encrypt(value); err != nil {
			return nil, err
		}
	}

	s.enter()
	defer s.leave()
	s.overlay[key] = cell.Value()
	s.changes[key] = true
	return cell, nil
}

// Cell returns a handle for the cell stored under key.
func (s *Store) Cell(key string) (*crypto.Cell, bool) {
	v, ok := s.Get(key)
	if !ok {
		return nil, false
	}
	sealed, ok := v.AsCell()
	if !ok {
		return nil, false
	}
	return crypto.OpenCell(s.salt, sealed), true
}

// Clear deletes the snapshot file immediately and empties the store.
func (s *Store) Clear(ctx context.Context) error {
	_, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := fileio.Delete(s.opts.path); err != nil {
		return err
	}
	s.overlay = map[string]domain.Value{}
	s.changes = map[string]bool{}
	s.opts.Logger.Debug("cleared store", "path", s.opts.path)
	return nil
}

// String renders the in-memory content. Cells never show their payload.
func (s *Store) String() string {
	s.enter()
	defer s.leave()
	return "Store" + domain.Map(s.overlay).String()
}
