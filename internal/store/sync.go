package store

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"confshelf/internal/codec"
	"confshelf/internal/crypto"
	"confshelf/internal/domain"
	"confshelf/internal/fileio"
)

// snapshot is a decoded on-disk envelope.
type snapshot struct {
	encrypted   bool
	compression string
	values      map[string]domain.Value
}

// Sync merges pending changes onto the on-disk snapshot and publishes
// the result.
//
// The snapshot is read and decoded first; keys marked set are copied
// from memory and keys marked deleted are removed. A non-empty result is
// written to the temp file and renamed over the snapshot; an empty one
// deletes the snapshot. Memory and the change log are replaced only
// after publishing succeeds, so a failed Sync can be retried and leaves
// the previous file intact.
func (s *Store) Sync(ctx context.Context) error {
	ctx, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	snap, err := s.readSnapshot(ctx)
	if err != nil {
		return err
	}

	var merged map[string]domain.Value
	if snap == nil {
		merged = maps.Clone(s.overlay)
	} else {
		merged = snap.values
	}
	for key, set := range s.changes {
		if !set {
			delete(merged, key)
			continue
		}
		if v, ok := s.overlay[key]; ok {
			merged[key] = v
		}
	}

	switch {
	case len(merged) == 0:
		if err := fileio.Delete(s.opts.path); err != nil {
			return err
		}
	case snap != nil && len(s.changes) == 0 && s.upToDate(snap):
		// Nothing to publish. Skipping keeps repeated syncs from
		// rewriting the file with fresh encryption nonces.
	default:
		data, err := s.encode(merged)
		if err != nil {
			return err
		}
		if err := s.publish(ctx, data); err != nil {
			return err
		}
	}

	s.opts.Logger.Debug("synced store",
		"path", s.opts.path,
		"keys", len(merged),
		"changes", len(s.changes),
		"encrypted", s.opts.Encrypt,
	)
	s.overlay = merged
	s.changes = map[string]bool{}
	return nil
}

func (s *Store) upToDate(snap *snapshot) bool {
	return snap.encrypted == s.opts.Encrypt && snap.compression == s.compression()
}

// compression is the compression actually applied: sealed payloads are
// never compressed.
func (s *Store) compression() string {
	if s.opts.Encrypt {
		return codec.CompressionNone
	}
	return s.opts.Compression
}

// readSnapshot returns nil when there is no snapshot on disk.
func (s *Store) readSnapshot(ctx context.Context) (*snapshot, error) {
	path := s.opts.path
	data, err := fileio.ReadBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	env, err := decodeEnvelope(data)
	if err != nil {
		return nil, domain.Corrupt(path, err)
	}
	payload, err := codec.Decompress(env.Compression, env.Payload)
	if err != nil {
		return nil, domain.Corrupt(path, err)
	}

	var values map[string]domain.Value
	if env.Encrypted {
		values, err = s.unseal(payload)
	} else {
		values, err = decodePlain(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return &snapshot{encrypted: env.Encrypted, compression: env.Compression, values: values}, nil
}

func decodePlain(payload []byte) (map[string]domain.Value, error) {
	var blobs map[string][]byte
	if err := codec.Unmarshal(payload, &blobs); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", domain.ErrStateCorruption, err)
	}
	values := make(map[string]domain.Value, len(blobs))
	for key, blob := range blobs {
		v, err := codec.DecodeValue(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", domain.ErrStateCorruption, key, err)
		}
		values[key] = v
	}
	return values, nil
}

// unseal opens the outer cell holding the map of per-value blobs, then
// each blob.
func (s *Store) unseal(payload []byte) (map[string]domain.Value, error) {
	outer, err := crypto.OpenCell(s.salt, domain.Sealed{Encrypted: true, Payload: payload}).Decrypt()
	if err != nil {
		return nil, err
	}
	blobs, ok := outer.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: sealed payload is %s, want map", domain.ErrStateCorruption, outer.Kind())
	}

	values := make(map[string]domain.Value, len(blobs))
	for key, blob := range blobs {
		sealed, ok := blob.AsBytes()
		if !ok {
			return nil, fmt.Errorf("%w: key %q is %s, want bytes", domain.ErrStateCorruption, key, blob.Kind())
		}
		v, err := crypto.OpenCell(s.salt, domain.Sealed{Alias: key, Encrypted: true, Payload: sealed}).Decrypt()
		if err != nil {
			return nil, err
		}
		values[key] = v
	}
	return values, nil
}

// encode serializes values into envelope bytes. With encryption each
// value is sealed on its own and the resulting map of blobs is sealed
// again as one unit.
func (s *Store) encode(values map[string]domain.Value) ([]byte, error) {
	env := envelope{V: envelopeVersion, Encrypted: s.opts.Encrypt, Compression: s.compression()}

	if s.opts.Encrypt {
		blobs := make(map[string]domain.Value, len(values))
		for key, v := range values {
			cell, err := crypto.NewCell(s.salt, key, false).Encrypt(v)
			if err != nil {
				return nil, fmt.Errorf("sealing key %q: %w", key, err)
			}
			_, payload := cell.Attr()
			blobs[key] = domain.Bytes(payload)
		}
		outer, err := crypto.NewCell(s.salt, "", false).Encrypt(domain.Map(blobs))
		if err != nil {
			return nil, fmt.Errorf("sealing snapshot: %w", err)
		}
		_, env.Payload = outer.Attr()
		return encodeEnvelope(env)
	}

	blobs := make(map[string][]byte, len(values))
	for key, v := range values {
		b, err := codec.EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}
		blobs[key] = b
	}
	payload, err := codec.Marshal(blobs)
	if err != nil {
		return nil, err
	}
	if env.Payload, err = codec.Compress(env.Compression, payload); err != nil {
		return nil, err
	}
	return encodeEnvelope(env)
}

// publish writes data to the temp file and renames it over the snapshot.
func (s *Store) publish(ctx context.Context, data []byte) error {
	if err := fileio.WriteBytes(ctx, s.opts.tmpPath, data, s.opts.FileMode); err != nil {
		_ = fileio.Delete(s.opts.tmpPath)
		return err
	}
	if err := fileio.Replace(ctx, s.opts.tmpPath, s.opts.path); err != nil {
		_ = fileio.Delete(s.opts.tmpPath)
		return err
	}
	return nil
}

// Backup copies the snapshot, and the salt file when requested, into
// existing directories. Pending changes are not synced first.
func (s *Store) Backup(ctx context.Context, destDir string, opts BackupOptions) error {
	if destDir == "" {
		return domain.InvalidArg("dest_dir", "there is no value for this parameter")
	}
	if info, err := os.Stat(destDir); err != nil || !info.IsDir() {
		return domain.InvalidArg("dest_dir", "directory %s does not exist", destDir)
	}
	saltDir := opts.SaltDir
	if opts.Salt {
		if saltDir == "" {
			saltDir = destDir
		}
		if info, err := os.Stat(saltDir); err != nil || !info.IsDir() {
			return domain.InvalidArg("salt_dir", "directory %s does not exist", saltDir)
		}
		if s.opts.saltPath == "" {
			return domain.InvalidArg("salt_dir", "store salt has no file to back up")
		}
	}

	_, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	dst := filepath.Join(destDir, filepath.Base(s.opts.path))
	if err := fileio.Move(s.opts.path, dst, opts.Migrate); err != nil {
		return fmt.Errorf("backing up snapshot: %w", err)
	}
	s.opts.Logger.Info("backed up snapshot", "from", s.opts.path, "to", dst, "migrate", opts.Migrate)

	if !opts.Salt {
		return nil
	}
	saltDst := filepath.Join(saltDir, filepath.Base(s.opts.saltPath))
	if err := fileio.Move(s.opts.saltPath, saltDst, opts.Migrate); err != nil {
		return fmt.Errorf("backing up salt: %w", err)
	}
	s.opts.Logger.Info("backed up salt", "from", s.opts.saltPath, "to", saltDst, "migrate", opts.Migrate)
	return nil
}
