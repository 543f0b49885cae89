// Package store implements the confshelf key-value store: an in-memory
// mapping backed by a single snapshot file.
//
// Writes go to memory and a change log. Sync reads the snapshot on disk,
// applies the change log on top of it and atomically replaces the file,
// so several processes sharing a snapshot only overwrite the keys they
// touched. Snapshots are CBOR envelopes, either plain (optionally zstd
// compressed) or sealed under the store's salt.
package store
