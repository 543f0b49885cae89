// Package fileio provides locked, whole-file byte primitives.
//
// Reads take a shared advisory lock and writes an exclusive one, using
// flock(2) semantics through gofrs/flock. Locks are retried until the
// caller's context is done, at which point domain.ErrTimeout is
// returned. The primitives never create directories: parent directories
// must exist beforehand.
//
// Publishing a file atomically is done in two steps by the caller:
// WriteBytes to a temporary sibling, then Replace onto the target.
package fileio
