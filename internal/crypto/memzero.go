package crypto

import "runtime"

// Wipe zeroes b. It is best-effort: copies made by the runtime or the
// garbage collector are out of reach.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
