// Package commands defines the confshelf CLI.
//
// Commands
//
//   - get, set, delete, pop   Read and write single keys
//   - keys, dump               List keys or print the whole store
//   - setcrypt, reveal         Store and read encryption cells
//   - backup                   Copy (or migrate) the snapshot and salt
//   - clear, sync              Remove the snapshot or force a merge
//   - salt init, salt show     Manage the salt file
//
// # Implementation
//
// The root command loads configuration and the logger before any
// subcommand runs. Each store command opens the store, works on it and
// flushes on return, so every invocation is one load/modify/sync cycle.
package commands
