// Package app turns CLI configuration into an opened store.
//
// Config is loaded with viper from confshelf.yaml, CONFSHELF_* environment
// variables and bound flags. App resolves it into store.Options and runs
// commands inside store.With so every command flushes on exit.
package app
