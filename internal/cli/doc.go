// Package cli defines the Cobra command tree for the crxgen CLI. Each file
// in this package registers one top-level command (manifest, entries, build,
// dev, etc.) with the root command. Command implementations delegate to
// internal packages for the build logic and only handle flag parsing, I/O
// formatting and process lifecycle.
package cli
