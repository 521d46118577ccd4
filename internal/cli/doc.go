// Package cli defines the Cobra command tree for the tw CLI. Each file in
// this package registers one top-level command (install, remove, list,
// etc.) with the root command. Command implementations delegate to
// internal/pkgmgr for the package lifecycle and only handle flag parsing,
// output formatting, and error reporting.
package cli
