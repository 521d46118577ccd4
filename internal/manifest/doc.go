// Package manifest maintains the per-file install ledger (~/.task/.tw_manifest).
// Each line records one delivered file: app|version|path|checksum|date.
// The ledger is the only source of truth for what is installed; writes go
// through a temporary file and an atomic rename.
package manifest
