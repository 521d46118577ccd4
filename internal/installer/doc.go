// Package installer runs external installer programs. An installer is
// invoked as `<installer> <verb>` with verb one of install, remove or
// update, and reports success through its exit status. Its stdout and
// stderr are streamed to the caller and captured for diagnostics.
package installer
