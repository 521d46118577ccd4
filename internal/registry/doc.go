// Package registry resolves package metadata and installer programs from a
// catalog. A catalog is either a local checkout (a directory holding
// registry.d/ and installers/) or a remote repository reached over HTTP.
// The mode is detected once at startup and held as a Source value.
package registry
