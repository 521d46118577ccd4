// Package platform provides cross-platform file permission helpers. On Unix
// systems it uses chmod and mode bits directly. On Windows, where mode bits
// are not meaningful, executability is decided by file extension and
// permission changes are no-ops.
package platform
