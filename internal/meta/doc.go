// Package meta parses and validates .meta files, the key=value records that
// describe one installable extension: its version, tags, delivered files
// and their checksums. It also compares versions for update detection.
package meta
