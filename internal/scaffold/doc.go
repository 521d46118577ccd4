// Package scaffold generates the metadata file for a new package: the
// declared files of a project, detected or given, with their checksums. It
// powers the "tw new" command. Installers are written by hand.
package scaffold
