// Package pkgmgr orchestrates the package lifecycle on top of a registry
// Source, the install Manifest and an installer Runner.
//
// A package moves between two states:
//
//	NotInstalled --install--> Installed --update--> Installed (new version)
//	Installed    --remove---> NotInstalled
//
// The Manifest is the only record of what is installed. Installers deliver
// files; the Manager registers them. After a successful install or update
// every declared file found at its expected path is recorded with the
// checksum paired to it in the package metadata.
package pkgmgr
