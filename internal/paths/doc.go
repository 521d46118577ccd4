// Package paths defines the install layout under the Taskwarrior data
// directory (normally ~/.task).
//
// Each file role maps to one directory:
//
//	hook    -> hooks/
//	script  -> scripts/
//	config  -> config/
//	doc     -> docs/
//	generic -> the install root itself
//
// logs/ and lib/ are created for installers but never receive declared
// files. The per-file ledger lives at <root>/.tw_manifest.
//
// The same layout produces the environment handed to installer programs,
// so the directories an installer writes to and the directories tw checks
// afterwards cannot drift apart.
package paths
