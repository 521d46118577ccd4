package meta

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b. A leading "v" is tolerated.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// Skew describes how an installed version relates to the catalog version.
type Skew int

const (
	SkewNone     Skew = iota // same version
	SkewOutdated             // catalog is newer
	SkewAhead                // installed is newer than the catalog
	SkewDiffers              // versions differ but are not comparable
)

func (s Skew) String() string {
	switch s {
	case SkewOutdated:
		return "update available"
	case SkewAhead:
		return "newer than catalog"
	case SkewDiffers:
		return "differs from catalog"
	default:
		return ""
	}
}

// CompareSkew reports the skew between installed and available. Versions
// that are not valid semver are compared as plain strings.
func CompareSkew(installed, available string) Skew {
	if installed == available {
		return SkewNone
	}
	cmp, err := CompareVersions(installed, available)
	if err != nil {
		return SkewDiffers
	}
	switch cmp {
	case -1:
		return SkewOutdated
	case 1:
		return SkewAhead
	default:
		return SkewNone
	}
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
