package rpmmd

import (
	"github.com/sassoftware/go-rpmutils"
)

// CompareEVR orders two packages by epoch, then version, then release,
// using rpm's version comparison rules for the version and release parts.
func CompareEVR(a, b *Package) int {
	return compareEVRParts(a.Epoch, a.Version, a.Release, b.Epoch, b.Version, b.Release)
}

func compareEVRParts(e1 int, v1, r1 string, e2 int, v2, r2 string) int {
	if e1 != e2 {
		if e1 < e2 {
			return -1
		}
		return 1
	}
	if c := rpmutils.Vercmp(v1, v2); c != 0 {
		return c
	}
	// A missing release on either side means the comparison is on
	// epoch+version only, matching rpm's behaviour for version ranges
	// like "foo = 1.0".
	if r1 == "" || r2 == "" {
		return 0
	}
	return rpmutils.Vercmp(r1, r2)
}
