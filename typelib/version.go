package typelib

import (
	"cmp"
	"strconv"
	"strings"
)

// Version is a namespace version. Typelibs are named major.minor; WIT
// packages carry a third semver component, which is accepted and dropped.
type Version struct {
	Major uint32
	Minor uint32
}

// ParseVersion reads "major.minor" or "major.minor.patch".
func ParseVersion(s string) (Version, bool) {
	major, rest, ok := strings.Cut(s, ".")
	if !ok {
		return Version{}, false
	}
	minor, patch, hasPatch := strings.Cut(rest, ".")
	if hasPatch {
		if _, err := strconv.ParseUint(patch, 10, 32); err != nil {
			return Version{}, false
		}
	}
	ma, err := strconv.ParseUint(major, 10, 32)
	if err != nil {
		return Version{}, false
	}
	mi, err := strconv.ParseUint(minor, 10, 32)
	if err != nil {
		return Version{}, false
	}
	return Version{Major: uint32(ma), Minor: uint32(mi)}, true
}

// Compare orders versions: -1 if v < o, 0 if equal, 1 if v > o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, o.Minor)
}

// compareVersionStrings orders raw version strings. Unparseable versions sort
// below parseable ones; ties fall back to lexical order.
func compareVersionStrings(a, b string) int {
	va, oka := ParseVersion(a)
	vb, okb := ParseVersion(b)
	switch {
	case oka && okb:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case oka:
		return 1
	case okb:
		return -1
	}
	return strings.Compare(a, b)
}
