package templateguard

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version identifies a schema revision as an ordered (major, minor) pair.
// Versions are totally ordered: major first, then minor.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses "<major>.<minor>" into a Version. Both components must
// be non-negative integers; anything else is rejected. Finer-grained schemes
// (patch levels etc.) are deliberately not accepted.
func ParseVersion(v string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version: %q", v)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid version: %q", v)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Version{}, fmt.Errorf("invalid version: %q", v)
	}
	return Version{Major: major, Minor: minor}, nil
}

// Compare returns -1, 0, or +1 per the (major, minor) total order.
func (v Version) Compare(o Version) int {
	if v.Major != o.Major {
		return cmp.Compare(v.Major, o.Major)
	}
	return cmp.Compare(v.Minor, o.Minor)
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}
