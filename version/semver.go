package version

import (
	"fmt"
	"strings"

	mastersemver "github.com/Masterminds/semver"
)

// Semantic is a (major, minor, patch) triple of non-negative integers,
// carrying an optional back-reference to the Pin it was parsed from.
//
// Parsing accepts an optional leading non-numeric prefix (e.g. "v"), then
// a[.b[.c]]; missing minor/patch default to 0. Any suffix — pre-release or
// build metadata — is rejected, unlike a general-purpose semver range
// library's grammar.
type Semantic struct {
	Major, Minor, Patch int
	From                Pin
}

// ParseSemantic parses pin as a semantic version. It skips any leading
// non-numeric prefix, delegates the rest of the grammar to
// Masterminds/semver (a full semver grammar) and then rejects anything the
// distilled grammar doesn't allow: a non-empty pre-release or
// build-metadata suffix.
func ParseSemantic(pin Pin) (Semantic, bool) {
	raw := strings.TrimLeftFunc(string(pin), func(r rune) bool { return r < '0' || r > '9' })
	sv, err := mastersemver.NewVersion(raw)
	if err != nil {
		return Semantic{}, false
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Semantic{}, false
	}
	return Semantic{
		Major: int(sv.Major()),
		Minor: int(sv.Minor()),
		Patch: int(sv.Patch()),
		From:  pin,
	}, true
}

// String renders the version as "major.minor.patch".
func (s Semantic) String() string {
	return fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
}

// Compare returns -1, 0, or 1 as s is less than, equal to, or greater than
// other, comparing lexicographically over (major, minor, patch).
func (s Semantic) Compare(other Semantic) int {
	if s.Major != other.Major {
		return cmp(s.Major, other.Major)
	}
	if s.Minor != other.Minor {
		return cmp(s.Minor, other.Minor)
	}
	return cmp(s.Patch, other.Patch)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether s sorts before other.
func (s Semantic) Less(other Semantic) bool { return s.Compare(other) < 0 }

// Max returns the greater of s and other.
func Max(a, b Semantic) Semantic {
	if a.Less(b) {
		return b
	}
	return a
}
