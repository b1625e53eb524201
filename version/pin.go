// Package version implements the core's version model: pinned versions,
// semantic versions, and the version specifiers that constrain them,
// including their partial intersection operator.
package version

// Pin is an opaque reference to an immutable revision: a tag name or a
// commit hash. Equality is string equality.
type Pin string

// String renders the pin as it would appear in a manifest or lockfile.
func (p Pin) String() string {
	return string(p)
}
