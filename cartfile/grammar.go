// Package cartfile implements the manifest and lockfile grammar: parsing and
// deterministic emission of the line-oriented dependency list a project
// author writes, and the machine-written pinned equivalent.
package cartfile

import "regexp"

// SourceKind distinguishes the three ways a dependency's locator may be
// interpreted.
type SourceKind string

const (
	SourceGitHub SourceKind = "github"
	SourceGit    SourceKind = "git"
	SourceBinary SourceKind = "binary"
)

func (k SourceKind) valid() bool {
	switch k {
	case SourceGitHub, SourceGit, SourceBinary:
		return true
	}
	return false
}

// entryLine matches one manifest/lockfile entry: a source kind, a quoted
// locator, and an optional trailing specifier.
var entryLine = regexp.MustCompile(`^(github|git|binary)\s+"([^"]*)"(?:\s+(.+?))?\s*$`)

var (
	specExactly    = regexp.MustCompile(`^==\s*(.+)$`)
	specAtLeast    = regexp.MustCompile(`^>=\s*(.+)$`)
	specCompatible = regexp.MustCompile(`^~>\s*(.+)$`)
	specGitRef     = regexp.MustCompile(`^"([^"]*)"$`)
)

// lockEntry is the token pattern used when scanning a lockfile, where
// entries may be separated by arbitrary whitespace rather than newlines.
var lockEntry = regexp.MustCompile(`(github|git|binary)\s+"([^"]*)"\s+"([^"]*)"`)
