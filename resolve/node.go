package resolve

import (
	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/version"
)

// Node is the working record for one project during resolution: a proposed
// pin together with the specifier every manifest edge reaching it has
// narrowed down to. Invariant: CurrentSpecifier.Satisfies(Pin) at all times
// (enforced by addNode; see graph.go).
//
// A GitReference dependency carries no SemanticVersion: Proposed is the
// zero value and IsGitRef is set, marking the pin as an unversioned
// reference rather than a semantic version.
type Node struct {
	Project          cartforge.Identifier
	Kind             cartfile.SourceKind
	Pin              version.Pin
	Proposed         version.Semantic
	IsGitRef         bool
	CurrentSpecifier version.Specifier
}

// byDescendingVersion orders candidate nodes so the resolver tries the
// highest proposed version first. GitReference nodes (IsGitRef) have no
// ordering among themselves beyond being a single-element candidate list.
type byDescendingVersion []*Node

func (s byDescendingVersion) Len() int      { return len(s) }
func (s byDescendingVersion) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byDescendingVersion) Less(i, j int) bool {
	return s[j].Proposed.Less(s[i].Proposed)
}
