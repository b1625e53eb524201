// Package resolve implements the backtracking version resolver against the
// abstract repository gateway.
package resolve

import (
	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/version"
)

// RepositoryGateway supplies the facts a resolve run needs about a project,
// without the resolver ever knowing how they were obtained (clone, fetch,
// read a cached blob). The project coordinator implements this interface
// against a live repository cache; tests implement it against a fixed,
// in-memory table.
type RepositoryGateway interface {
	// Versions lists the known releasable revisions for project. Order is
	// irrelevant; duplicates must not occur.
	Versions(project cartforge.Identifier) ([]version.Pin, error)

	// Manifest returns the manifest of project at pin, or (nil, nil) if no
	// manifest exists at that revision.
	Manifest(project cartforge.Identifier, pin version.Pin) (*cartfile.Manifest, error)

	// ResolveReference resolves a named reference (branch or tag) to a
	// commit pin. It fails with a RepositoryCheckoutFailed error if ref
	// does not exist.
	ResolveReference(project cartforge.Identifier, ref string) (version.Pin, error)
}
