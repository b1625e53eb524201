package resolve

import (
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/version"
)

// work is one not-yet-attached dependency edge: a project, the source kind
// it was declared under, the specifier constraining it, and (if any) the
// project that declared it.
type work struct {
	project   cartforge.Identifier
	kind      cartfile.SourceKind
	specifier version.Specifier
	parent    *cartforge.Identifier
}

// Resolve runs a backtracking search against manifest's root dependencies,
// using gw to discover versions, manifests, and reference pins. It returns
// a Lockfile whose entries are already in build order, or the last-seen
// recoverable error if no assignment of versions satisfies every
// constraint.
func Resolve(manifest *cartfile.Manifest, gw RepositoryGateway) (*cartfile.Lockfile, error) {
	frontier := make([]work, len(manifest.Dependencies))
	for i, d := range manifest.Dependencies {
		frontier[i] = work{project: d.Project, kind: d.Kind, specifier: d.Specifier}
	}

	g, err := attach(newGraph(), frontier, gw)
	if err != nil {
		return nil, err
	}

	lock := &cartfile.Lockfile{}
	for _, id := range g.BuildOrder() {
		n := g.nodes[id]
		lock.Dependencies = append(lock.Dependencies, cartfile.LockedDependency{
			Kind:    n.Kind,
			Project: n.Project,
			Pin:     n.Pin,
		})
	}
	return lock, nil
}

// attach is the depth-first backtracking core. It processes frontier as a
// FIFO queue so dependencies discovered by attaching one node are explored
// breadth-first relative to their siblings: attach every root first, then
// recurse into each one's own dependencies, working against a single
// shared, cloned-on-branch graph rather than materializing the full
// Cartesian product of tuples up front. The queue form is equivalent in
// outcome to the tuple form (same addNode merge/fail semantics, same
// highest-version-first candidate order, same per-frame backtracking) but
// avoids building every combination eagerly.
func attach(g *Graph, frontier []work, gw RepositoryGateway) (*Graph, error) {
	if len(frontier) == 0 {
		return g, nil
	}
	w, rest := frontier[0], frontier[1:]

	candidates, err := candidatesFor(w, g, gw)
	if err != nil {
		return nil, err
	}

	// tried collects one error per candidate rejected at this frame, so a
	// caller who exhausts every candidate for w sees what was tried and why,
	// not just the last failure.
	var tried *multierror.Error
	for _, cand := range candidates {
		next := g.clone()
		inserted, err := next.addNode(cand, w.parent)
		if err != nil {
			tried = multierror.Append(tried, err)
			continue
		}

		newFrontier := append([]work{}, rest...)
		if inserted {
			children, err := childWork(cand, gw)
			if err != nil {
				// Repository-gateway failures are unrecoverable.
				return nil, err
			}
			newFrontier = append(newFrontier, children...)
		}

		result, err := attach(next, newFrontier, gw)
		if err == nil {
			return result, nil
		}
		if ce, ok := cartforge.AsError(err); ok && ce.Kind.Recoverable() {
			tried = multierror.Append(tried, err)
			continue
		}
		return nil, err
	}

	return nil, exhausted(w, tried)
}

// exhausted turns every candidate failure recorded for w into the single
// recoverable *cartforge.Error attach's caller sees: its Kind is the last
// candidate's (matching whichever of IncompatibleRequirements or
// RequiredVersionNotFound actually applies), and its Cause is the full
// multierror so a caller printing "%+v" sees every candidate that was tried.
func exhausted(w work, tried *multierror.Error) *cartforge.Error {
	if tried.ErrorOrNil() == nil {
		return cartforge.New(cartforge.RequiredVersionNotFound, "%s: no candidate version available", w.project)
	}
	kind := cartforge.RequiredVersionNotFound
	if ce, ok := cartforge.AsError(tried.Errors[len(tried.Errors)-1]); ok {
		kind = ce.Kind
	}
	return cartforge.Wrap(tried, kind, "%s: no candidate satisfies every constraint (%d tried)", w.project, len(tried.Errors))
}

// candidatesFor enumerates the nodes attach should try for w, highest
// version first. A project already present in the graph yields a single
// candidate carrying its existing pin, deferring constraint reconciliation
// to addNode's merge path.
func candidatesFor(w work, g *Graph, gw RepositoryGateway) ([]*Node, error) {
	if existing, ok := g.nodes[w.project]; ok {
		return []*Node{{
			Project:          w.project,
			Kind:             existing.Kind,
			Pin:              existing.Pin,
			Proposed:         existing.Proposed,
			IsGitRef:         existing.IsGitRef,
			CurrentSpecifier: w.specifier,
		}}, nil
	}

	if ref, ok := w.specifier.(version.GitReference); ok {
		pin, err := gw.ResolveReference(w.project, ref.Ref)
		if err != nil {
			return nil, err
		}
		return []*Node{{
			Project:          w.project,
			Kind:             w.kind,
			Pin:              pin,
			IsGitRef:         true,
			CurrentSpecifier: w.specifier,
		}}, nil
	}

	pins, err := gw.Versions(w.project)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for _, pin := range pins {
		sv, ok := version.ParseSemantic(pin)
		if !ok {
			continue
		}
		if !w.specifier.Satisfies(pin) {
			continue
		}
		nodes = append(nodes, &Node{
			Project:          w.project,
			Kind:             w.kind,
			Pin:              pin,
			Proposed:         sv,
			CurrentSpecifier: w.specifier,
		})
	}
	if len(nodes) == 0 {
		return nil, cartforge.New(cartforge.RequiredVersionNotFound, "%s: no version satisfies %s", w.project, w.specifier)
	}
	sort.Sort(byDescendingVersion(nodes))
	return nodes, nil
}

// childWork fetches cand's manifest (if any) and maps its dependencies into
// work items rooted at cand's project.
func childWork(cand *Node, gw RepositoryGateway) ([]work, error) {
	m, err := gw.Manifest(cand.Project, cand.Pin)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	parent := cand.Project
	children := make([]work, len(m.Dependencies))
	for i, d := range m.Dependencies {
		children[i] = work{project: d.Project, kind: d.Kind, specifier: d.Specifier, parent: &parent}
	}
	return children, nil
}
