package version

import "fmt"

// Specifier constrains which pins are admissible for a dependency. It is a
// sum type with five variants: Any, AtLeast, CompatibleWith, Exactly, and
// GitReference.
type Specifier interface {
	fmt.Stringer

	// Satisfies indicates whether pin is allowed by the specifier.
	//
	// Semantic variants parse pin as a Semantic and apply the predicate; a
	// pin that fails to parse is treated as satisfying every semantic
	// variant — unknown ref names (e.g. a branch tip) match any semver
	// requirement, because they may be branches. This is permissive and
	// may produce surprising matches; it is preserved deliberately rather
	// than reinterpreted (see the Open Questions in DESIGN.md).
	// GitReference is satisfied only by a pin whose string equals its ref.
	Satisfies(pin Pin) bool

	isSpecifier()
}

// Any matches every pin.
type Any struct{}

func (Any) String() string     { return "*" }
func (Any) Satisfies(Pin) bool { return true }
func (Any) isSpecifier()       {}

// AtLeast matches any semantic version greater than or equal to V.
type AtLeast struct{ V Semantic }

func (a AtLeast) String() string { return ">= " + a.V.String() }
func (a AtLeast) Satisfies(pin Pin) bool {
	sv, ok := ParseSemantic(pin)
	if !ok {
		return true
	}
	return !sv.Less(a.V)
}
func (AtLeast) isSpecifier() {}

// CompatibleWith matches any semantic version with the same major as V and
// greater than or equal to V ("~>").
type CompatibleWith struct{ V Semantic }

func (c CompatibleWith) String() string { return "~> " + c.V.String() }
func (c CompatibleWith) Satisfies(pin Pin) bool {
	sv, ok := ParseSemantic(pin)
	if !ok {
		return true
	}
	return sv.Major == c.V.Major && !sv.Less(c.V)
}
func (CompatibleWith) isSpecifier() {}

// Exactly matches only the single version V.
type Exactly struct{ V Semantic }

func (e Exactly) String() string { return "== " + e.V.String() }
func (e Exactly) Satisfies(pin Pin) bool {
	sv, ok := ParseSemantic(pin)
	if !ok {
		return true
	}
	return sv.Compare(e.V) == 0
}
func (Exactly) isSpecifier() {}

// GitReference matches only a pin whose string is exactly Ref (a named
// branch or tag, rather than a semantic version).
type GitReference struct{ Ref string }

func (g GitReference) String() string { return `"` + g.Ref + `"` }
func (g GitReference) Satisfies(pin Pin) bool {
	return string(pin) == g.Ref
}
func (GitReference) isSpecifier() {}

// Intersect computes the intersection of a and b, returning (spec, true) if
// they are compatible or (zero, false) if they are not. Intersect is
// commutative and associative.
func Intersect(a, b Specifier) (Specifier, bool) {
	if _, ok := a.(Any); ok {
		return b, true
	}
	if _, ok := b.(Any); ok {
		return a, true
	}

	// Exactly takes precedence: Exactly(e) ∩ X = Exactly(e) iff X.Satisfies(e).
	if ea, ok := a.(Exactly); ok {
		if specSatisfiesSemantic(b, ea.V) {
			return ea, true
		}
		return nil, false
	}
	if eb, ok := b.(Exactly); ok {
		if specSatisfiesSemantic(a, eb.V) {
			return eb, true
		}
		return nil, false
	}

	ga, aIsGit := a.(GitReference)
	gb, bIsGit := b.(GitReference)
	if aIsGit || bIsGit {
		if aIsGit && bIsGit {
			if ga.Ref == gb.Ref {
				return ga, true
			}
			return nil, false
		}
		// GitReference is incompatible with every semver variant except Any,
		// which was already handled above.
		return nil, false
	}

	switch av := a.(type) {
	case AtLeast:
		switch bv := b.(type) {
		case AtLeast:
			return AtLeast{V: Max(av.V, bv.V)}, true
		case CompatibleWith:
			return intersectAtLeastCompatible(av, bv)
		}
	case CompatibleWith:
		switch bv := b.(type) {
		case CompatibleWith:
			if av.V.Major != bv.V.Major {
				return nil, false
			}
			return CompatibleWith{V: Max(av.V, bv.V)}, true
		case AtLeast:
			return intersectAtLeastCompatible(bv, av)
		}
	}

	return nil, false
}

func intersectAtLeastCompatible(a AtLeast, c CompatibleWith) (Specifier, bool) {
	switch {
	case a.V.Major > c.V.Major:
		return nil, false
	case a.V.Major < c.V.Major:
		return c, true
	default:
		return CompatibleWith{V: Max(a.V, c.V)}, true
	}
}

// specSatisfiesSemantic reports whether spec admits the semantic version v,
// treating v as if it were a well-formed pin. A GitReference specifier
// (reached when intersecting it with Exactly) never admits v.
func specSatisfiesSemantic(spec Specifier, v Semantic) bool {
	switch s := spec.(type) {
	case Any:
		return true
	case AtLeast:
		return !v.Less(s.V)
	case CompatibleWith:
		return v.Major == s.V.Major && !v.Less(s.V)
	case Exactly:
		return v.Compare(s.V) == 0
	default:
		return false
	}
}
