package cartfile

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/version"
)

// Dependency is one manifest entry: a project addressed by Kind/Project and
// constrained by Specifier.
type Dependency struct {
	Kind      SourceKind
	Project   cartforge.Identifier
	Specifier version.Specifier
}

// Manifest is the parsed, in-memory form of a dependency manifest: an
// unordered set of Dependency values keyed by project.
type Manifest struct {
	Dependencies []Dependency
}

// ParseManifest parses data as a manifest. filename is used only to build
// error messages. Duplicate projects within data are reported as a
// cartforge.Error of kind DuplicateDependencies.
func ParseManifest(data []byte, filename string) (*Manifest, error) {
	deps, err := parseLines(data, filename)
	if err != nil {
		return nil, err
	}
	if dup := firstDuplicate(deps); dup != nil {
		return nil, duplicateError(dup)
	}
	return &Manifest{Dependencies: deps}, nil
}

// Combine merges m and private into a single Manifest, reporting any project
// that appears in both (or that is duplicated within either) as a
// cartforge.Error of kind DuplicateDependencies. private may be nil.
func Combine(m, private *Manifest) (*Manifest, error) {
	if private == nil {
		return m, nil
	}
	all := append(append([]Dependency{}, m.Dependencies...), private.Dependencies...)
	if dup := firstDuplicate(all); dup != nil {
		return nil, duplicateError(dup)
	}
	return &Manifest{Dependencies: all}, nil
}

func firstDuplicate(deps []Dependency) []cartforge.Identifier {
	seen := make(map[cartforge.Identifier]bool, len(deps))
	var dups []cartforge.Identifier
	for _, d := range deps {
		if seen[d.Project] {
			dups = append(dups, d.Project)
			continue
		}
		seen[d.Project] = true
	}
	return dups
}

func duplicateError(dups []cartforge.Identifier) error {
	names := make([]string, len(dups))
	for i, d := range dups {
		names[i] = d.String()
	}
	return cartforge.New(cartforge.DuplicateDependencies, "duplicate dependencies: %s", strings.Join(names, ", "))
}

func parseLines(data []byte, filename string) ([]Dependency, error) {
	var deps []Dependency
	lines := strings.Split(string(data), "\n")
	for lineNo, raw := range lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		m := entryLine.FindStringSubmatch(line)
		if m == nil {
			return nil, cartforge.New(cartforge.ParseError, "%s:%d: malformed dependency line %q", filename, lineNo+1, raw)
		}
		kind := SourceKind(m[1])
		spec, err := parseSpecifier(m[3])
		if err != nil {
			return nil, cartforge.New(cartforge.ParseError, "%s:%d: %s", filename, lineNo+1, err)
		}
		deps = append(deps, Dependency{
			Kind:      kind,
			Project:   parseLocator(kind, m[2]),
			Specifier: spec,
		})
	}
	return deps, nil
}

// stripComment removes a trailing "#..." comment from line, respecting
// double-quoted spans so a '#' inside a locator or ref is never mistaken for
// one.
func stripComment(line string) string {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

func parseSpecifier(s string) (version.Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return version.Any{}, nil
	}
	if m := specExactly.FindStringSubmatch(s); m != nil {
		return parseSemanticSpecifier(m[1], func(v version.Semantic) version.Specifier { return version.Exactly{V: v} })
	}
	if m := specAtLeast.FindStringSubmatch(s); m != nil {
		return parseSemanticSpecifier(m[1], func(v version.Semantic) version.Specifier { return version.AtLeast{V: v} })
	}
	if m := specCompatible.FindStringSubmatch(s); m != nil {
		return parseSemanticSpecifier(m[1], func(v version.Semantic) version.Specifier { return version.CompatibleWith{V: v} })
	}
	if m := specGitRef.FindStringSubmatch(s); m != nil {
		return version.GitReference{Ref: m[1]}, nil
	}
	return nil, fmt.Errorf("unrecognized version specifier %q", s)
}

func parseSemanticSpecifier(raw string, build func(version.Semantic) version.Specifier) (version.Specifier, error) {
	v, ok := version.ParseSemantic(version.Pin(strings.TrimSpace(raw)))
	if !ok {
		return nil, fmt.Errorf("invalid semantic version %q", raw)
	}
	return build(v), nil
}

// String renders the manifest in canonical form: dependencies sorted by
// project name ascending, one per line, trailing newline. Round-tripping
// parse-then-emit reproduces the input up to comments, whitespace, and
// ordering.
func (m *Manifest) String() string {
	sorted := append([]Dependency{}, m.Dependencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Project.Name() < sorted[j].Project.Name()
	})

	var buf bytes.Buffer
	for _, d := range sorted {
		fmt.Fprintf(&buf, "%s %q", d.Kind, formatLocator(d.Kind, d.Project))
		if _, isAny := d.Specifier.(version.Any); !isAny {
			fmt.Fprintf(&buf, " %s", formatSpecifier(d.Specifier))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func formatSpecifier(s version.Specifier) string {
	switch v := s.(type) {
	case version.GitReference:
		return fmt.Sprintf("%q", v.Ref)
	default:
		return v.String()
	}
}
