package cartfile

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/version"
)

// LockedDependency is one lockfile entry: a project pinned to a single
// immutable revision.
type LockedDependency struct {
	Kind    SourceKind
	Project cartforge.Identifier
	Pin     version.Pin
}

// Lockfile is the ordered list of pinned dependencies written after a
// successful resolution, one per project in the resolved graph, in build
// order.
type Lockfile struct {
	Dependencies []LockedDependency
}

// ParseLockfile parses data as a lockfile. Unlike ParseManifest, entries are
// scanned token-by-token until end of input rather than line by line, so
// any whitespace may separate them.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var deps []LockedDependency
	for _, m := range lockEntry.FindAllStringSubmatch(string(data), -1) {
		kind := SourceKind(m[1])
		deps = append(deps, LockedDependency{
			Kind:    kind,
			Project: parseLocator(kind, m[2]),
			Pin:     version.Pin(m[3]),
		})
	}
	return &Lockfile{Dependencies: deps}, nil
}

// String renders the lockfile in canonical form: dependencies sorted by
// project name ascending, one per line, trailing newline, specifier slot
// always a quoted pin.
func (l *Lockfile) String() string {
	sorted := append([]LockedDependency{}, l.Dependencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Project.Name() < sorted[j].Project.Name()
	})

	var buf bytes.Buffer
	for _, d := range sorted {
		fmt.Fprintf(&buf, "%s %q %q\n", d.Kind, formatLocator(d.Kind, d.Project), d.Pin)
	}
	return buf.String()
}

// Write saves the lockfile to path atomically: it is written to a temporary
// file in the same directory, then renamed into place, so a reader never
// observes a partially written lockfile and a cancellation never leaves one
// behind.
func (l *Lockfile) Write(path string) error {
	dir := filepath.Dir(path)
	tmp, err := ioutil.TempFile(dir, ".cartfile.resolved-*")
	if err != nil {
		return cartforge.Wrap(err, cartforge.WriteFailed, "creating temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(l.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return cartforge.Wrap(err, cartforge.WriteFailed, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return cartforge.Wrap(err, cartforge.WriteFailed, "closing %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return cartforge.Wrap(err, cartforge.WriteFailed, "renaming into place %s", path)
	}
	return nil
}
