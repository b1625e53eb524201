package cartfile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cartforge/cartforge/version"
)

func TestParseLockfile(t *testing.T) {
	input := `github "A/A" "1.3.0"
	git "https://example.com/x.git" "8ff4393"
`
	l, err := ParseLockfile([]byte(input))
	if err != nil {
		t.Fatalf("ParseLockfile: %v", err)
	}
	if len(l.Dependencies) != 2 {
		t.Fatalf("got %d entries, want 2", len(l.Dependencies))
	}
	if l.Dependencies[0].Pin != version.Pin("1.3.0") {
		t.Errorf("entry 0 pin = %q", l.Dependencies[0].Pin)
	}
	if l.Dependencies[1].Project.URL != "https://example.com/x.git" {
		t.Errorf("entry 1 project = %+v", l.Dependencies[1].Project)
	}
}

// TestLockfileRoundTrip checks that parsing and re-emitting a lockfile is
// idempotent and that entries are always emitted sorted by project name.
func TestLockfileRoundTrip(t *testing.T) {
	l1 := &Lockfile{Dependencies: []LockedDependency{
		{Kind: SourceGitHub, Project: idFor("B", "B"), Pin: "3.0.0"},
		{Kind: SourceGitHub, Project: idFor("A", "A"), Pin: "1.3.0"},
	}}
	emitted := l1.String()

	lines := strings.Split(strings.TrimRight(emitted, "\n"), "\n")
	if len(lines) != 2 || lines[0] != `github "A/A" "1.3.0"` {
		t.Fatalf("expected sorted output, got %v", lines)
	}

	l2, err := ParseLockfile([]byte(emitted))
	if err != nil {
		t.Fatalf("re-parsing emitted lockfile: %v", err)
	}
	if l2.String() != emitted {
		t.Errorf("lockfile emission is not idempotent:\nfirst:  %q\nsecond: %q", emitted, l2.String())
	}
}

func TestLockfileWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cartfile.resolved")

	l := &Lockfile{Dependencies: []LockedDependency{
		{Kind: SourceGitHub, Project: idFor("A", "A"), Pin: "1.3.0"},
	}}
	if err := l.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly the final lockfile to remain, found %v", entries)
	}

	l2, err := ParseLockfile(mustReadFile(t, path))
	if err != nil {
		t.Fatalf("ParseLockfile after Write: %v", err)
	}
	if l2.Dependencies[0].Pin != version.Pin("1.3.0") {
		t.Errorf("round-tripped pin = %q", l2.Dependencies[0].Pin)
	}
}
