package coordinator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cartforge/cartforge"
)

func idFor(owner, repo string) cartforge.Identifier {
	return cartforge.Identifier{Owner: owner, Repo: repo}
}

func TestCacheDirIsPerProject(t *testing.T) {
	c := NewCache("/var/cache/cartforge", 0)
	got := c.Dir(idFor("alamofire", "Alamofire"))
	want := filepath.Join("/var/cache/cartforge", "Alamofire")
	if got != want {
		t.Errorf("Dir = %q, want %q", got, want)
	}
}

func TestCacheShouldFetchOncePerProcessByDefault(t *testing.T) {
	c := NewCache(t.TempDir(), 0)
	id := idFor("a", "A")

	if !c.ShouldFetch(id) {
		t.Fatal("a never-fetched project should be due for a fetch")
	}
	c.MarkFetched(id)
	if c.ShouldFetch(id) {
		t.Fatal("with a zero window, a project fetched once this run should not be due again")
	}
}

func TestCacheShouldFetchRespectsWindow(t *testing.T) {
	c := NewCache(t.TempDir(), 50*time.Millisecond)
	id := idFor("a", "A")

	c.MarkFetched(id)
	if c.ShouldFetch(id) {
		t.Fatal("should not be due immediately after a fetch")
	}
	time.Sleep(60 * time.Millisecond)
	if !c.ShouldFetch(id) {
		t.Fatal("should be due again once the window has elapsed")
	}
}

func TestCacheProjectMutexIsStableByName(t *testing.T) {
	c := NewCache(t.TempDir(), 0)
	id := idFor("a", "A")
	if c.projectMutex(id) != c.projectMutex(id) {
		t.Fatal("projectMutex should return the same mutex for the same project across calls")
	}
}

func TestCacheLockFilePathIsPerProject(t *testing.T) {
	root := t.TempDir()
	c := NewCache(root, 0)
	fl := c.lockFile(idFor("a", "A"))
	want := filepath.Join(root, "A.lock")
	if fl.Path() != want {
		t.Errorf("lock path = %q, want %q", fl.Path(), want)
	}
}
