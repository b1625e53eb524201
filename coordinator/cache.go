package coordinator

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/theckman/go-flock"

	"github.com/cartforge/cartforge"
)

// Cache manages the on-disk repository cache: one bare-ish working
// directory per project name under root, guarded cross-process by a
// go-flock file lock and, within this process, by a per-project fetch
// dedup window — a cached repository is fetched at most once per window,
// with the default being once per process run.
type Cache struct {
	root   string
	window time.Duration

	mu       sync.Mutex
	fetched  map[string]time.Time
	projlock map[string]*sync.Mutex
}

// NewCache returns a Cache rooted at root. window is the minimum interval
// between two fetches of the same cached repository; zero means once per
// process run.
func NewCache(root string, window time.Duration) *Cache {
	return &Cache{
		root:     root,
		window:   window,
		fetched:  make(map[string]time.Time),
		projlock: make(map[string]*sync.Mutex),
	}
}

// Dir returns the cache directory for project, creating no files.
func (c *Cache) Dir(project cartforge.Identifier) string {
	return filepath.Join(c.root, project.Name())
}

// lockFile returns the go-flock handle guarding project's cache directory
// against other processes. Every VCS operation against the cache directory
// must hold this lock for its duration.
func (c *Cache) lockFile(project cartforge.Identifier) *flock.Flock {
	return flock.NewFlock(filepath.Join(c.root, project.Name()+".lock"))
}

// projectMutex serializes operations against a single project's cache
// directory within this process; the go-flock lock alone only guards
// across processes.
func (c *Cache) projectMutex(project cartforge.Identifier) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := project.Name()
	m, ok := c.projlock[name]
	if !ok {
		m = &sync.Mutex{}
		c.projlock[name] = m
	}
	return m
}

// ShouldFetch reports whether project's cache entry is due for a fetch: it
// has never been fetched this process, or window has elapsed since the
// last fetch. Call MarkFetched after a successful fetch.
func (c *Cache) ShouldFetch(project cartforge.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.fetched[project.Name()]
	if !ok {
		return true
	}
	if c.window <= 0 {
		return false
	}
	return time.Since(last) >= c.window
}

// MarkFetched records that project's cache entry was just brought up to
// date.
func (c *Cache) MarkFetched(project cartforge.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched[project.Name()] = time.Now()
}
