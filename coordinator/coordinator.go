// Package coordinator implements the project coordinator: it loads a
// project's manifest, drives the resolver against a git-backed repository
// gateway, writes the resulting lockfile, and checks out every resolved
// dependency into its working directory, broadcasting progress events as
// it goes.
package coordinator

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/resolve"
)

// logHook fans a ProjectEvent out to both the Broadcaster a caller may be
// watching and a structured logrus line.
type logHook struct {
	broadcaster *cartforge.Broadcaster
	logger      *logrus.Logger
}

func (h *logHook) event(kind cartforge.EventKind, project cartforge.Identifier, revision string) {
	if h == nil {
		return
	}
	ev := cartforge.ProjectEvent{Kind: kind, Project: project, Revision: revision}
	if h.broadcaster != nil {
		h.broadcaster.Publish(ev)
	}
	if h.logger != nil {
		entry := h.logger.WithField("project", project.String())
		if revision != "" {
			entry = entry.WithField("revision", revision)
		}
		entry.Info(kind.String())
	}
}

// ProjectCoordinator ties the manifest, resolver, and gateway together for
// one top-level project rooted at Dir.
type ProjectCoordinator struct {
	Dir         string // directory containing Cartfile[.private] and Cartfile.resolved
	WorkRoot    string // directory under which each dependency's checkout lives
	Broadcaster *cartforge.Broadcaster
	Logger      *logrus.Logger

	// VCSConcurrency bounds how many dependencies' checkouts may run at
	// once; values below 1 are treated as 1. Same-project VCS operations
	// stay serialized regardless of this setting (see GitGateway.repo).
	VCSConcurrency int

	gateway *GitGateway
}

// NewProjectCoordinator returns a coordinator rooted at dir, whose
// dependency checkouts land under workRoot and whose repository cache lives
// under cacheRoot. fetchWindow is the minimum interval between two fetches
// of the same cached repository; vcsConcurrency bounds how many dependency
// checkouts may run concurrently.
func NewProjectCoordinator(dir, workRoot, cacheRoot string, fetchWindow time.Duration, vcsConcurrency int) *ProjectCoordinator {
	logger := logrus.New()
	c := &ProjectCoordinator{
		Dir:            dir,
		WorkRoot:       workRoot,
		Broadcaster:    cartforge.NewBroadcaster(),
		Logger:         logger,
		VCSConcurrency: vcsConcurrency,
	}
	hook := &logHook{broadcaster: c.Broadcaster, logger: logger}
	c.gateway = NewGitGateway(NewCache(cacheRoot, fetchWindow), hook)
	return c
}

// loadManifest reads Cartfile and, if present, Cartfile.private, combining
// them into a single manifest.
func (c *ProjectCoordinator) loadManifest() (*cartfile.Manifest, error) {
	m, err := c.readManifestFile("Cartfile")
	if err != nil {
		return nil, err
	}
	private, err := c.readManifestFileIfExists("Cartfile.private")
	if err != nil {
		return nil, err
	}
	return cartfile.Combine(m, private)
}

func (c *ProjectCoordinator) readManifestFile(name string) (*cartfile.Manifest, error) {
	path := filepath.Join(c.Dir, name)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, cartforge.Wrap(err, cartforge.ReadFailed, "reading %s", path)
	}
	return cartfile.ParseManifest(data, name)
}

func (c *ProjectCoordinator) readManifestFileIfExists(name string) (*cartfile.Manifest, error) {
	path := filepath.Join(c.Dir, name)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cartforge.Wrap(err, cartforge.ReadFailed, "reading %s", path)
	}
	return cartfile.ParseManifest(data, name)
}

// Update loads the manifest(s), resolves a fresh set of pins, writes
// Cartfile.resolved atomically, checks out every resolved dependency, and
// returns the lockfile.
func (c *ProjectCoordinator) Update() (*cartfile.Lockfile, error) {
	manifest, err := c.loadManifest()
	if err != nil {
		return nil, err
	}

	lock, err := resolve.Resolve(manifest, c.gateway)
	if err != nil {
		return nil, err
	}

	if err := lock.Write(filepath.Join(c.Dir, "Cartfile.resolved")); err != nil {
		return nil, err
	}

	if err := c.checkoutAll(lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// Bootstrap checks out every dependency named in an existing
// Cartfile.resolved without re-running the resolver.
func (c *ProjectCoordinator) Bootstrap() error {
	lock, err := c.readLockfile()
	if err != nil {
		return err
	}
	return c.checkoutAll(lock)
}

// Checkout re-checks out every dependency already named in
// Cartfile.resolved, idempotently bringing working directories back in
// line with the pinned revisions.
func (c *ProjectCoordinator) Checkout() error {
	return c.Bootstrap()
}

func (c *ProjectCoordinator) readLockfile() (*cartfile.Lockfile, error) {
	path := filepath.Join(c.Dir, "Cartfile.resolved")
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, cartforge.Wrap(err, cartforge.ReadFailed, "reading %s", path)
	}
	return cartfile.ParseLockfile(data)
}

// checkoutAll checks out every dependency in lock, up to VCSConcurrency at
// once: the repository-operation lane allows cross-project VCS operations
// to overlap, bounded by a buffered channel used as a semaphore, while
// same-project operations stay serialized by the gateway's own cache locks.
func (c *ProjectCoordinator) checkoutAll(lock *cartfile.Lockfile) error {
	concurrency := c.VCSConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error

	for _, d := range lock.Dependencies {
		d := d
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := c.gateway.Checkout(d.Project, d.Kind, d.Pin, c.WorkRoot); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
