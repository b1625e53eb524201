package coordinator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/vcs"
	shutil "github.com/termie/go-shutil"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/resolve"
	"github.com/cartforge/cartforge/version"
)

// ignoredWorkingDirs names directories Checkout never copies into a
// checked-out working directory: VCS metadata and this project's own build
// output, generalizing gitSource.exportVersionTo's vendor/.bzr/.svn/.hg
// ignore list to this domain's working tree.
var ignoredWorkingDirs = map[string]bool{
	".git":  true,
	"build": true,
}

// GitGateway implements resolve.RepositoryGateway against repositories held
// in a Cache, shelling out to git via Masterminds/vcs. It is the concrete
// gateway the coordinator hands to resolve.Resolve.
type GitGateway struct {
	cache *Cache
	log   *logHook
}

// NewGitGateway returns a GitGateway backed by cache.
func NewGitGateway(cache *Cache, log *logHook) *GitGateway {
	return &GitGateway{cache: cache, log: log}
}

// repo returns a *vcs.GitRepo for project, cloning it into the cache if
// absent and fetching it if ShouldFetch says it's due, serialized by both
// the in-process project mutex and the cross-process go-flock lock.
func (g *GitGateway) repo(project cartforge.Identifier, kind cartfile.SourceKind) (*vcs.GitRepo, error) {
	mu := g.cache.projectMutex(project)
	mu.Lock()
	defer mu.Unlock()

	fl := g.cache.lockFile(project)
	if err := fl.Lock(); err != nil {
		return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: acquiring cache lock", project)
	}
	defer fl.Unlock()

	remote := cartfile.CloneURL(kind, project)
	local := g.cache.Dir(project)

	repo, err := vcs.NewGitRepo(remote, local)
	if err != nil {
		return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: constructing git repo", project)
	}

	if !repo.CheckLocal() {
		g.log.event(cartforge.Cloning, project, "")
		if err := repo.Get(); err != nil {
			return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: cloning %s", project, remote)
		}
		g.cache.MarkFetched(project)
		return repo, nil
	}

	if g.cache.ShouldFetch(project) {
		g.log.event(cartforge.Fetching, project, "")
		if err := repo.Update(); err != nil {
			return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: fetching %s", project, remote)
		}
		g.cache.MarkFetched(project)
	}
	return repo, nil
}

// Versions implements resolve.RepositoryGateway: the repository's tags,
// filtered to nothing here (the resolver itself discards tags that don't
// parse as semantic versions).
func (g *GitGateway) Versions(project cartforge.Identifier) ([]version.Pin, error) {
	repo, err := g.repo(project, cartfile.SourceGit)
	if err != nil {
		return nil, err
	}
	tags, err := repo.Tags()
	if err != nil {
		return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: listing tags", project)
	}
	pins := make([]version.Pin, len(tags))
	for i, t := range tags {
		pins[i] = version.Pin(t)
	}
	return pins, nil
}

// Manifest implements resolve.RepositoryGateway: reads the manifest file's
// blob contents at pin via "git show" without disturbing the working
// directory checkout.
func (g *GitGateway) Manifest(project cartforge.Identifier, pin version.Pin) (*cartfile.Manifest, error) {
	repo, err := g.repo(project, cartfile.SourceGit)
	if err != nil {
		return nil, err
	}
	out, err := repo.RunFromDir("git", "show", string(pin)+":Cartfile")
	if err != nil {
		if looksLikeMissingPath(err, out) {
			return nil, nil
		}
		return nil, cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: reading manifest at %s", project, pin)
	}
	return cartfile.ParseManifest(out, project.Name()+"/Cartfile@"+string(pin))
}

// ResolveReference implements resolve.RepositoryGateway: resolves ref (a
// branch, tag, or commit-ish) to the concrete commit hash it currently
// names, via GitRepo.IsReference followed by CommitInfo, so a dangling
// reference is reported distinctly from a lookup failure.
func (g *GitGateway) ResolveReference(project cartforge.Identifier, ref string) (version.Pin, error) {
	repo, err := g.repo(project, cartfile.SourceGit)
	if err != nil {
		return "", err
	}
	if !repo.IsReference(ref) {
		return "", cartforge.New(cartforge.RepositoryCheckoutFailed, "%s: no such reference %q", project, ref)
	}
	info, err := repo.CommitInfo(ref)
	if err != nil {
		return "", cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: resolving reference %q", project, ref)
	}
	return version.Pin(info.Commit), nil
}

// checkoutMarkerName names the file Checkout writes into a dependency's
// working directory recording the pin it was last exported at, so a later
// Checkout to the same pin can skip the export entirely.
const checkoutMarkerName = ".cartforge-checkout"

// checkedOutPin reads dest's checkout marker, returning "" if dest hasn't
// been checked out by Checkout before (or was wiped since).
func checkedOutPin(dest string) version.Pin {
	data, err := os.ReadFile(filepath.Join(dest, checkoutMarkerName))
	if err != nil {
		return ""
	}
	return version.Pin(strings.TrimSpace(string(data)))
}

// Checkout sets project's working directory (a sibling of the cache,
// rooted at workRoot) to pin: the cached repository is updated in place to
// pin, then its tree is copied out with go-shutil.CopyTree, ignoring VCS
// metadata. If dest already reflects pin, Checkout is a no-op.
func (g *GitGateway) Checkout(project cartforge.Identifier, kind cartfile.SourceKind, pin version.Pin, workRoot string) error {
	repo, err := g.repo(project, kind)
	if err != nil {
		return err
	}

	mu := g.cache.projectMutex(project)
	mu.Lock()
	defer mu.Unlock()

	dest := filepath.Join(workRoot, project.Name())
	if checkedOutPin(dest) == pin {
		return nil
	}

	if err := repo.UpdateVersion(string(pin)); err != nil {
		return cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: checking out %s", project, pin)
	}

	if err := os.RemoveAll(dest); err != nil {
		return cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: clearing working directory", project)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: preparing working directory", project)
	}

	g.log.event(cartforge.CheckingOut, project, string(pin))
	opts := &shutil.CopyTreeOptions{
		Symlinks:     true,
		CopyFunction: shutil.Copy,
		Ignore: func(src string, contents []os.FileInfo) []string {
			var ignore []string
			for _, fi := range contents {
				if fi.IsDir() && ignoredWorkingDirs[fi.Name()] {
					ignore = append(ignore, fi.Name())
				}
			}
			return ignore
		},
	}
	if err := shutil.CopyTree(repo.LocalPath(), dest, opts); err != nil {
		return cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: exporting %s", project, pin)
	}
	if err := os.WriteFile(filepath.Join(dest, checkoutMarkerName), []byte(string(pin)+"\n"), 0o644); err != nil {
		return cartforge.Wrap(err, cartforge.RepositoryCheckoutFailed, "%s: recording checkout of %s", project, pin)
	}
	return nil
}

func looksLikeMissingPath(err error, out []byte) bool {
	msg := strings.ToLower(string(out) + err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "exists on disk, but not in")
}

var _ resolve.RepositoryGateway = (*GitGateway)(nil)
