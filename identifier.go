// Package cartforge provides the shared kernel used by every component of
// the dependency manager: project identity, the stable error taxonomy, and
// the progress-event broadcaster.
package cartforge

import "fmt"

// Identifier names the source of a dependency. It is a tagged variant: either
// a hosted-repository pair (optionally qualified by an enterprise host) or a
// bare remote URL. Two identifiers are equal iff their variants and fields
// match.
type Identifier struct {
	// Owner and Repo are set when the dependency is hosted-repository
	// addressed (source kind "github" or a bare "owner/name" locator).
	Owner string
	Repo  string

	// Host qualifies a hosted-repository identifier for an enterprise
	// instance. Empty means the default public host for the source kind.
	Host string

	// URL is set when the dependency is addressed by a bare remote URL
	// (source kind "git" or "binary").
	URL string
}

// Name is the canonical short name used for filesystem paths and as the
// build-order tie-break key. For a hosted-repository identifier this is the
// repository name; for a URL-addressed identifier it is the last path
// segment with any ".git" suffix stripped.
func (id Identifier) Name() string {
	if id.Repo != "" {
		return id.Repo
	}
	return lastPathSegment(id.URL)
}

func lastPathSegment(url string) string {
	start := 0
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			start = i + 1
			break
		}
	}
	seg := url[start:]
	const gitSuffix = ".git"
	if len(seg) > len(gitSuffix) && seg[len(seg)-len(gitSuffix):] == gitSuffix {
		seg = seg[:len(seg)-len(gitSuffix)]
	}
	return seg
}

// String renders a human-readable form suitable for log lines and error
// messages.
func (id Identifier) String() string {
	if id.Repo != "" {
		if id.Host != "" {
			return fmt.Sprintf("%s/%s/%s", id.Host, id.Owner, id.Repo)
		}
		return fmt.Sprintf("%s/%s", id.Owner, id.Repo)
	}
	return id.URL
}

// Equal reports whether id and other identify the same project.
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}
