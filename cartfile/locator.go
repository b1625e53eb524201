package cartfile

import (
	"strings"

	"github.com/cartforge/cartforge"
)

// parseLocator interprets a manifest locator string in light of its source
// kind. A github locator is either a bare "owner/name" pair or a full
// "https://host/owner/name[.git]" URL; git and binary locators are always
// taken as a bare remote URL.
func parseLocator(kind SourceKind, locator string) cartforge.Identifier {
	if kind != SourceGitHub {
		return cartforge.Identifier{URL: locator}
	}
	if strings.Contains(locator, "://") {
		return identifierFromURL(locator)
	}
	owner, repo := splitOwnerRepo(locator)
	return cartforge.Identifier{Owner: owner, Repo: trimGitSuffix(repo)}
}

func identifierFromURL(raw string) cartforge.Identifier {
	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+len("://"):]
	}
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return cartforge.Identifier{URL: raw}
	}
	host := rest[:slash]
	path := strings.Trim(rest[slash+1:], "/")
	owner, repo := splitOwnerRepo(path)
	if repo == "" {
		return cartforge.Identifier{URL: raw}
	}
	id := cartforge.Identifier{Owner: owner, Repo: trimGitSuffix(repo)}
	if host != "github.com" {
		id.Host = host
	}
	return id
}

func splitOwnerRepo(path string) (owner, repo string) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func trimGitSuffix(s string) string {
	return strings.TrimSuffix(s, ".git")
}

// CloneURL renders id as a fetchable remote URL regardless of how it was
// declared: a github identifier's bare "owner/name" manifest form is
// expanded to a full https URL against its host (default github.com); a
// git or binary identifier's URL is returned unchanged.
func CloneURL(kind SourceKind, id cartforge.Identifier) string {
	if kind != SourceGitHub || id.Repo == "" {
		return id.URL
	}
	host := id.Host
	if host == "" {
		host = "github.com"
	}
	return "https://" + host + "/" + id.Owner + "/" + id.Repo
}

// formatLocator renders id as it would appear as a manifest locator for
// kind, the inverse of parseLocator (modulo an enterprise host, which is
// always rendered as a full URL).
func formatLocator(kind SourceKind, id cartforge.Identifier) string {
	if kind != SourceGitHub || id.Repo == "" {
		return id.URL
	}
	if id.Host != "" {
		return "https://" + id.Host + "/" + id.Owner + "/" + id.Repo
	}
	return id.Owner + "/" + id.Repo
}
