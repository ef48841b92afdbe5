package ghapi

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether r is unset.
func (r Repo) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// ParseRepo parses "owner/name".
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q: want owner/name", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// ParseRepoURL extracts owner/name from a clone URL. It accepts https,
// ssh, git and scp-like ("git@host:owner/name.git") forms on any host.
func ParseRepoURL(raw string) (Repo, error) {
	raw = strings.TrimSpace(raw)
	var p string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Repo{}, fmt.Errorf("parsing repository url %q: %w", raw, err)
		}
		p = u.Path
	case strings.Contains(raw, ":") && !strings.HasPrefix(raw, "."):
		_, p, _ = strings.Cut(raw, ":")
	default:
		return Repo{}, fmt.Errorf("not a repository url: %q", raw)
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	r, err := ParseRepo(p)
	if err != nil {
		return Repo{}, fmt.Errorf("repository url %q: %w", raw, err)
	}
	return r, nil
}

// IsRelativeURL reports whether a submodule URL is relative to the
// superproject's own URL.
func IsRelativeURL(raw string) bool {
	return strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../")
}

// ResolveRepoURL returns the repository a submodule URL points at. Relative
// URLs are resolved against the superproject repository the same way git
// resolves them against the superproject's remote.
func ResolveRepoURL(super Repo, raw string) (Repo, error) {
	if !IsRelativeURL(raw) {
		return ParseRepoURL(raw)
	}
	joined := path.Join("/", super.Owner, super.Name, strings.TrimSuffix(raw, ".git"))
	r, err := ParseRepo(strings.TrimPrefix(joined, "/"))
	if err != nil {
		return Repo{}, fmt.Errorf("relative url %q from %s: %w", raw, super, err)
	}
	return r, nil
}
