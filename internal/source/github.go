package source

import (
	"context"
	"fmt"

	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/manifest"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// CommitLookup is the part of the GitHub client the resolver needs.
type CommitLookup interface {
	Commit(ctx context.Context, repo ghapi.Repo, ref string) (ghapi.CommitInfo, error)
}

// GitHubResolver resolves refs through the GitHub commits API of the
// repository each submodule URL points at.
type GitHubResolver struct {
	Client CommitLookup

	// Super is the superproject, used to resolve relative submodule URLs.
	Super ghapi.Repo
}

func (g *GitHubResolver) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	if entry.URL == "" {
		return "", manifest.MissingEntry(entry)
	}
	repo, err := ghapi.ResolveRepoURL(g.Super, entry.URL)
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: err, Hint: "submodule url must point at a GitHub repository"}
	}
	info, err := g.Client.Commit(ctx, repo, ref)
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: fmt.Errorf("in %s: %w", repo, err)}
	}
	return info.SHA, nil
}
