// Package remote updates submodules of a GitHub repository through the Git
// Data API, without a clone.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/bianoble/update-submodules/internal/engine"
	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/manifest"
	"github.com/bianoble/update-submodules/internal/source"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// Client is the subset of the GitHub API the backend uses.
type Client interface {
	source.CommitLookup
	DefaultBranch(ctx context.Context, repo ghapi.Repo) (string, error)
	Tree(ctx context.Context, repo ghapi.Repo, sha string) ([]ghapi.TreeEntry, error)
	Blob(ctx context.Context, repo ghapi.Repo, sha string) ([]byte, error)
	CreateTree(ctx context.Context, repo ghapi.Repo, base string, entries []ghapi.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, repo ghapi.Repo, message, tree string, parents []string) (string, error)
	UpdateBranch(ctx context.Context, repo ghapi.Repo, branch, sha string) error
}

// Options configures the remote backend.
type Options struct {
	Repository ghapi.Repo
	// Branch to update; empty means the repository's default branch.
	Branch string
}

// Backend is an engine.Backend over a GitHub repository.
type Backend struct {
	client   Client
	repo     ghapi.Repo
	branch   string
	resolver *source.GitHubResolver
}

var _ engine.Backend = (*Backend)(nil)

// New returns a backend for opts.Repository.
func New(ctx context.Context, client Client, opts Options) (*Backend, error) {
	if opts.Repository.IsZero() {
		return nil, errors.New("no repository given")
	}
	branch := opts.Branch
	if branch == "" {
		var err error
		if branch, err = client.DefaultBranch(ctx, opts.Repository); err != nil {
			return nil, err
		}
	}
	return &Backend{
		client:   client,
		repo:     opts.Repository,
		branch:   branch,
		resolver: &source.GitHubResolver{Client: client, Super: opts.Repository},
	}, nil
}

func (b *Backend) Name() string { return "github" }

// Repository is the superproject being updated.
func (b *Backend) Repository() ghapi.Repo { return b.repo }

// Branch is the branch being updated.
func (b *Backend) Branch() string { return b.branch }

func (b *Backend) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	return b.resolver.Resolve(ctx, entry, ref)
}

func (b *Backend) Snapshot(ctx context.Context) (*submodule.Snapshot, error) {
	head, err := b.client.Commit(ctx, b.repo, b.branch)
	if err != nil {
		return nil, err
	}
	tree, err := b.client.Tree(ctx, b.repo, head.Tree)
	if err != nil {
		return nil, err
	}

	var (
		gitlinks  []submodule.Entry
		moduleSHA string
	)
	for _, e := range tree {
		switch {
		case e.Type == "commit":
			gitlinks = append(gitlinks, submodule.Entry{Path: e.Path, SHA: e.SHA})
		case e.Path == manifest.FileName && e.Type == "blob":
			moduleSHA = e.SHA
		}
	}
	if moduleSHA == "" {
		return nil, fmt.Errorf("%s@%s: tree %s has no %s", b.repo, b.branch, submodule.Short(head.Tree), manifest.FileName)
	}

	data, err := b.client.Blob(ctx, b.repo, moduleSHA)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifest.FileName, err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	entries, err := manifest.Attach(gitlinks, m)
	if err != nil {
		return nil, err
	}
	return &submodule.Snapshot{Head: head.SHA, Tree: head.Tree, Entries: entries}, nil
}

func (b *Backend) WriteTree(ctx context.Context, snap *submodule.Snapshot, changes submodule.ChangeSet) (string, error) {
	entries := make([]ghapi.TreeEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, ghapi.TreeEntry{Path: c.Path, Mode: "160000", Type: "commit", SHA: c.After})
	}
	return b.client.CreateTree(ctx, b.repo, snap.Tree, entries)
}

func (b *Backend) WriteCommit(ctx context.Context, spec engine.CommitSpec) (string, error) {
	if spec.Sign.Enabled() {
		return "", errors.New("signed commits are not supported through the GitHub API")
	}
	return b.client.CreateCommit(ctx, b.repo, spec.Message, spec.Tree, spec.Parents)
}

func (b *Backend) UpdateBranch(ctx context.Context, commit string) (engine.BranchUpdate, error) {
	update := engine.BranchUpdate{Ref: "refs/heads/" + b.branch, Method: "api", Pushed: true}
	if err := b.client.UpdateBranch(ctx, b.repo, b.branch, commit); err != nil {
		return engine.BranchUpdate{}, err
	}
	return update, nil
}
