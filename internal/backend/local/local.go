// Package local updates submodules in a repository on disk using git
// plumbing commands. The working tree is never checked out or modified.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/bianoble/update-submodules/internal/engine"
	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/git"
	"github.com/bianoble/update-submodules/internal/manifest"
	"github.com/bianoble/update-submodules/internal/source"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// Options configures the local backend.
type Options struct {
	// NoReset leaves HEAD where it is; the new commit is only printed.
	NoReset bool
	// Push runs "git push" after HEAD has moved.
	Push bool
}

// Backend is an engine.Backend over a local repository.
type Backend struct {
	runner   *git.Runner
	root     string // working tree root; empty for a bare repository
	bare     bool
	opts     Options
	resolver source.Resolver
}

var _ engine.Backend = (*Backend)(nil)

// Open finds the repository containing dir.
func Open(ctx context.Context, dir string, opts Options) (*Backend, error) {
	runner, err := git.NewRunner(dir)
	if err != nil {
		return nil, err
	}
	bare, err := runner.IsBare(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", dir, err)
	}
	top, err := runner.TopLevel(ctx, bare)
	if err != nil {
		return nil, err
	}
	runner.Dir = top

	b := &Backend{runner: runner, bare: bare, opts: opts}
	if !bare {
		b.root = top
	}
	b.resolver = source.NewLocalResolver(b.root, &source.RemoteResolver{Runner: runner})
	return b, nil
}

func (b *Backend) Name() string { return "local" }

// Dir is the repository root the backend runs git in.
func (b *Backend) Dir() string { return b.runner.Dir }

// Bare reports whether the repository has no working tree.
func (b *Backend) Bare() bool { return b.bare }

func (b *Backend) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	return b.resolver.Resolve(ctx, entry, ref)
}

func (b *Backend) Snapshot(ctx context.Context) (*submodule.Snapshot, error) {
	head, err := b.runner.RevParse(ctx, "HEAD")
	if err != nil {
		return nil, err
	}
	tree, err := b.runner.TreeID(ctx, head)
	if err != nil {
		return nil, err
	}
	lines, err := b.runner.ListTree(ctx, head)
	if err != nil {
		return nil, err
	}

	m := manifest.Empty()
	for _, l := range lines {
		if l.Path != manifest.FileName || l.Type != "blob" {
			continue
		}
		data, err := b.runner.CatBlob(ctx, l.SHA)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", manifest.FileName, err)
		}
		if m, err = manifest.Parse(data); err != nil {
			return nil, err
		}
	}

	entries, err := manifest.Attach(submodule.Gitlinks(lines), m)
	if err != nil {
		return nil, err
	}
	return &submodule.Snapshot{Head: head, Tree: tree, Entries: entries, Lines: lines}, nil
}

func (b *Backend) WriteTree(ctx context.Context, snap *submodule.Snapshot, changes submodule.ChangeSet) (string, error) {
	lines, err := submodule.RewriteTree(snap.Lines, changes)
	if err != nil {
		return "", err
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("new tree listing", slog.String("diff", listingDiff(snap.Lines, lines)))
	}
	return b.runner.MakeTree(ctx, lines)
}

func (b *Backend) WriteCommit(ctx context.Context, spec engine.CommitSpec) (string, error) {
	return b.runner.CommitTree(ctx, git.CommitTreeOptions{
		Tree:    spec.Tree,
		Parents: spec.Parents,
		Message: spec.Message,
		Sign:    spec.Sign.Enabled(),
		KeyID:   spec.Sign.KeyID,
	})
}

func (b *Backend) UpdateBranch(ctx context.Context, commit string) (engine.BranchUpdate, error) {
	update := engine.BranchUpdate{Ref: "HEAD"}
	switch {
	case b.opts.NoReset:
		update.Method = "skipped"
		if b.opts.Push {
			slog.Warn("not pushing: HEAD was not moved")
		}
		return update, nil
	case b.bare:
		update.Method = "update-ref"
		if err := b.runner.UpdateRef(ctx, "HEAD", commit); err != nil {
			return update, err
		}
	default:
		update.Method = "reset"
		if err := b.runner.Reset(ctx, commit); err != nil {
			return update, err
		}
	}

	if b.opts.Push {
		if err := b.runner.Push(ctx); err != nil {
			return update, fmt.Errorf("pushing: %w", err)
		}
		update.Pushed = true
	}
	return update, nil
}

// OriginRepo returns the GitHub repository the "origin" remote points at.
func (b *Backend) OriginRepo(ctx context.Context) (ghapi.Repo, error) {
	url, err := b.runner.RemoteURL(ctx, "origin")
	if err != nil {
		return ghapi.Repo{}, err
	}
	return ghapi.ParseRepoURL(url)
}

func listingDiff(before, after []submodule.TreeLine) string {
	render := func(lines []submodule.TreeLine) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = l.String() + "\n"
		}
		return out
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        render(before),
		B:        render(after),
		FromFile: "HEAD^{tree}",
		ToFile:   "new tree",
		Context:  0,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(text, "\n")
}
