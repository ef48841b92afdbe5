package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bianoble/update-submodules/internal/submodule"
)

// IsBare reports whether the repository has no working tree.
func (r *Runner) IsBare(ctx context.Context) (bool, error) {
	res, err := r.Run(ctx, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) == "true", nil
}

// TopLevel returns the root of the working tree, or the git directory for a
// bare repository.
func (r *Runner) TopLevel(ctx context.Context, bare bool) (string, error) {
	flag := "--show-toplevel"
	if bare {
		flag = "--absolute-git-dir"
	}
	res, err := r.Run(ctx, "rev-parse", flag)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RevParse resolves rev to a commit id.
func (r *Runner) RevParse(ctx context.Context, rev string) (string, error) {
	res, err := r.Run(ctx, "rev-parse", "--verify", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return expectHash(res.Stdout, "rev-parse")
}

// ListTree returns the flat listing of treeish.
func (r *Runner) ListTree(ctx context.Context, treeish string) ([]submodule.TreeLine, error) {
	res, err := r.Run(ctx, "ls-tree", "-z", treeish)
	if err != nil {
		return nil, err
	}
	lines, err := submodule.ParseTree(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("ls-tree %s: %w", treeish, err)
	}
	return lines, nil
}

// TreeID returns the root tree of a commit.
func (r *Runner) TreeID(ctx context.Context, commit string) (string, error) {
	res, err := r.Run(ctx, "rev-parse", "--verify", commit+"^{tree}")
	if err != nil {
		return "", err
	}
	return expectHash(res.Stdout, "rev-parse")
}

// CatBlob returns the content of a blob object.
func (r *Runner) CatBlob(ctx context.Context, sha string) ([]byte, error) {
	res, err := r.Run(ctx, "cat-file", "blob", sha)
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

// MakeTree writes lines as a new tree object and returns its id.
func (r *Runner) MakeTree(ctx context.Context, lines []submodule.TreeLine) (string, error) {
	res, err := r.RunInput(ctx, submodule.FormatTree(lines), "mktree", "-z")
	if err != nil {
		return "", err
	}
	return expectHash(res.Stdout, "mktree")
}

// CommitTreeOptions describes a commit to create with commit-tree.
type CommitTreeOptions struct {
	Tree    string
	Parents []string
	Message string

	// Sign requests a GPG signature. KeyID selects the key; empty uses the
	// committer's default key.
	Sign  bool
	KeyID string
}

// CommitTree creates a commit object and returns its id.
func (r *Runner) CommitTree(ctx context.Context, opts CommitTreeOptions) (string, error) {
	args := []string{"commit-tree"}
	for _, p := range opts.Parents {
		args = append(args, "-p", p)
	}
	if opts.Sign {
		args = append(args, "-S"+opts.KeyID)
	}
	args = append(args, "-F", "-", opts.Tree)

	res, err := r.RunInput(ctx, opts.Message, args...)
	if err != nil {
		return "", err
	}
	return expectHash(res.Stdout, "commit-tree")
}

// UpdateRef points ref at sha.
func (r *Runner) UpdateRef(ctx context.Context, ref, sha string) error {
	_, err := r.Run(ctx, "update-ref", ref, sha)
	return err
}

// Reset moves the current branch and index to sha, leaving the working tree.
func (r *Runner) Reset(ctx context.Context, sha string) error {
	_, err := r.Run(ctx, "reset", "--quiet", sha)
	return err
}

// Push pushes the current branch to its upstream.
func (r *Runner) Push(ctx context.Context) error {
	_, err := r.Run(ctx, "push")
	return err
}

// RemoteURL returns the fetch URL of a named remote.
func (r *Runner) RemoteURL(ctx context.Context, name string) (string, error) {
	res, err := r.Run(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func expectHash(out, op string) (string, error) {
	sha := strings.TrimSpace(out)
	if !plumbing.IsHash(sha) {
		return "", fmt.Errorf("%s: unexpected output %q", op, out)
	}
	return sha, nil
}
