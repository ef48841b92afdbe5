package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bianoble/update-submodules/internal/sandbox"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// CheckoutResolver resolves refs inside submodule checkouts under Root.
type CheckoutResolver struct {
	Root string
}

// CheckedOut reports whether the submodule at path has a checkout, meaning
// its directory exists under root and holds a .git file or directory.
func CheckedOut(root, path string) bool {
	dir, err := sandbox.ValidatePath(root, path)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func (c *CheckoutResolver) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := sandbox.ValidatePath(c.Root, entry.Path)
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: err}
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "open checkout", Err: err, Hint: "run 'git submodule update --init' or remove the directory"}
	}
	h, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: fmt.Errorf("in checkout %s: %w", dir, err), Hint: "fetch the submodule or pass a full sha"}
	}
	return h.String(), nil
}
