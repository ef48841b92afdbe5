package source

import (
	"context"

	"github.com/bianoble/update-submodules/internal/submodule"
)

// LocalResolver resolves inside the submodule's checkout when there is one
// and against its remote otherwise.
type LocalResolver struct {
	Root     string
	Checkout Resolver
	Remote   Resolver
}

// NewLocalResolver returns a LocalResolver for the working tree at root.
// An empty root (a bare repository) never has checkouts.
func NewLocalResolver(root string, remote *RemoteResolver) *LocalResolver {
	return &LocalResolver{
		Root:     root,
		Checkout: &CheckoutResolver{Root: root},
		Remote:   remote,
	}
}

func (l *LocalResolver) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	if l.Root != "" && CheckedOut(l.Root, entry.Path) {
		return l.Checkout.Resolve(ctx, entry, ref)
	}
	return l.Remote.Resolve(ctx, entry, ref)
}
