package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/bianoble/update-submodules/internal/git"
	"github.com/bianoble/update-submodules/internal/manifest"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// RemoteResolver resolves refs against a submodule's manifest URL by listing
// the remote's refs. Nothing is cloned or fetched.
type RemoteResolver struct {
	// Runner, when set, retries a failed listing with "git ls-remote" so
	// that the user's credential helpers and ssh configuration apply.
	Runner *git.Runner
}

func (r *RemoteResolver) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	if entry.URL == "" {
		return "", manifest.MissingEntry(entry)
	}
	refs, err := r.listRefs(ctx, entry.URL)
	if err != nil {
		return "", &SourceError{Source: entry.Path, Operation: "ls-remote " + entry.URL, Err: err, Hint: "check the submodule url and credentials"}
	}
	sha, ok := MatchRef(refs, ref)
	if !ok {
		return "", &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: fmt.Errorf("no ref %q on %s", ref, entry.URL)}
	}
	return sha, nil
}

func (r *RemoteResolver) listRefs(ctx context.Context, url string) (map[string]string, error) {
	rem := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	list, err := rem.ListContext(ctx, &gogit.ListOptions{PeelingOption: gogit.AppendPeeled})
	if err != nil {
		if r.Runner == nil {
			return nil, err
		}
		slog.Debug("go-git listing failed, falling back to git ls-remote", slog.String("url", url), slog.String("error", err.Error()))
		return r.Runner.LsRemote(ctx, url)
	}

	refs := make(map[string]string, len(list))
	symbolic := make(map[string]string)
	for _, ref := range list {
		switch ref.Type() {
		case plumbing.HashReference:
			refs[ref.Name().String()] = ref.Hash().String()
		case plumbing.SymbolicReference:
			symbolic[ref.Name().String()] = ref.Target().String()
		}
	}
	for name, target := range symbolic {
		if sha, ok := refs[target]; ok {
			refs[name] = sha
		}
	}
	return refs, nil
}

// MatchRef picks the commit for ref out of a remote ref listing. "HEAD" and
// full "refs/..." names match exactly; other names are tried as a branch,
// then as a tag. A peeled tag entry wins over the tag object itself.
func MatchRef(refs map[string]string, ref string) (string, bool) {
	var candidates []string
	if ref == "HEAD" || strings.HasPrefix(ref, "refs/") {
		candidates = []string{ref}
	} else {
		candidates = []string{"refs/heads/" + ref, "refs/tags/" + ref}
	}
	for _, name := range candidates {
		if sha, ok := refs[name+"^{}"]; ok {
			return sha, true
		}
		if sha, ok := refs[name]; ok {
			return sha, true
		}
	}
	return "", false
}
