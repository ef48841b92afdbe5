package git

import (
	"bufio"
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// LsRemote lists the refs of a remote repository without fetching objects.
// The result maps ref names (including peeled "^{}" entries) to object ids.
func (r *Runner) LsRemote(ctx context.Context, url string) (map[string]string, error) {
	res, err := r.Run(ctx, "ls-remote", url)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(res.Stdout))
	for scanner.Scan() {
		sha, name, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || !plumbing.IsHash(sha) {
			continue
		}
		refs[name] = sha
	}
	return refs, scanner.Err()
}
