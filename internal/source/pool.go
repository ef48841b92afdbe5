package source

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/sync/errgroup"

	"github.com/bianoble/update-submodules/internal/refmap"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// ResolveAll resolves the ref of every entry that refs assigns one to, using
// at most jobs concurrent resolutions (0 means one per CPU). Full object ids
// are taken as-is without calling r.
//
// The result is in entry order and omits entries without a ref. If any
// resolution fails, every other resolution still runs to completion and
// the failures are returned together as a *ResolveError.
func ResolveAll(ctx context.Context, r Resolver, entries []submodule.Entry, refs refmap.RefMap, jobs int) ([]submodule.Resolved, error) {
	if jobs < 0 {
		return nil, fmt.Errorf("invalid job count %d", jobs)
	}
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	type slot struct {
		res submodule.Resolved
		ok  bool
		err *SourceError
	}
	slots := make([]slot, len(entries))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, entry := range entries {
		ref, ok := refs.Lookup(entry.Path)
		if !ok {
			continue
		}
		if submodule.Classify(ref) == submodule.ExplicitSHA {
			slots[i] = slot{res: submodule.Resolved{Entry: entry, Ref: ref, NewSHA: submodule.NormalizeSHA(ref)}, ok: true}
			continue
		}
		g.Go(func() error {
			sha, err := r.Resolve(ctx, entry, ref)
			if err == nil && !plumbing.IsHash(sha) {
				err = fmt.Errorf("resolver returned invalid object id %q", sha)
			}
			if err != nil {
				slots[i] = slot{err: asSourceError(entry, ref, err)}
				return nil
			}
			sha = submodule.NormalizeSHA(sha)
			slog.Info("resolved submodule", slog.String("path", entry.Path), slog.String("ref", ref), slog.String("sha", sha))
			slots[i] = slot{res: submodule.Resolved{Entry: entry, Ref: ref, NewSHA: sha}, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	var (
		resolved []submodule.Resolved
		failures []*SourceError
	)
	for _, s := range slots {
		switch {
		case s.err != nil:
			failures = append(failures, s.err)
		case s.ok:
			resolved = append(resolved, s.res)
		}
	}
	if len(failures) > 0 {
		return nil, &ResolveError{Failures: failures}
	}
	return resolved, nil
}
