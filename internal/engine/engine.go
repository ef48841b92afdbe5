// Package engine runs a submodule update against any Backend: snapshot,
// resolve, diff, then tree, commit and branch update.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bianoble/update-submodules/internal/refmap"
	"github.com/bianoble/update-submodules/internal/source"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// Engine drives one backend.
type Engine struct {
	Backend Backend
	Logger  *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Update moves the submodules named by refs and records the move as a single
// commit on the backend's branch. Nothing is written unless every ref
// resolves. When no gitlink would change, Update returns a NoOp result
// without writing anything. If only the branch update fails, the result
// carrying the dangling commit is returned with the error.
func (e *Engine) Update(ctx context.Context, refs refmap.RefMap, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := e.logger().With(slog.String("backend", e.Backend.Name()))

	snap, err := e.Backend.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading current tree: %w", err)
	}
	log.Debug("read snapshot", slog.String("head", snap.Head), slog.String("tree", snap.Tree), slog.Int("gitlinks", len(snap.Entries)))

	if err := checkPaths(snap, refs); err != nil {
		return nil, err
	}

	resolved, err := source.ResolveAll(ctx, e.Backend, snap.Entries, refs, opts.Jobs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Backend: e.Backend.Name(),
		Head:    snap.Head,
		Changes: submodule.Diff(resolved),
		DryRun:  opts.DryRun,
	}
	if result.Changes.Empty() {
		log.Info("submodules already up to date", slog.Int("checked", len(resolved)))
		result.NoOp = true
		return result, nil
	}

	msg, err := ComposeMessage(result.Changes, opts.Message)
	if err != nil {
		return nil, err
	}
	result.Message = msg
	log.Info("preparing commit", slog.String("message", msg))

	if opts.DryRun {
		return result, nil
	}

	result.Tree, err = e.Backend.WriteTree(ctx, snap, result.Changes)
	if err != nil {
		return nil, fmt.Errorf("writing tree: %w", err)
	}
	log.Info("new tree", slog.String("sha", result.Tree))

	parents := opts.Parents
	if len(parents) == 0 {
		parents = []string{snap.Head}
	}
	result.Commit, err = e.Backend.WriteCommit(ctx, CommitSpec{
		Tree:    result.Tree,
		Parents: parents,
		Message: msg,
		Sign:    opts.Sign,
	})
	if err != nil {
		return nil, fmt.Errorf("writing commit: %w", err)
	}
	log.Info("new commit", slog.String("sha", result.Commit))

	result.Branch, err = e.Backend.UpdateBranch(ctx, result.Commit)
	if err != nil {
		return result, fmt.Errorf("updating branch to %s: %w", result.Commit, err)
	}
	log.Info("updated branch",
		slog.String("ref", result.Branch.Ref),
		slog.String("method", result.Branch.Method),
		slog.String("sha", result.Commit),
		slog.Bool("pushed", result.Branch.Pushed),
	)
	return result, nil
}

// checkPaths rejects explicit assignments to paths that are not gitlinks.
func checkPaths(snap *submodule.Snapshot, refs refmap.RefMap) error {
	var problems []string
	for _, p := range refs.Pairs() {
		if _, ok := snap.Entry(p.Path); !ok {
			problems = append(problems, fmt.Sprintf("no submodule at %q", p.Path))
		}
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
