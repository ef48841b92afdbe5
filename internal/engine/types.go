package engine

import (
	"context"

	"github.com/bianoble/update-submodules/internal/source"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// Backend is where the superproject lives: a local repository driven through
// git plumbing, or a hosted repository driven through an API. The engine
// only talks to this interface.
type Backend interface {
	source.Resolver

	// Name identifies the backend in logs and results.
	Name() string

	// Snapshot reads the current head commit, its root tree, and its
	// gitlinks with manifest URLs attached.
	Snapshot(ctx context.Context) (*submodule.Snapshot, error)

	// WriteTree creates a tree equal to the snapshot's with changes applied.
	WriteTree(ctx context.Context, snap *submodule.Snapshot, changes submodule.ChangeSet) (string, error)

	// WriteCommit creates a commit object.
	WriteCommit(ctx context.Context, spec CommitSpec) (string, error)

	// UpdateBranch points the target branch at commit.
	UpdateBranch(ctx context.Context, commit string) (BranchUpdate, error)
}

// CommitSpec describes a commit to create.
type CommitSpec struct {
	Tree    string
	Parents []string
	Message string
	Sign    SignOptions
}

// BranchUpdate describes how the branch was moved.
type BranchUpdate struct {
	Ref    string // e.g. "HEAD" or "refs/heads/main"
	Method string // "reset", "update-ref", "api", or "skipped"
	Pushed bool
}

// Result holds the outcome of an update.
type Result struct {
	Backend string
	Head    string // commit the snapshot was taken from
	Changes submodule.ChangeSet
	Message string
	Tree    string
	Commit  string
	Branch  BranchUpdate

	// NoOp is set when every submodule was already at its target.
	NoOp   bool
	DryRun bool
}
