// Package submodules provides the public Go library API for update-submodules.
//
// An Updater moves any number of submodules to new refs and records the
// move as a single commit, either in a repository on disk or in a GitHub
// repository through its API.
//
// # Basic Usage
//
//	u, err := submodules.NewLocal(ctx, submodules.LocalOptions{Dir: "."})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Move libs/core to main and every other submodule to its v2 tag.
//	result, err := u.Update(ctx, []string{"libs/core=main", "v2"}, submodules.UpdateOptions{})
//
//	u, err = submodules.NewGitHub(ctx, submodules.GitHubOptions{
//	    Repository: "acme/super",
//	    Token:      os.Getenv("GITHUB_TOKEN"),
//	})
package submodules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bianoble/update-submodules/internal/backend/local"
	"github.com/bianoble/update-submodules/internal/backend/remote"
	"github.com/bianoble/update-submodules/internal/engine"
	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/refmap"
)

// LocalOptions configures an Updater over a repository on disk.
type LocalOptions struct {
	// Dir is any directory inside the repository. Default: ".".
	Dir string

	// NoReset leaves HEAD where it is; the commit is created but unreferenced.
	NoReset bool

	// Push runs "git push" after HEAD has moved.
	Push bool
}

// GitHubOptions configures an Updater over a GitHub repository.
type GitHubOptions struct {
	// Repository is "owner/name" (required).
	Repository string

	// Branch to update. Empty means the repository's default branch.
	Branch string

	// Token authenticates API calls. Empty means anonymous.
	Token string

	// APIURL points at a GitHub Enterprise API root. Empty means github.com.
	APIURL string
}

// UpdateOptions configures one update.
type UpdateOptions struct {
	// Messages are commit message paragraphs. MessageFiles name files whose
	// contents are used instead; "-" reads Stdin. With neither, a message
	// listing every change is generated.
	Messages     []string
	MessageFiles []string
	Stdin        io.Reader

	// Parents of the new commit. Empty means the current head.
	Parents []string

	// Sign signs the commit with the committer's key; SignKey names a key.
	// Only the local backend can sign.
	Sign    bool
	SignKey string

	// Jobs bounds concurrent ref resolution. 0 means one per CPU.
	Jobs int

	// DryRun computes the change set and message without writing anything.
	DryRun bool
}

// Validate reports conflicting or malformed options as a *ConfigError
// without touching any repository.
func (o UpdateOptions) Validate() error {
	return o.engineOptions().Validate()
}

func (o UpdateOptions) engineOptions() engine.Options {
	return engine.Options{
		Message: engine.MessageOptions{
			Messages: o.Messages,
			Files:    o.MessageFiles,
			Stdin:    o.Stdin,
		},
		Parents: o.Parents,
		Sign:    engine.SignOptions{Default: o.Sign, KeyID: o.SignKey},
		Jobs:    o.Jobs,
		DryRun:  o.DryRun,
	}
}

// Updater updates the submodules of one repository.
type Updater struct {
	backend engine.Backend

	// fallback applies to unassigned submodules when refs carry none.
	fallback string
	origin   func(ctx context.Context) (Repo, error)

	// Logger receives progress. Nil means slog.Default().
	Logger *slog.Logger
}

// NewLocal opens the repository containing opts.Dir.
func NewLocal(ctx context.Context, opts LocalOptions) (*Updater, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	b, err := local.Open(ctx, dir, local.Options{NoReset: opts.NoReset, Push: opts.Push})
	if err != nil {
		return nil, err
	}
	return &Updater{backend: b, origin: b.OriginRepo}, nil
}

// NewGitHub connects to opts.Repository. Submodules without an assignment
// move to their repository's HEAD unless Update is given a bare ref.
func NewGitHub(ctx context.Context, opts GitHubOptions) (*Updater, error) {
	repo, err := ghapi.ParseRepo(opts.Repository)
	if err != nil {
		return nil, err
	}
	client, err := ghapi.NewClient(ctx, opts.Token, opts.APIURL)
	if err != nil {
		return nil, err
	}
	b, err := remote.New(ctx, client, remote.Options{Repository: repo, Branch: opts.Branch})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", repo, err)
	}
	return &Updater{
		backend:  b,
		fallback: "HEAD",
		origin: func(context.Context) (Repo, error) {
			return b.Repository(), nil
		},
	}, nil
}

// Backend names the backend in use: "local" or "github".
func (u *Updater) Backend() string {
	return u.backend.Name()
}

// Repository returns the GitHub repository being updated: the API target,
// or the "origin" remote of a local repository.
func (u *Updater) Repository(ctx context.Context) (Repo, error) {
	if u.origin == nil {
		return Repo{}, errors.New("repository unknown")
	}
	return u.origin(ctx)
}

// Update parses refs ("path=ref", or a bare ref for every other submodule)
// and moves the submodules accordingly. A result with NoOp set means every
// submodule was already at its target and nothing was written.
func (u *Updater) Update(ctx context.Context, refs []string, opts UpdateOptions) (*Result, error) {
	m, err := refmap.Parse(refs)
	if err != nil {
		return nil, err
	}
	return u.UpdateMap(ctx, m, opts)
}

// UpdateMap is Update with an already parsed RefMap.
func (u *Updater) UpdateMap(ctx context.Context, refs RefMap, opts UpdateOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if u.fallback != "" {
		refs = refs.WithDefault(u.fallback)
	}
	if refs.Empty() {
		u.logger().Info("no refs given, nothing to update")
		return &Result{Backend: u.backend.Name(), NoOp: true, DryRun: opts.DryRun}, nil
	}

	eng := &engine.Engine{Backend: u.backend, Logger: u.Logger}
	return eng.Update(ctx, refs, opts.engineOptions())
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}
