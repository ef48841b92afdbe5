// Package source resolves submodule refs to commit ids.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bianoble/update-submodules/internal/submodule"
)

// Resolver resolves a symbolic ref for one submodule to a full commit id.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, entry submodule.Entry, ref string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, entry submodule.Entry, ref string) (string, error) {
	return f(ctx, entry, ref)
}

// SourceError represents a failure resolving one submodule.
type SourceError struct {
	Source    string
	Operation string
	Err       error
	Hint      string
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.Source, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ResolveError collects every failed resolution of a run.
type ResolveError struct {
	Failures []*SourceError
}

func (e *ResolveError) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, f.Error())
	}
	return fmt.Sprintf("%d submodule(s) failed to resolve:\n  - %s", len(e.Failures), strings.Join(lines, "\n  - "))
}

func (e *ResolveError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

func asSourceError(entry submodule.Entry, ref string, err error) *SourceError {
	var se *SourceError
	if errors.As(err, &se) {
		return se
	}
	return &SourceError{Source: entry.Path, Operation: "resolve " + ref, Err: err}
}
