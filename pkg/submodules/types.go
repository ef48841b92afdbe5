package submodules

import (
	"github.com/bianoble/update-submodules/internal/engine"
	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/refmap"
	"github.com/bianoble/update-submodules/internal/source"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// Type aliases re-export internal types as the public API.
// Users import "github.com/bianoble/update-submodules/pkg/submodules" and use
// submodules.Result, submodules.ChangeSet, etc.

type Result = engine.Result
type BranchUpdate = engine.BranchUpdate
type ConfigError = engine.ConfigError
type Change = submodule.Change
type ChangeSet = submodule.ChangeSet
type ResolveError = source.ResolveError
type SourceError = source.SourceError
type RefMap = refmap.RefMap
type Repo = ghapi.Repo

// ParseRefs parses "path=ref" and bare ref arguments into a RefMap.
func ParseRefs(args []string) (RefMap, error) {
	return refmap.Parse(args)
}

// ParseRepo parses an "owner/name" repository.
func ParseRepo(s string) (Repo, error) {
	return ghapi.ParseRepo(s)
}
