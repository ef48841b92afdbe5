// Package manifest reads .gitmodules and ties its entries to the gitlinks of
// a tree.
package manifest

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/config"

	"github.com/bianoble/update-submodules/internal/submodule"
)

// FileName is the manifest's path at the root of the superproject.
const FileName = ".gitmodules"

// Manifest is a parsed .gitmodules, indexed by submodule path.
type Manifest struct {
	byPath map[string]*config.Submodule
}

// Parse decodes .gitmodules content.
func Parse(data []byte) (*Manifest, error) {
	modules := config.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	m := &Manifest{byPath: make(map[string]*config.Submodule, len(modules.Submodules))}
	for name, sub := range modules.Submodules {
		if err := sub.Validate(); err != nil {
			return nil, fmt.Errorf("parsing %s: submodule %q: %w", FileName, name, err)
		}
		m.byPath[sub.Path] = sub
	}
	return m, nil
}

// Empty returns a manifest with no entries.
func Empty() *Manifest {
	return &Manifest{byPath: map[string]*config.Submodule{}}
}

// URL returns the configured URL for the submodule at path.
func (m *Manifest) URL(path string) (string, bool) {
	sub, ok := m.byPath[path]
	if !ok {
		return "", false
	}
	return sub.URL, true
}

// Paths returns the submodule paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.byPath))
	for p := range m.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Attach copies manifest URLs onto entries. Every manifest path must exist
// as a gitlink in entries. A gitlink without a manifest entry keeps an empty
// URL; whether that matters is up to whoever needs the URL.
func Attach(entries []submodule.Entry, m *Manifest) ([]submodule.Entry, error) {
	inTree := make(map[string]bool, len(entries))
	out := make([]submodule.Entry, len(entries))
	for i, e := range entries {
		inTree[e.Path] = true
		out[i] = e
		if url, ok := m.URL(e.Path); ok {
			out[i].URL = url
		}
	}

	for _, p := range m.Paths() {
		if !inTree[p] {
			return nil, &ConsistencyError{Path: p, Reason: fmt.Sprintf("listed in %s but not a gitlink in the tree", FileName)}
		}
	}
	return out, nil
}

// ConsistencyError reports a disagreement between the tree and .gitmodules.
type ConsistencyError struct {
	Path   string
	SHA    string
	Reason string
}

func (e *ConsistencyError) Error() string {
	if e.SHA != "" {
		return fmt.Sprintf("submodule %s (%s): %s", e.Path, submodule.Short(e.SHA), e.Reason)
	}
	return fmt.Sprintf("submodule %s: %s", e.Path, e.Reason)
}

// MissingEntry is the error for a gitlink that needs a manifest URL but has none.
func MissingEntry(e submodule.Entry) error {
	return &ConsistencyError{Path: e.Path, SHA: e.SHA, Reason: fmt.Sprintf("gitlink has no entry in %s", FileName)}
}
