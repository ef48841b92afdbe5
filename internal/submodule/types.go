// Package submodule holds the data model shared by both backends: gitlink
// entries, resolution results, change sets, and raw tree listings.
package submodule

import "strings"

// Entry is a gitlink found in the superproject's top-level tree.
type Entry struct {
	Path string
	SHA  string
	URL  string // from .gitmodules; empty when the manifest has no entry
}

// Resolved pairs an entry with the commit its ref resolved to.
type Resolved struct {
	Entry
	Ref    string
	NewSHA string
}

// Change records a gitlink that moves from Before to After.
type Change struct {
	Path   string
	URL    string
	Before string
	After  string
}

// ChangeSet is an ordered list of changes, in tree order.
type ChangeSet []Change

// Empty reports whether nothing would change.
func (c ChangeSet) Empty() bool {
	return len(c) == 0
}

// Paths returns the changed paths in order.
func (c ChangeSet) Paths() []string {
	paths := make([]string, 0, len(c))
	for _, ch := range c {
		paths = append(paths, ch.Path)
	}
	return paths
}

// Snapshot is a single observation of the superproject: the commit that was
// read, its root tree, and the gitlinks in that tree.
type Snapshot struct {
	Head    string
	Tree    string
	Entries []Entry

	// Lines is the full top-level listing. Only the local backend fills it.
	Lines []TreeLine
}

// Entry looks up a gitlink by path.
func (s *Snapshot) Entry(path string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Short abbreviates a commit SHA to seven characters.
func Short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// NormalizeSHA lowercases a hex object id.
func NormalizeSHA(sha string) string {
	return strings.ToLower(strings.TrimSpace(sha))
}
