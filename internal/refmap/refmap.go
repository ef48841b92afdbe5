// Package refmap maps submodule paths to the refs they should move to.
package refmap

import (
	"fmt"
	"strings"
)

// Wildcard is the path key that sets the fallback ref.
const Wildcard = "*"

// Pair is one explicit path=ref assignment.
type Pair struct {
	Path string
	Ref  string
}

// RefMap is an ordered set of path assignments plus an optional fallback
// applied to every path without an explicit entry. The zero value is empty.
type RefMap struct {
	pairs    []Pair
	index    map[string]int
	fallback string
}

// Parse builds a RefMap from "path=ref" strings. A string with no "=" (or
// the "*" path) sets the fallback. A later assignment for the same path
// replaces the earlier one.
func Parse(args []string) (RefMap, error) {
	var m RefMap
	for _, arg := range args {
		path, ref, explicit := strings.Cut(arg, "=")
		if !explicit {
			path, ref = Wildcard, arg
		}
		path = strings.Trim(strings.TrimSpace(path), "/")
		ref = strings.TrimSpace(ref)

		switch {
		case ref == "":
			return RefMap{}, fmt.Errorf("invalid ref %q: empty ref", arg)
		case path == "" && explicit:
			return RefMap{}, fmt.Errorf("invalid ref %q: empty path", arg)
		case path == Wildcard:
			if m.fallback != "" && m.fallback != ref {
				return RefMap{}, fmt.Errorf("conflicting fallback refs %q and %q", m.fallback, ref)
			}
			m.fallback = ref
		default:
			m.set(path, ref)
		}
	}
	return m, nil
}

func (m *RefMap) set(path, ref string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[path]; ok {
		m.pairs[i].Ref = ref
		return
	}
	m.index[path] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Path: path, Ref: ref})
}

// WithDefault returns a copy whose fallback is ref unless one was already set.
func (m RefMap) WithDefault(ref string) RefMap {
	if m.fallback == "" {
		m.fallback = ref
	}
	return m
}

// Merge returns base overlaid with m: m's assignments and fallback win.
func (m RefMap) Merge(base RefMap) RefMap {
	var out RefMap
	for _, p := range base.pairs {
		out.set(p.Path, p.Ref)
	}
	for _, p := range m.pairs {
		out.set(p.Path, p.Ref)
	}
	out.fallback = base.fallback
	if m.fallback != "" {
		out.fallback = m.fallback
	}
	return out
}

// Lookup returns the ref for path: its explicit entry, else the fallback.
// ok is false when neither applies.
func (m RefMap) Lookup(path string) (ref string, ok bool) {
	if i, found := m.index[path]; found {
		return m.pairs[i].Ref, true
	}
	if m.fallback != "" {
		return m.fallback, true
	}
	return "", false
}

// Pairs returns the explicit assignments in the order they were given.
func (m RefMap) Pairs() []Pair {
	return append([]Pair(nil), m.pairs...)
}

// Fallback returns the fallback ref, if any.
func (m RefMap) Fallback() (string, bool) {
	return m.fallback, m.fallback != ""
}

// Empty reports whether the map would assign no ref to any path.
func (m RefMap) Empty() bool {
	return len(m.pairs) == 0 && m.fallback == ""
}

// Strings renders the map back into its argument form.
func (m RefMap) Strings() []string {
	out := make([]string, 0, len(m.pairs)+1)
	for _, p := range m.pairs {
		out = append(out, p.Path+"="+p.Ref)
	}
	if m.fallback != "" {
		out = append(out, m.fallback)
	}
	return out
}
