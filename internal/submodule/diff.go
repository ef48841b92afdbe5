package submodule

import "fmt"

// Diff returns the entries whose resolved commit differs from the recorded
// one. resolved must already be in tree order; the result keeps that order.
func Diff(resolved []Resolved) ChangeSet {
	var changes ChangeSet
	for _, r := range resolved {
		if r.NewSHA == r.SHA {
			continue
		}
		changes = append(changes, Change{
			Path:   r.Path,
			URL:    r.URL,
			Before: r.SHA,
			After:  r.NewSHA,
		})
	}
	return changes
}

// RewriteTree returns a copy of lines with the gitlinks named in changes
// pointed at their new commits. Every other line is passed through
// unchanged. A change whose path is not a gitlink in lines is an error.
func RewriteTree(lines []TreeLine, changes ChangeSet) ([]TreeLine, error) {
	byPath := make(map[string]string, len(changes))
	for _, c := range changes {
		byPath[c.Path] = c.After
	}

	out := make([]TreeLine, len(lines))
	applied := 0
	for i, l := range lines {
		out[i] = l
		sha, ok := byPath[l.Path]
		if !ok || !l.IsGitlink() {
			continue
		}
		out[i].SHA = sha
		applied++
	}

	if applied != len(byPath) {
		for _, c := range changes {
			if !hasGitlink(lines, c.Path) {
				return nil, fmt.Errorf("no gitlink at %q in tree", c.Path)
			}
		}
	}
	return out, nil
}

func hasGitlink(lines []TreeLine, path string) bool {
	for _, l := range lines {
		if l.Path == path && l.IsGitlink() {
			return true
		}
	}
	return false
}
