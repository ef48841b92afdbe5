package submodule

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// TreeLine is one entry of a flat tree listing:
// "<mode> SP <type> SP <sha> TAB <path>".
type TreeLine struct {
	Mode string
	Type string
	SHA  string
	Path string
}

// ParseTreeLine parses a single listing line. Anything that does not split
// into exactly mode, type, sha, and path is an error.
func ParseTreeLine(line string) (TreeLine, error) {
	meta, path, ok := strings.Cut(line, "\t")
	if !ok || path == "" {
		return TreeLine{}, fmt.Errorf("malformed tree line %q: missing path", line)
	}
	fields := strings.Split(meta, " ")
	if len(fields) != 3 {
		return TreeLine{}, fmt.Errorf("malformed tree line %q: want 3 fields before path, got %d", line, len(fields))
	}
	if _, err := filemode.New(fields[0]); err != nil {
		return TreeLine{}, fmt.Errorf("malformed tree line %q: %w", line, err)
	}
	if !plumbing.IsHash(fields[2]) {
		return TreeLine{}, fmt.Errorf("malformed tree line %q: bad object id %q", line, fields[2])
	}
	return TreeLine{Mode: fields[0], Type: fields[1], SHA: fields[2], Path: path}, nil
}

// ParseTree parses a NUL-terminated listing as produced by "git ls-tree -z".
func ParseTree(listing string) ([]TreeLine, error) {
	var lines []TreeLine
	for _, raw := range strings.Split(listing, "\x00") {
		if raw == "" {
			continue
		}
		l, err := ParseTreeLine(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// FormatTree renders lines in the NUL-terminated form "git mktree -z" reads.
func FormatTree(lines []TreeLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.String())
		b.WriteByte(0)
	}
	return b.String()
}

func (l TreeLine) String() string {
	return fmt.Sprintf("%s %s %s\t%s", l.Mode, l.Type, l.SHA, l.Path)
}

// IsGitlink reports whether the line records a submodule commit.
func (l TreeLine) IsGitlink() bool {
	m, err := filemode.New(l.Mode)
	return err == nil && m == filemode.Submodule && l.Type == "commit"
}

// Gitlinks extracts the submodule entries of a listing, in order.
func Gitlinks(lines []TreeLine) []Entry {
	var entries []Entry
	for _, l := range lines {
		if l.IsGitlink() {
			entries = append(entries, Entry{Path: l.Path, SHA: l.SHA})
		}
	}
	return entries
}
