package engine

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bianoble/update-submodules/internal/submodule"
)

// ComposeMessage builds the commit message: the given paragraphs, the
// contents of the given files, or a generated summary of changes.
// Paragraphs are separated by a blank line.
func ComposeMessage(changes submodule.ChangeSet, opts MessageOptions) (string, error) {
	switch {
	case len(opts.Files) > 0:
		paragraphs := make([]string, 0, len(opts.Files))
		for _, f := range opts.Files {
			text, err := readMessageFile(f, opts.Stdin)
			if err != nil {
				return "", err
			}
			paragraphs = append(paragraphs, strings.TrimRight(text, "\n"))
		}
		return strings.Join(paragraphs, "\n\n"), nil
	case len(opts.Messages) > 0:
		return strings.Join(opts.Messages, "\n\n"), nil
	default:
		return DefaultMessage(changes), nil
	}
}

// DefaultMessage lists the changed paths in the subject and one
// "path: old → new" line per change in the body.
func DefaultMessage(changes submodule.ChangeSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update submodules: %s\n", strings.Join(changes.Paths(), ", "))
	for _, c := range changes {
		fmt.Fprintf(&b, "\n- %s: %s → %s", c.Path, submodule.Short(c.Before), submodule.Short(c.After))
	}
	return b.String()
}

func readMessageFile(name string, stdin io.Reader) (string, error) {
	if name == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading message from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("reading message file: %w", err)
	}
	return string(data), nil
}
