package engine

import (
	"fmt"
	"io"
	"strings"
)

// MessageOptions selects where the commit message comes from. Messages and
// Files are mutually exclusive; with neither, a message is generated from
// the change set.
type MessageOptions struct {
	Messages []string
	Files    []string // "-" reads Stdin

	Stdin io.Reader
}

// SignOptions requests a signed commit. Default signs with the committer's
// key; KeyID names a key. At most one may be set.
type SignOptions struct {
	Default bool
	KeyID   string
}

// Enabled reports whether any signing was requested.
func (s SignOptions) Enabled() bool {
	return s.Default || s.KeyID != ""
}

// Options configures an update.
type Options struct {
	Message MessageOptions
	Parents []string // empty means the snapshot head
	Sign    SignOptions
	Jobs    int // 0 means one per CPU
	DryRun  bool
}

// Validate checks option combinations that need no I/O.
func (o Options) Validate() error {
	var problems []string
	if len(o.Message.Files) > 0 && len(o.Message.Messages) > 0 {
		problems = append(problems, "pass -F or -m/--message, not both")
	}
	stdinUses := 0
	for _, f := range o.Message.Files {
		if f == "-" {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		problems = append(problems, "-F - may be given only once")
	}
	if o.Sign.Default && o.Sign.KeyID != "" {
		problems = append(problems, "pass -S/--gpg-sign or --gpg-sign-as, not both")
	}
	if o.Jobs < 0 {
		problems = append(problems, fmt.Sprintf("invalid job count %d", o.Jobs))
	}
	for _, p := range o.Parents {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "empty parent")
		}
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// ConfigError is an invalid combination of inputs, detected before any
// repository object is read or written.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid options: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid options:\n  - %s", strings.Join(e.Problems, "\n  - "))
}
