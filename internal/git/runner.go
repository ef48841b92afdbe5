// Package git drives the git command line for the local backend: reading
// the superproject tree, writing trees and commits, and moving HEAD.
package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner runs git commands in a repository directory.
type Runner struct {
	// Path to the git executable.
	gitPath string

	// Dir is the directory the commands are run in.
	Dir string
}

// NewRunner returns a Runner for dir, locating git on PATH.
func NewRunner(dir string) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("no 'git' program on path: %w", err)
	}
	return &Runner{gitPath: p, Dir: dir}, nil
}

// RunResult holds the captured output of a git command.
type RunResult struct {
	Stdout string
	Stderr string
}

// Run runs a git command. Omit the leading "git".
func (r *Runner) Run(ctx context.Context, args ...string) (RunResult, error) {
	return r.run(ctx, "", args...)
}

// RunInput runs a git command with stdin fed from input.
func (r *Runner) RunInput(ctx context.Context, input string, args ...string) (RunResult, error) {
	return r.run(ctx, input, args...)
}

func (r *Runner) run(ctx context.Context, input string, args ...string) (RunResult, error) {
	slog.Debug("running git", slog.String("dir", r.Dir), slog.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return RunResult{}, &ExecError{
			Args:   args,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}
	return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// ExecError is returned when a git command exits unsuccessfully.
type ExecError struct {
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
