package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/update-submodules/internal/config"
	"github.com/bianoble/update-submodules/internal/report"
	"github.com/bianoble/update-submodules/internal/submodule"
	"github.com/bianoble/update-submodules/pkg/submodules"
)

// updateFlags are the flags shared by the local and github commands.
type updateFlags struct {
	files    []string
	messages []string
	parents  []string
	jobs     int
	dryRun   bool
	output   string
	summary  string
}

func addUpdateFlags(cmd *cobra.Command, f *updateFlags) {
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.files, "file", "F", nil, `take the commit message from a file ("-" for stdin); repeatable`)
	fl.StringArrayVarP(&f.messages, "message", "m", nil, "commit message paragraph; repeatable")
	fl.StringArrayVarP(&f.parents, "parent", "p", nil, "parent of the new commit (default: current head); repeatable")
	fl.IntVarP(&f.jobs, "num-jobs", "j", 0, "parallel ref lookups (0 = one per CPU)")
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "show what would change without writing anything")
	fl.StringVarP(&f.output, "github-output", "o", "", `file to write "commit=<sha>" to ("-" for stdout, default $GITHUB_OUTPUT)`)
	fl.StringVarP(&f.summary, "github-step-summary", "g", "", `file to append a markdown summary to ("-" for stdout, default $GITHUB_STEP_SUMMARY)`)
}

// loadConfig reads and merges every config layer that exists. A missing
// project config is not an error.
func loadConfig() (*config.Config, error) {
	cfg, layers, err := config.LoadLayered(config.DiscoverOptions{
		ProjectPath: configPath,
		NoInherit:   config.NoInherit(os.Getenv),
	})
	for _, l := range layers {
		if l.Loaded {
			slog.Debug("loaded config", slog.String("level", string(l.Level)), slog.String("path", l.Path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// refsFromArgs overlays the command line refs on the configured ones.
func refsFromArgs(cfg *config.Config, args []string) (submodules.RefMap, error) {
	base, err := cfg.RefMap()
	if err != nil {
		return submodules.RefMap{}, fmt.Errorf("config refs: %w", err)
	}
	m, err := submodules.ParseRefs(args)
	if err != nil {
		return submodules.RefMap{}, err
	}
	return m.Merge(base), nil
}

// updateOptions builds the library options from flags, falling back to the
// config file for anything not given on the command line.
func updateOptions(cmd *cobra.Command, f *updateFlags, cfg *config.Config) submodules.UpdateOptions {
	opts := submodules.UpdateOptions{
		Messages:     f.messages,
		MessageFiles: f.files,
		Stdin:        cmd.InOrStdin(),
		Parents:      f.parents,
		Jobs:         cfg.Jobs,
		DryRun:       f.dryRun,
	}
	if len(opts.Messages) == 0 && len(opts.MessageFiles) == 0 {
		opts.Messages = cfg.Messages
	}
	if cmd.Flags().Changed("num-jobs") {
		opts.Jobs = f.jobs
	}
	return opts
}

// printResult reports what an update did.
func printResult(res *submodules.Result) {
	switch {
	case res.NoOp && res.Head == "":
		info("No refs found, nothing to update.")
		return
	case res.NoOp:
		info("All submodules are up to date.")
		return
	}

	for _, c := range res.Changes {
		info("  %-20s  %s → %s", c.Path, submodule.Short(c.Before), submodule.Short(c.After))
	}
	if res.DryRun {
		info("")
		info("Dry run: no commit written. Message:")
		info("%s", res.Message)
		return
	}
	detail("tree   %s", res.Tree)
	detail("commit %s", res.Commit)
	info("Committed %s (%s)", submodule.Short(res.Commit), describeBranch(res.Branch))
}

func describeBranch(b submodules.BranchUpdate) string {
	if b.Method == "skipped" {
		return "HEAD not moved"
	}
	s := fmt.Sprintf("%s updated via %s", b.Ref, b.Method)
	if b.Pushed && b.Method != "api" {
		s += ", pushed"
	}
	return s
}

// writeReports writes the machine-readable output for a successful,
// non-dry-run update, and the step summary once the commit has been pushed.
func writeReports(ctx context.Context, cmd *cobra.Command, f *updateFlags, cfg *config.Config, u *submodules.Updater, repoOverride string, res *submodules.Result) error {
	if res.NoOp || res.DryRun {
		return nil
	}

	output := config.OutputTarget(f.output, cmd.Flags().Changed("github-output"), os.Getenv, "GITHUB_OUTPUT")
	if err := report.WriteOutput(output, cmd.OutOrStdout(), res.Commit); err != nil {
		return err
	}

	target := config.OutputTarget(f.summary, cmd.Flags().Changed("github-step-summary"), os.Getenv, "GITHUB_STEP_SUMMARY")
	if target == "" {
		return nil
	}
	if !res.Branch.Pushed {
		slog.Debug("no step summary: commit was not pushed", slog.String("commit", res.Commit))
		return nil
	}
	s := report.Summary{
		ServerURL: serverURL(cfg),
		Commit:    res.Commit,
		Changes:   res.Changes,
	}
	if repoOverride != "" {
		repo, err := submodules.ParseRepo(repoOverride)
		if err != nil {
			return err
		}
		s.Repo = repo
	} else if repo, err := u.Repository(ctx); err != nil {
		slog.Warn("step summary will not link the commit", slog.String("reason", err.Error()))
	} else {
		s.Repo = repo
	}
	return report.WriteSummary(target, cmd.OutOrStdout(), s)
}

func serverURL(cfg *config.Config) string {
	if cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	if v := os.Getenv("GITHUB_SERVER_URL"); v != "" {
		return v
	}
	return report.DefaultServerURL
}

// info prints a line to stderr unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbosity > 0 && !quiet {
		fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
