package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbosity  int
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "update-submodules",
	Short: "Move many git submodules to new refs in a single commit",
	Long: `update-submodules resolves a ref for each submodule of a repository, writes
a new tree with the updated gitlinks and records it as one commit, without
checking anything out. It works on a repository on disk ("local") or on a
GitHub repository through its API ("github").

Refs are given as path=ref pairs; a bare ref applies to every submodule
without an explicit pair.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "update-submodules %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "update-submodules.yaml", "path to config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "detailed output, including git commands")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (warnings and errors only)")

	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the process-wide slog handler on stderr.
func setupLogging() {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbosity > 0:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		errorf("%v", err)
		return err
	}
	return nil
}
