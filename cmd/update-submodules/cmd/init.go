package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bianoble/update-submodules/internal/sandbox"
)

var initForce bool

// initTemplate is the default update-submodules.yaml scaffold.
const initTemplate = `# update-submodules configuration
version: 1

# Explicit path=ref assignments. Command line refs override these by path.
refs:
  # - libs/core=main
  # - vendor/proto=v1.4.0

# Ref for every submodule without an explicit assignment. The github command
# uses HEAD when neither this nor a bare ref is given.
# fallback: main

# Parallel ref lookups (0 = one per CPU).
# jobs: 0

# Commit message paragraphs. Default: a generated list of changes.
# messages:
#   - Update submodules

# Commit signing (local command only).
# sign:
#   default: true      # or
#   key: 0123ABCD

# local:
#   no_reset: false
#   push: false

# github:
#   repository: your-org/your-repo
#   branch: main
#   api_url: https://github.example.com/api/v3/

# Web root for step summary links.
# server_url: https://github.com
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter update-submodules.yaml configuration",
	Long: `Creates an update-submodules.yaml file (or the file named by --config) with a
commented template of every setting.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := sandbox.WriteFile(filepath.Dir(outPath), filepath.Base(outPath), []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Add path=ref assignments or a fallback ref")
		info("  2. Run 'update-submodules local --dry-run' to preview the commit")
		info("  3. Run 'update-submodules local' or 'update-submodules github' to commit")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
