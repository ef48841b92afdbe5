package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/update-submodules/pkg/submodules"
)

var (
	localFlags   updateFlags
	localSign    bool
	localSignAs  string
	localNoReset bool
	localPush    bool
	localDir     string
	localRepo    string
)

var localCmd = &cobra.Command{
	Use:   "local [path=ref | ref]...",
	Short: "Update submodules in a repository on disk",
	Long: `Resolves each submodule's ref, writes a new tree and commit with git plumbing
commands and moves HEAD to it. The working tree and index are not touched for
anything but the updated gitlinks; bare repositories are supported.

Refs are resolved in the submodule's checkout when it has one, otherwise
against the URL in .gitmodules without cloning. Submodules with neither an
explicit path=ref nor a bare ref are left alone.

Use --no-reset to only create the commit (its SHA is printed on stdout) and
--push to push the branch afterwards. The step summary is written only for a
pushed commit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		refs, err := refsFromArgs(cfg, args)
		if err != nil {
			return err
		}

		opts := updateOptions(cmd, &localFlags, cfg)
		opts.Sign, opts.SignKey = localSign, localSignAs
		if !localSign && localSignAs == "" {
			opts.Sign, opts.SignKey = cfg.Sign.Default, cfg.Sign.Key
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		u, err := submodules.NewLocal(ctx, submodules.LocalOptions{
			Dir:     localDir,
			NoReset: localNoReset || cfg.Local.NoReset,
			Push:    localPush || cfg.Local.Push,
		})
		if err != nil {
			return err
		}

		res, err := u.UpdateMap(ctx, refs, opts)
		if err != nil {
			if res != nil && res.Commit != "" {
				errorf("created commit %s before failing", res.Commit)
			}
			return err
		}

		printResult(res)
		if !res.NoOp && !res.DryRun && res.Branch.Method == "skipped" {
			fmt.Fprintln(cmd.OutOrStdout(), res.Commit)
		}

		repo := localRepo
		if repo == "" {
			repo = cfg.GitHub.Repository
		}
		return writeReports(ctx, cmd, &localFlags, cfg, u, repo, res)
	},
}

func init() {
	addUpdateFlags(localCmd, &localFlags)
	localCmd.Flags().BoolVarP(&localSign, "gpg-sign", "S", false, "sign the commit with the committer's key")
	localCmd.Flags().StringVar(&localSignAs, "gpg-sign-as", "", "sign the commit with the given key id")
	localCmd.Flags().BoolVarP(&localNoReset, "no-reset", "R", false, "create the commit but leave HEAD where it is")
	localCmd.Flags().BoolVarP(&localPush, "push", "P", false, "push after moving HEAD")
	localCmd.Flags().StringVarP(&localDir, "dir", "C", ".", "run as if started in this directory")
	localCmd.Flags().StringVarP(&localRepo, "repository", "r", "", "owner/name used for step summary links (default: origin remote)")
	rootCmd.AddCommand(localCmd)
}
