package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/update-submodules/internal/config"
	"github.com/bianoble/update-submodules/pkg/submodules"
)

var (
	githubFlags  updateFlags
	githubBranch string
	githubRepo   string
	githubAPIURL string
)

var githubCmd = &cobra.Command{
	Use:   "github [path=ref | ref]...",
	Short: "Update submodules of a GitHub repository through its API",
	Long: `Resolves each submodule's ref with the GitHub API, creates a tree and commit
on top of the branch head and fast-forwards the branch. Nothing is cloned.

Submodules without an explicit path=ref move to the bare ref if one is given,
otherwise to the HEAD of their repository. Relative submodule URLs are
resolved against the repository being updated.

The token is read from GITHUB_TOKEN, GH_TOKEN or a .github-token file. It is
required unless --dry-run is given.
Inside GitHub Actions the repository and branch default to the ones the
workflow runs for.`,
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

		opts := updateOptions(cmd, &githubFlags, cfg)
		if err := opts.Validate(); err != nil {
			return err
		}

		repo := firstNonEmpty(githubRepo, cfg.GitHub.Repository, os.Getenv("GITHUB_REPOSITORY"))
		if repo == "" {
			return errors.New("no repository: pass -r/--repository or set GITHUB_REPOSITORY")
		}
		token, err := config.ResolveToken(os.Getenv, config.TokenFile)
		if err != nil {
			return err
		}
		if token == "" {
			if !opts.DryRun {
				return errors.New("no GitHub token: set GITHUB_TOKEN or GH_TOKEN, or create " + config.TokenFile)
			}
			slog.Warn("no GitHub token found, API calls are unauthenticated")
		}

		u, err := submodules.NewGitHub(ctx, submodules.GitHubOptions{
			Repository: repo,
			Branch:     firstNonEmpty(githubBranch, cfg.GitHub.Branch, config.DefaultBranch(os.Getenv)),
			Token:      token,
			APIURL:     firstNonEmpty(githubAPIURL, cfg.GitHub.APIURL, os.Getenv("GITHUB_API_URL")),
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
		return writeReports(ctx, cmd, &githubFlags, cfg, u, "", res)
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	addUpdateFlags(githubCmd, &githubFlags)
	githubCmd.Flags().StringVarP(&githubBranch, "branch", "b", "", "branch to update (default: the workflow's branch, else the default branch)")
	githubCmd.Flags().StringVarP(&githubRepo, "repository", "r", "", "owner/name of the repository to update (default $GITHUB_REPOSITORY)")
	githubCmd.Flags().StringVar(&githubAPIURL, "api-url", "", "GitHub Enterprise API root (default $GITHUB_API_URL or api.github.com)")
	rootCmd.AddCommand(githubCmd)
}
