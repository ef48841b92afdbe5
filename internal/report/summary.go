package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/submodule"
)

// DefaultServerURL is the web root used for links when none is configured.
const DefaultServerURL = "https://github.com"

// Summary describes a pushed update for a CI step summary.
type Summary struct {
	ServerURL string
	// Repo is the superproject. When zero, the commit is not linked and
	// relative submodule URLs cannot be linked either.
	Repo    ghapi.Repo
	Commit  string
	Changes submodule.ChangeSet
}

// Markdown renders the summary: a heading line linking the commit, a blank
// line, then one bullet per changed submodule with a compare link.
func (s Summary) Markdown() string {
	server := strings.TrimSuffix(s.ServerURL, "/")
	if server == "" {
		server = DefaultServerURL
	}
	short := submodule.Short(s.Commit)

	var b strings.Builder
	if s.Repo.IsZero() {
		fmt.Fprintf(&b, "Pushed submodule update (`%s`):\n", short)
	} else {
		fmt.Fprintf(&b, "Pushed submodule update ([`%s`](%s/%s/commit/%s)):\n", short, server, s.Repo, s.Commit)
	}

	for _, c := range s.Changes {
		before, after := submodule.Short(c.Before), submodule.Short(c.After)
		repo, err := s.submoduleRepo(c.URL)
		if err != nil {
			fmt.Fprintf(&b, "\n- %s: `%s..%s`", c.Path, before, after)
			continue
		}
		base := fmt.Sprintf("%s/%s", server, repo)
		fmt.Fprintf(&b, "\n- [%s](%s): [`%s..%s`](%s/compare/%s..%s)", c.Path, base, before, after, base, before, after)
	}
	return b.String()
}

func (s Summary) submoduleRepo(url string) (ghapi.Repo, error) {
	if ghapi.IsRelativeURL(url) && s.Repo.IsZero() {
		return ghapi.Repo{}, fmt.Errorf("relative url %q without a superproject", url)
	}
	return ghapi.ResolveRepoURL(s.Repo, url)
}

// WriteSummary appends the summary to target. An empty target disables it.
func WriteSummary(target string, stdout io.Writer, s Summary) error {
	md := s.Markdown() + "\n"
	switch target {
	case "":
		return nil
	case Stdout:
		_, err := io.WriteString(stdout, md)
		return err
	}

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening step summary %s: %w", target, err)
	}
	if _, err := f.WriteString(md); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing step summary %s: %w", target, err)
	}
	return f.Close()
}
