package cmd

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bianoble/update-submodules/internal/ghapi/ghapitest"
)

const (
	headSHA   = "1000000000000000000000000000000000000001"
	treeSHA   = "2000000000000000000000000000000000000002"
	moduleSHA = "3000000000000000000000000000000000000003"
	oldA      = "1111111111111111111111111111111111111111"
	oldB      = "2222222222222222222222222222222222222222"
	newA      = "3333333333333333333333333333333333333333"
	newB      = "4444444444444444444444444444444444444444"
)

// resetFlags restores every flag to its default so commands can be executed
// more than once in a test binary.
func resetFlags(cmds ...*cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	for _, c := range cmds {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)
	t.Setenv("GITHUB_TOKEN", "token")
	return run(t, args...)
}

// isolateEnv clears the Actions variables and config inheritance.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("UPDATE_SUBMODULES_NO_INHERIT", "1")
	for _, key := range []string{"GITHUB_OUTPUT", "GITHUB_STEP_SUMMARY", "GITHUB_REPOSITORY", "GITHUB_REF_NAME", "GITHUB_EVENT_NAME", "GITHUB_API_URL", "GITHUB_SERVER_URL", "GITHUB_TOKEN", "GH_TOKEN"} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd, localCmd, githubCmd)
	t.Cleanup(func() { resetFlags(rootCmd, localCmd, githubCmd) })

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "-q"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func newGitHubFake(t *testing.T) *ghapitest.Server {
	t.Helper()
	srv := ghapitest.NewServer(t)
	srv.AddRepo("acme/super", &ghapitest.Repo{
		DefaultBranch: "main",
		Commits:       map[string]ghapitest.Commit{"main": {SHA: headSHA, Tree: treeSHA}, "feature": {SHA: headSHA, Tree: treeSHA}},
		Trees: map[string][]ghapitest.TreeEntry{treeSHA: {
			{Path: ".gitmodules", Mode: "100644", Type: "blob", SHA: moduleSHA},
			{Path: "a", Mode: "160000", Type: "commit", SHA: oldA},
			{Path: "b", Mode: "160000", Type: "commit", SHA: oldB},
		}},
		Blobs: map[string][]byte{moduleSHA: []byte("[submodule \"a\"]\n\tpath = a\n\turl = https://github.com/acme/a.git\n[submodule \"b\"]\n\tpath = b\n\turl = ../b.git\n")},
	})
	srv.AddRepo("acme/a", &ghapitest.Repo{Commits: map[string]ghapitest.Commit{"HEAD": {SHA: oldA}, "v2": {SHA: newA}}})
	srv.AddRepo("acme/b", &ghapitest.Repo{Commits: map[string]ghapitest.Commit{"HEAD": {SHA: newB}}})
	return srv
}

func TestGitHubCommand(t *testing.T) {
	srv := newGitHubFake(t)
	summary := filepath.Join(t.TempDir(), "summary.md")

	stdout, err := execute(t, "github", "-r", "acme/super", "-b", "feature", "--api-url", srv.APIURL(), "-o", "-", "-g", summary, "a=v2")
	if err != nil {
		t.Fatalf("github: %v", err)
	}

	if len(srv.Commits) != 1 || len(srv.Updates) != 1 {
		t.Fatalf("commits = %d, updates = %d, want 1 each", len(srv.Commits), len(srv.Updates))
	}
	sha := srv.Commits[0].SHA
	if srv.Updates[0].Branch != "feature" || srv.Updates[0].SHA != sha {
		t.Errorf("update = %+v", srv.Updates[0])
	}
	if stdout != "commit="+sha+"\n" {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	for _, want := range []string{
		"(https://github.com/acme/super/commit/" + sha + ")",
		"- [a](https://github.com/acme/a): [`1111111..3333333`](https://github.com/acme/a/compare/1111111..3333333)",
		"- [b](https://github.com/acme/b): [`2222222..4444444`](https://github.com/acme/b/compare/2222222..4444444)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}
}

func TestGitHubCommandDryRun(t *testing.T) {
	srv := newGitHubFake(t)

	stdout, err := execute(t, "github", "-r", "acme/super", "--api-url", srv.APIURL(), "-o", "-", "-g", "-", "-n")
	if err != nil {
		t.Fatalf("github -n: %v", err)
	}
	if stdout != "" {
		t.Errorf("dry run wrote %q to stdout", stdout)
	}
	if len(srv.Trees)+len(srv.Commits)+len(srv.Updates) != 0 {
		t.Error("dry run wrote to the repository")
	}
}

func TestGitHubCommandRequiresToken(t *testing.T) {
	srv := newGitHubFake(t)
	isolateEnv(t)
	t.Chdir(t.TempDir())

	_, err := run(t, "github", "-r", "acme/super", "--api-url", srv.APIURL(), "-o", "", "-g", "", "a=v2")
	if err == nil || !strings.Contains(err.Error(), "no GitHub token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if len(srv.Trees)+len(srv.Commits)+len(srv.Updates) != 0 {
		t.Error("repository written without a token")
	}
}

func TestGitHubCommandDryRunWithoutToken(t *testing.T) {
	srv := newGitHubFake(t)
	isolateEnv(t)
	t.Chdir(t.TempDir())

	if _, err := run(t, "github", "-r", "acme/super", "--api-url", srv.APIURL(), "-o", "", "-g", "", "-n", "a=v2"); err != nil {
		t.Fatalf("github -n without token: %v", err)
	}
}

func TestGitHubCommandConflictingMessages(t *testing.T) {
	// No fake server: option errors must surface before any API call.
	_, err := execute(t, "github", "-r", "acme/super", "--api-url", "http://127.0.0.1:1/", "-m", "x", "-F", "msg.txt", "a=v2")
	if err == nil || !strings.Contains(err.Error(), "not both") {
		t.Fatalf("expected option conflict, got %v", err)
	}
}

func TestGitHubCommandRequiresRepository(t *testing.T) {
	_, err := execute(t, "github")
	if err == nil || !strings.Contains(err.Error(), "no repository") {
		t.Fatalf("expected missing repository error, got %v", err)
	}
}

func TestGitHubCommandBranchFailure(t *testing.T) {
	srv := newGitHubFake(t)
	srv.RefStatus = 422

	stdout, err := execute(t, "github", "-r", "acme/super", "--api-url", srv.APIURL(), "-o", "-", "-g", "")
	if err == nil {
		t.Fatal("expected branch update failure")
	}
	if stdout != "" {
		t.Errorf("output written after failure: %q", stdout)
	}
}

func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	c := exec.Command("git", args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %s: %v", args, out, err)
	}
	return strings.TrimSpace(string(out))
}

func newLocalRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")

	dir := t.TempDir()
	gitIn(t, dir, "init", "-q", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, ".gitmodules"), []byte("[submodule \"a\"]\n\tpath = a\n\turl = https://github.com/acme/a.git\n"), 0644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".gitmodules")
	gitIn(t, dir, "update-index", "--add", "--cacheinfo", "160000,"+oldA+",a")
	gitIn(t, dir, "commit", "-q", "-m", "initial")
	return dir
}

func TestLocalCommandNoReset(t *testing.T) {
	dir := newLocalRepo(t)
	head := gitIn(t, dir, "rev-parse", "HEAD")

	stdout, err := execute(t, "local", "-C", dir, "-R", "-o", "", "-g", "", "-m", "Bump a", "a="+newA)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	sha := strings.TrimSpace(stdout)
	if len(sha) != 40 {
		t.Fatalf("stdout = %q, want the new commit sha", stdout)
	}
	if got := gitIn(t, dir, "rev-parse", "HEAD"); got != head {
		t.Errorf("HEAD moved to %s with --no-reset", got)
	}
	if got := gitIn(t, dir, "rev-parse", sha+":a"); got != newA {
		t.Errorf("gitlink a = %s, want %s", got, newA)
	}
}

// withOrigin gives dir a bare origin that tracks main.
func withOrigin(t *testing.T, dir string) string {
	t.Helper()
	origin := filepath.Join(t.TempDir(), "super.git")
	gitIn(t, dir, "init", "-q", "--bare", origin)
	gitIn(t, dir, "remote", "add", "origin", origin)
	gitIn(t, dir, "push", "-q", "-u", "origin", "main")
	return origin
}

func TestLocalCommandSummary(t *testing.T) {
	dir := newLocalRepo(t)
	origin := withOrigin(t, dir)

	stdout, err := execute(t, "local", "-C", dir, "-P", "-r", "acme/super", "-o", "-", "-g", "-", "a="+newA)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	sha := gitIn(t, dir, "rev-parse", "HEAD")
	if got := gitIn(t, origin, "rev-parse", "main"); got != sha {
		t.Errorf("origin main = %s, want %s", got, sha)
	}
	if !strings.HasPrefix(stdout, "commit="+sha+"\nPushed submodule update ([`"+sha[:7]+"`](https://github.com/acme/super/commit/"+sha+")):\n") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "- [a](https://github.com/acme/a): [`1111111..3333333`]") {
		t.Errorf("summary missing bullet: %q", stdout)
	}
}

func TestLocalCommandNoSummaryWithoutPush(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no reset", []string{"-R"}},
		{"reset only", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newLocalRepo(t)
			args := append([]string{"local", "-C", dir, "-r", "acme/super", "-o", "", "-g", "-"}, tt.args...)
			stdout, err := execute(t, append(args, "a="+newA)...)
			if err != nil {
				t.Fatalf("local: %v", err)
			}
			if strings.Contains(stdout, "Pushed submodule update") {
				t.Errorf("summary written for an unpushed commit: %q", stdout)
			}
		})
	}
}

func TestLocalCommandNoRefs(t *testing.T) {
	dir := newLocalRepo(t)
	head := gitIn(t, dir, "rev-parse", "HEAD")

	stdout, err := execute(t, "local", "-C", dir, "-o", "-", "-g", "-")
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if stdout != "" {
		t.Errorf("no-op wrote %q", stdout)
	}
	if got := gitIn(t, dir, "rev-parse", "HEAD"); got != head {
		t.Error("HEAD moved without refs")
	}
}

func TestLocalCommandConflictingMessages(t *testing.T) {
	dir := newLocalRepo(t)
	_, err := execute(t, "local", "-C", dir, "-o", "", "-g", "", "-m", "x", "-F", "msg.txt", "a="+newA)
	if err == nil || !strings.Contains(err.Error(), "not both") {
		t.Fatalf("expected option conflict, got %v", err)
	}
}

func TestLocalCommandValidatesBeforeOpening(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := execute(t, "local", "-C", missing, "-S", "--gpg-sign-as", "ABCD", "a="+newA)
	if err == nil || !strings.Contains(err.Error(), "gpg-sign") {
		t.Fatalf("expected signing option conflict, got %v", err)
	}
}
