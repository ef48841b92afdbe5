package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/update-submodules/internal/submodule"
)

const (
	gitlinkA = "1111111111111111111111111111111111111111"
	gitlinkB = "2222222222222222222222222222222222222222"
)

// newFixtureRepo creates a repository whose HEAD tree holds a .gitmodules
// blob and two gitlinks. No submodule content exists on disk.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %s: %v", args, out, err)
		}
	}

	run("init", "-q", "-b", "main")
	modules := "[submodule \"a\"]\n\tpath = a\n\turl = https://github.com/acme/a.git\n" +
		"[submodule \"b\"]\n\tpath = b\n\turl = https://github.com/acme/b.git\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitmodules"), []byte(modules), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".gitmodules")
	run("update-index", "--add", "--cacheinfo", "160000,"+gitlinkA+",a")
	run("update-index", "--add", "--cacheinfo", "160000,"+gitlinkB+",b")
	run("commit", "-q", "-m", "initial")
	return dir
}

func newTestRunner(t *testing.T, dir string) *Runner {
	t.Helper()
	r, err := NewRunner(dir)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestListTreeAndMakeTree(t *testing.T) {
	dir := newFixtureRepo(t)
	r := newTestRunner(t, dir)
	ctx := context.Background()

	lines, err := r.ListTree(ctx, "HEAD")
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	entries := submodule.Gitlinks(lines)
	if len(entries) != 2 || entries[0].Path != "a" || entries[1].SHA != gitlinkB {
		t.Fatalf("gitlinks = %+v", entries)
	}

	// Writing the listing back unchanged must produce the same tree.
	tree, err := r.MakeTree(ctx, lines)
	if err != nil {
		t.Fatalf("MakeTree: %v", err)
	}
	head, err := r.TreeID(ctx, "HEAD")
	if err != nil {
		t.Fatalf("TreeID: %v", err)
	}
	if tree != head {
		t.Errorf("MakeTree = %s, want %s", tree, head)
	}
}

func TestCommitTreeAndUpdateRef(t *testing.T) {
	dir := newFixtureRepo(t)
	r := newTestRunner(t, dir)
	ctx := context.Background()
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")

	head, err := r.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatalf("RevParse: %v", err)
	}
	lines, err := r.ListTree(ctx, head)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	newLines, err := submodule.RewriteTree(lines, submodule.ChangeSet{{Path: "b", Before: gitlinkB, After: gitlinkA}})
	if err != nil {
		t.Fatalf("RewriteTree: %v", err)
	}
	tree, err := r.MakeTree(ctx, newLines)
	if err != nil {
		t.Fatalf("MakeTree: %v", err)
	}

	msg := "Update submodules: b\n\n- b: 2222222 → 1111111"
	commit, err := r.CommitTree(ctx, CommitTreeOptions{Tree: tree, Parents: []string{head}, Message: msg})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if err := r.UpdateRef(ctx, "HEAD", commit); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	got, err := r.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatalf("RevParse: %v", err)
	}
	if got != commit {
		t.Errorf("HEAD = %s, want %s", got, commit)
	}

	res, err := r.Run(ctx, "log", "-1", "--format=%B")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != msg {
		t.Errorf("message = %q, want %q", res.Stdout, msg)
	}

	after, err := r.ListTree(ctx, "HEAD")
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	if gl := submodule.Gitlinks(after); gl[1].SHA != gitlinkA {
		t.Errorf("b = %s, want %s", gl[1].SHA, gitlinkA)
	}
}

func TestIsBare(t *testing.T) {
	dir := newFixtureRepo(t)
	ctx := context.Background()

	bare, err := newTestRunner(t, dir).IsBare(ctx)
	if err != nil {
		t.Fatalf("IsBare: %v", err)
	}
	if bare {
		t.Error("working clone reported as bare")
	}

	bareDir := filepath.Join(t.TempDir(), "bare.git")
	if out, err := exec.Command("git", "clone", "-q", "--bare", dir, bareDir).CombinedOutput(); err != nil {
		t.Fatalf("clone --bare: %s: %v", out, err)
	}
	bare, err = newTestRunner(t, bareDir).IsBare(ctx)
	if err != nil {
		t.Fatalf("IsBare: %v", err)
	}
	if !bare {
		t.Error("bare clone not reported as bare")
	}
}

func TestLsRemote(t *testing.T) {
	dir := newFixtureRepo(t)
	r := newTestRunner(t, t.TempDir())

	refs, err := r.LsRemote(context.Background(), dir)
	if err != nil {
		t.Fatalf("LsRemote: %v", err)
	}
	if refs["HEAD"] == "" || refs["HEAD"] != refs["refs/heads/main"] {
		t.Errorf("refs = %v", refs)
	}
}

func TestExecErrorIncludesStderr(t *testing.T) {
	dir := newFixtureRepo(t)
	_, err := newTestRunner(t, dir).RevParse(context.Background(), "no-such-branch")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "git rev-parse") {
		t.Errorf("error = %q", err)
	}
}
