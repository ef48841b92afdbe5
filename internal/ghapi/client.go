// Package ghapi is the GitHub REST collaborator used by the remote backend.
package ghapi

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v48/github"
	"golang.org/x/oauth2"
)

// Client wraps a go-github client with the handful of Git Data calls the
// remote backend needs.
type Client struct {
	gh *github.Client
}

// NewClient returns a client authenticated with token. An empty apiURL
// means api.github.com; anything else is a GitHub Enterprise API root.
func NewClient(ctx context.Context, token, apiURL string) (*Client, error) {
	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if apiURL != "" {
		u, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing api url %q: %w", apiURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// CommitInfo is a commit and the root tree it points at.
type CommitInfo struct {
	SHA  string
	Tree string
}

// TreeEntry is one entry of a non-recursive tree listing.
type TreeEntry struct {
	Path string
	Mode string
	Type string
	SHA  string
}

// Commit resolves ref (branch, tag, sha, or HEAD) in repo.
func (c *Client) Commit(ctx context.Context, repo Repo, ref string) (CommitInfo, error) {
	rc, _, err := c.gh.Repositories.GetCommit(ctx, repo.Owner, repo.Name, ref, nil)
	if err != nil {
		return CommitInfo{}, requestError("get commit "+ref, repo, err)
	}
	info := CommitInfo{SHA: rc.GetSHA()}
	if rc.Commit != nil && rc.Commit.Tree != nil {
		info.Tree = rc.Commit.Tree.GetSHA()
	}
	if info.SHA == "" {
		return CommitInfo{}, requestError("get commit "+ref, repo, errors.New("response has no sha"))
	}
	return info, nil
}

// DefaultBranch returns the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context, repo Repo) (string, error) {
	r, _, err := c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", requestError("get repository", repo, err)
	}
	if r.GetDefaultBranch() == "" {
		return "", requestError("get repository", repo, errors.New("no default branch"))
	}
	return r.GetDefaultBranch(), nil
}

// Tree lists the top level of a tree.
func (c *Client) Tree(ctx context.Context, repo Repo, sha string) ([]TreeEntry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, repo.Owner, repo.Name, sha, false)
	if err != nil {
		return nil, requestError("get tree "+sha, repo, err)
	}
	if tree.GetTruncated() {
		return nil, requestError("get tree "+sha, repo, errors.New("tree listing truncated"))
	}
	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, TreeEntry{
			Path: e.GetPath(),
			Mode: e.GetMode(),
			Type: e.GetType(),
			SHA:  e.GetSHA(),
		})
	}
	return entries, nil
}

// Blob returns the decoded content of a blob. Only base64 encoded blobs are
// accepted.
func (c *Client) Blob(ctx context.Context, repo Repo, sha string) ([]byte, error) {
	blob, _, err := c.gh.Git.GetBlob(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return nil, requestError("get blob "+sha, repo, err)
	}
	if enc := blob.GetEncoding(); enc != "base64" {
		return nil, requestError("get blob "+sha, repo, fmt.Errorf("unsupported blob encoding %q", enc))
	}
	content := strings.ReplaceAll(blob.GetContent(), "\n", "")
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, requestError("get blob "+sha, repo, fmt.Errorf("decoding content: %w", err))
	}
	return data, nil
}

// CreateTree writes a tree that is base with entries replaced or added.
func (c *Client) CreateTree(ctx context.Context, repo Repo, base string, entries []TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &github.TreeEntry{
			Path: github.String(e.Path),
			Mode: github.String(e.Mode),
			Type: github.String(e.Type),
			SHA:  github.String(e.SHA),
		})
	}
	tree, _, err := c.gh.Git.CreateTree(ctx, repo.Owner, repo.Name, base, ghEntries)
	if err != nil {
		return "", requestError("create tree", repo, err)
	}
	return tree.GetSHA(), nil
}

// CreateCommit writes an unsigned commit object.
func (c *Client) CreateCommit(ctx context.Context, repo Repo, message, tree string, parents []string) (string, error) {
	commit := &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(tree)},
	}
	for _, p := range parents {
		commit.Parents = append(commit.Parents, &github.Commit{SHA: github.String(p)})
	}
	created, _, err := c.gh.Git.CreateCommit(ctx, repo.Owner, repo.Name, commit)
	if err != nil {
		return "", requestError("create commit", repo, err)
	}
	return created.GetSHA(), nil
}

// UpdateBranch moves refs/heads/branch to sha. The update is not forced, so
// GitHub rejects it unless it fast-forwards.
func (c *Client) UpdateBranch(ctx context.Context, repo Repo, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}
	if _, _, err := c.gh.Git.UpdateRef(ctx, repo.Owner, repo.Name, ref, false); err != nil {
		return requestError("update branch "+branch, repo, err)
	}
	return nil
}

// RequestError is a failed API call. StatusCode is zero when no response
// was received.
type RequestError struct {
	Op         string
	Repo       Repo
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("github %s %s: %s", e.Repo, e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func requestError(op string, repo Repo, err error) error {
	re := &RequestError{Op: op, Repo: repo, Err: err}
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		re.StatusCode = ger.Response.StatusCode
	}
	return re
}
