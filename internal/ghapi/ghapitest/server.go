// Package ghapitest provides an in-memory fake of the GitHub REST endpoints
// used by the ghapi client.
package ghapitest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Commit is a commit the fake knows how to return.
type Commit struct {
	SHA  string
	Tree string
}

// TreeEntry mirrors a GitHub tree entry.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// Repo is the state of one fake repository.
type Repo struct {
	DefaultBranch string

	// Commits maps any ref spelling (branch, tag, sha, HEAD) to a commit.
	Commits map[string]Commit
	Trees   map[string][]TreeEntry

	// Blobs maps blob sha to raw content, served base64 encoded unless the
	// sha is listed in RawBlobs.
	Blobs    map[string][]byte
	RawBlobs map[string]bool
}

// CreatedTree records a create-tree request.
type CreatedTree struct {
	Repo     string      `json:"-"`
	BaseTree string      `json:"base_tree"`
	Entries  []TreeEntry `json:"tree"`
	SHA      string      `json:"-"`
}

// CreatedCommit records a create-commit request.
type CreatedCommit struct {
	Repo    string   `json:"-"`
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
	SHA     string   `json:"-"`
}

// RefUpdate records a branch update request.
type RefUpdate struct {
	Repo   string `json:"-"`
	Branch string `json:"-"`
	SHA    string `json:"sha"`
	Force  bool   `json:"force"`
}

// Server is a fake GitHub API. Zero-value maps are fine; register repos
// with AddRepo.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	repos   map[string]*Repo
	next    int
	Trees   []CreatedTree
	Commits []CreatedCommit
	Updates []RefUpdate

	// RefStatus, when non-zero, is returned for branch updates instead of
	// success.
	RefStatus int
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{repos: make(map[string]*Repo)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}", s.getRepo)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{ref...}", s.getCommit)
	mux.HandleFunc("GET /repos/{owner}/{repo}/git/trees/{sha}", s.getTree)
	mux.HandleFunc("GET /repos/{owner}/{repo}/git/blobs/{sha}", s.getBlob)
	mux.HandleFunc("POST /repos/{owner}/{repo}/git/trees", s.createTree)
	mux.HandleFunc("POST /repos/{owner}/{repo}/git/commits", s.createCommit)
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/git/refs/heads/{branch...}", s.updateRef)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// APIURL is the root to hand to ghapi.NewClient.
func (s *Server) APIURL() string {
	return s.URL + "/"
}

// AddRepo registers a repository under "owner/name".
func (s *Server) AddRepo(nwo string, r *Repo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[nwo] = r
}

func (s *Server) repo(w http.ResponseWriter, r *http.Request) (*Repo, string, bool) {
	nwo := r.PathValue("owner") + "/" + r.PathValue("repo")
	repo, ok := s.repos[nwo]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
	}
	return repo, nwo, ok
}

func (s *Server) newSHA() string {
	s.next++
	return fmt.Sprintf("%040x", 0xabc000+s.next)
}

func (s *Server) getRepo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, nwo, ok := s.repo(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"full_name": nwo, "default_branch": repo.DefaultBranch})
}

func (s *Server) getCommit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, _, ok := s.repo(w, r)
	if !ok {
		return
	}
	c, ok := repo.Commits[r.PathValue("ref")]
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "No commit found for SHA: "+r.PathValue("ref"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sha":    c.SHA,
		"commit": map[string]any{"tree": map[string]any{"sha": c.Tree}},
	})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, _, ok := s.repo(w, r)
	if !ok {
		return
	}
	entries, ok := repo.Trees[r.PathValue("sha")]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sha": r.PathValue("sha"), "tree": entries, "truncated": false})
}

func (s *Server) getBlob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, _, ok := s.repo(w, r)
	if !ok {
		return
	}
	sha := r.PathValue("sha")
	data, ok := repo.Blobs[sha]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if repo.RawBlobs[sha] {
		writeJSON(w, http.StatusOK, map[string]any{"sha": sha, "content": string(data), "encoding": "utf-8"})
		return
	}
	// GitHub wraps base64 content at 60 columns.
	enc := base64.StdEncoding.EncodeToString(data)
	var wrapped strings.Builder
	for len(enc) > 60 {
		wrapped.WriteString(enc[:60] + "\n")
		enc = enc[60:]
	}
	wrapped.WriteString(enc)
	writeJSON(w, http.StatusOK, map[string]any{"sha": sha, "content": wrapped.String(), "encoding": "base64"})
}

func (s *Server) createTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, nwo, ok := s.repo(w, r)
	if !ok {
		return
	}
	var req CreatedTree
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Repo = nwo
	req.SHA = s.newSHA()
	s.Trees = append(s.Trees, req)
	writeJSON(w, http.StatusCreated, map[string]any{"sha": req.SHA})
}

func (s *Server) createCommit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, nwo, ok := s.repo(w, r)
	if !ok {
		return
	}
	var req CreatedCommit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Repo = nwo
	req.SHA = s.newSHA()
	s.Commits = append(s.Commits, req)
	writeJSON(w, http.StatusCreated, map[string]any{"sha": req.SHA})
}

func (s *Server) updateRef(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, nwo, ok := s.repo(w, r)
	if !ok {
		return
	}
	if s.RefStatus != 0 {
		writeError(w, s.RefStatus, "Update is not a fast forward")
		return
	}
	var req RefUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Repo = nwo
	req.Branch = r.PathValue("branch")
	s.Updates = append(s.Updates, req)
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":    "refs/heads/" + req.Branch,
		"object": map[string]any{"sha": req.SHA, "type": "commit"},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}
