package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const exampleConfig = `version: 1
refs:
  - libs/core=main
  - vendor/proto=v1.4.0
fallback: HEAD
jobs: 4
messages:
  - Bump submodules
sign:
  key: ABCDEF12
local:
  push: true
github:
  repository: acme/super
  branch: main
  api_url: https://ghe.example.com/api/v3/
server_url: https://ghe.example.com
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), FileName, exampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Version:   1,
		Refs:      []string{"libs/core=main", "vendor/proto=v1.4.0"},
		Fallback:  "HEAD",
		Jobs:      4,
		Messages:  []string{"Bump submodules"},
		Sign:      Sign{Key: "ABCDEF12"},
		Local:     Local{Push: true},
		GitHub:    GitHub{Repository: "acme/super", Branch: "main", APIURL: "https://ghe.example.com/api/v3/"},
		ServerURL: "https://ghe.example.com",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/update-submodules.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), FileName, "version: [1\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadValidationError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), FileName, "version: 2\njobs: -1\n")
	_, err := Load(path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("errors = %v, want 2", verr.Errors)
	}
	if !strings.HasPrefix(err.Error(), "config validation failed:\n  - ") {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string // substring; empty means valid
	}{
		{"minimal", Config{Version: 1}, ""},
		{"version zero", Config{}, "unsupported version"},
		{"version 99", Config{Version: 99}, "unsupported version"},
		{"bare ref", Config{Version: 1, Refs: []string{"main"}}, "is not path=ref"},
		{"empty ref", Config{Version: 1, Refs: []string{"a="}}, "empty ref"},
		{"empty path", Config{Version: 1, Refs: []string{"=main"}}, "empty path"},
		{"wildcard", Config{Version: 1, Refs: []string{"*=main"}}, "use 'fallback: main'"},
		{"duplicate path", Config{Version: 1, Refs: []string{"a=main", "a/=dev"}}, "duplicate path 'a'"},
		{"fallback assignment", Config{Version: 1, Fallback: "a=main"}, "must be a bare ref"},
		{"negative jobs", Config{Version: 1, Jobs: -2}, "must not be negative"},
		{"sign both", Config{Version: 1, Sign: Sign{Default: true, Key: "K"}}, "mutually exclusive"},
		{"bad repository", Config{Version: 1, GitHub: GitHub{Repository: "acme"}}, "github.repository"},
		{"bad api url", Config{Version: 1, GitHub: GitHub{APIURL: "ghe.example.com"}}, "github.api_url"},
		{"bad server url", Config{Version: 1, ServerURL: "ftp://example.com"}, "server_url"},
		{"full", Config{
			Version:   1,
			Refs:      []string{"a=main", "b=v1"},
			Fallback:  "HEAD",
			Jobs:      2,
			Sign:      Sign{Default: true},
			GitHub:    GitHub{Repository: "acme/super", APIURL: "https://ghe.example.com/api/v3/"},
			ServerURL: "https://ghe.example.com",
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.cfg)
			if tt.want == "" {
				if len(errs) != 0 {
					t.Errorf("expected valid, got %v", errs)
				}
				return
			}
			if !containsSubstring(errs, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestConfigRefMap(t *testing.T) {
	cfg := &Config{Version: 1, Refs: []string{"a=main", "b/=v1"}, Fallback: "HEAD"}
	m, err := cfg.RefMap()
	if err != nil {
		t.Fatalf("RefMap: %v", err)
	}
	if diff := cmp.Diff([]string{"a=main", "b=v1", "HEAD"}, m.Strings()); diff != "" {
		t.Errorf("RefMap mismatch (-want +got):\n%s", diff)
	}

	empty, err := (&Config{Version: 1}).RefMap()
	if err != nil || !empty.Empty() {
		t.Errorf("empty config RefMap = %v, %v", empty.Strings(), err)
	}
}

func containsSubstring(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
