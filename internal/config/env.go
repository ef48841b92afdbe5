package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// NoInheritEnv names the variable that restricts config loading to the
// project file.
const NoInheritEnv = "UPDATE_SUBMODULES_NO_INHERIT"

// NoInherit reports whether NoInheritEnv holds a true boolean.
func NoInherit(getenv func(string) string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getenv(NoInheritEnv)))
	return err == nil && v
}

// TokenFile is the file consulted for a GitHub token when the environment
// has none.
const TokenFile = ".github-token"

// ResolveToken returns the GitHub API token: GITHUB_TOKEN, then GH_TOKEN,
// then the contents of the file at path. An empty result with a nil error
// means no token is configured.
func ResolveToken(getenv func(string) string, path string) (string, error) {
	for _, key := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v, nil
		}
	}
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DefaultBranch returns the branch a GitHub Actions run is building: the
// pull request head branch for pull_request events, else GITHUB_REF_NAME.
func DefaultBranch(getenv func(string) string) string {
	if getenv("GITHUB_EVENT_NAME") == "pull_request" {
		if b := getenv("GITHUB_HEAD_REF"); b != "" {
			return b
		}
	}
	return getenv("GITHUB_REF_NAME")
}

// OutputTarget returns the flag value when the flag was given, else the
// value of the environment variable key. "" disables the output.
func OutputTarget(flagValue string, flagSet bool, getenv func(string) string, key string) string {
	if flagSet {
		return flagValue
	}
	return getenv(key)
}
