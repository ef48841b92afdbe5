package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/update-submodules/internal/ghapi"
	"github.com/bianoble/update-submodules/internal/refmap"
)

// Load reads and validates an update-submodules.yaml configuration file.
func Load(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// parseFile reads a config file without validating it. Layers are
// validated once merged.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d: only version 1 is supported", cfg.Version))
	}

	seen := make(map[string]bool)
	for i, r := range cfg.Refs {
		prefix := fmt.Sprintf("refs[%d]", i)
		path, ref, ok := strings.Cut(r, "=")
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: %q is not path=ref; use 'fallback' for a ref applied to every submodule", prefix, r))
			continue
		}
		if _, err := refmap.Parse([]string{r}); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
			continue
		}
		path = strings.Trim(strings.TrimSpace(path), "/")
		if path == refmap.Wildcard {
			errs = append(errs, fmt.Sprintf("%s: use 'fallback: %s' instead of '*=%s'", prefix, strings.TrimSpace(ref), strings.TrimSpace(ref)))
			continue
		}
		if seen[path] {
			errs = append(errs, fmt.Sprintf("%s: duplicate path '%s'", prefix, path))
		}
		seen[path] = true
	}

	if strings.Contains(cfg.Fallback, "=") {
		errs = append(errs, fmt.Sprintf("fallback: %q must be a bare ref", cfg.Fallback))
	}

	if cfg.Jobs < 0 {
		errs = append(errs, fmt.Sprintf("jobs: must not be negative, got %d", cfg.Jobs))
	}

	if cfg.Sign.Default && cfg.Sign.Key != "" {
		errs = append(errs, "sign: 'default' and 'key' are mutually exclusive")
	}

	if cfg.GitHub.Repository != "" {
		if _, err := ghapi.ParseRepo(cfg.GitHub.Repository); err != nil {
			errs = append(errs, fmt.Sprintf("github.repository: %v", err))
		}
	}
	if cfg.GitHub.APIURL != "" {
		if err := checkHTTPURL(cfg.GitHub.APIURL); err != nil {
			errs = append(errs, fmt.Sprintf("github.api_url: %v", err))
		}
	}
	if cfg.ServerURL != "" {
		if err := checkHTTPURL(cfg.ServerURL); err != nil {
			errs = append(errs, fmt.Sprintf("server_url: %v", err))
		}
	}

	return errs
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	return nil
}

// RefMap returns the configured refs and fallback as a RefMap.
func (c *Config) RefMap() (refmap.RefMap, error) {
	args := append([]string(nil), c.Refs...)
	if c.Fallback != "" {
		args = append(args, c.Fallback)
	}
	return refmap.Parse(args)
}
