package config

import (
	"fmt"
	"strings"
)

// Merge combines two configs where overlay takes precedence over base.
// This implements the hierarchical merge semantics:
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - refs: merge by path, same path in overlay replaces the base assignment
//   - messages: overlay replaces base when it declares any
//   - sign: overlay replaces base when it declares either field
//   - other scalars: overlay wins when set
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := &Config{}

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	result.Refs = mergeRefs(base.Refs, overlay.Refs)
	result.Fallback = pick(base.Fallback, overlay.Fallback)

	result.Jobs = base.Jobs
	if overlay.Jobs != 0 {
		result.Jobs = overlay.Jobs
	}

	result.Messages = base.Messages
	if len(overlay.Messages) > 0 {
		result.Messages = overlay.Messages
	}

	result.Sign = base.Sign
	if overlay.Sign.Default || overlay.Sign.Key != "" {
		result.Sign = overlay.Sign
	}

	result.Local = Local{
		NoReset: base.Local.NoReset || overlay.Local.NoReset,
		Push:    base.Local.Push || overlay.Local.Push,
	}
	result.GitHub = GitHub{
		Repository: pick(base.GitHub.Repository, overlay.GitHub.Repository),
		Branch:     pick(base.GitHub.Branch, overlay.GitHub.Branch),
		APIURL:     pick(base.GitHub.APIURL, overlay.GitHub.APIURL),
	}
	result.ServerURL = pick(base.ServerURL, overlay.ServerURL)

	return result, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; validation will catch this
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: one layer declares version %d, another declares version %d; all config layers must agree on version", base, overlay)
	}
	return nil
}

func pick(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeRefs keeps base order and replaces assignments whose path the overlay
// also assigns. Entries without "=" are kept as-is for validation to report.
func mergeRefs(base, overlay []string) []string {
	if len(base) == 0 {
		return overlay
	}
	if len(overlay) == 0 {
		return base
	}

	overlayPaths := make(map[string]bool, len(overlay))
	for _, r := range overlay {
		overlayPaths[refPath(r)] = true
	}

	var result []string
	for _, r := range base {
		if !overlayPaths[refPath(r)] {
			result = append(result, r)
		}
	}

	result = append(result, overlay...)

	return result
}

func refPath(r string) string {
	path, _, _ := strings.Cut(r, "=")
	return strings.Trim(strings.TrimSpace(path), "/")
}
