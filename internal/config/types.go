// Package config loads update-submodules.yaml: layered discovery, merging,
// validation and the environment defaults used by the CLI.
package config

// Config represents the update-submodules.yaml configuration file.
type Config struct {
	Version int `yaml:"version"`

	// Refs are "path=ref" assignments. Fallback applies to every submodule
	// without an explicit assignment.
	Refs     []string `yaml:"refs,omitempty"`
	Fallback string   `yaml:"fallback,omitempty"`

	Jobs     int      `yaml:"jobs,omitempty"`
	Messages []string `yaml:"messages,omitempty"`
	Sign     Sign     `yaml:"sign,omitempty"`

	Local  Local  `yaml:"local,omitempty"`
	GitHub GitHub `yaml:"github,omitempty"`

	// ServerURL is the web root used for step summary links.
	ServerURL string `yaml:"server_url,omitempty"`
}

// Sign configures commit signing for the local backend.
type Sign struct {
	Default bool   `yaml:"default,omitempty"`
	Key     string `yaml:"key,omitempty"`
}

// Local holds settings for the local command.
type Local struct {
	NoReset bool `yaml:"no_reset,omitempty"`
	Push    bool `yaml:"push,omitempty"`
}

// GitHub holds settings for the github command.
type GitHub struct {
	Repository string `yaml:"repository,omitempty"`
	Branch     string `yaml:"branch,omitempty"`
	APIURL     string `yaml:"api_url,omitempty"`
}
