package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the default project config file name.
const FileName = "update-submodules.yaml"

const configDirName = "update-submodules"

// ConfigLevel is where a config layer comes from. Later levels override
// earlier ones.
type ConfigLevel string

const (
	LevelSystem  ConfigLevel = "system"
	LevelUser    ConfigLevel = "user"
	LevelProject ConfigLevel = "project"
)

// ConfigLayerInfo describes a discovered config file and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  ConfigLevel
	Loaded bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// ProjectPath is the project config. Empty means FileName in the
	// current directory.
	ProjectPath string

	// SystemConfigPath and UserConfigPath override the OS defaults of the
	// inherited layers. Point them at a nonexistent file to skip a layer.
	SystemConfigPath string
	UserConfigPath   string

	// NoInherit drops the system and user layers so only the project
	// config applies.
	NoInherit bool
}

// DiscoverPaths lists the config layers to read in merge order. A file named
// by more than one level is read once, at its highest level.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	project := opts.ProjectPath
	if project == "" {
		project = FileName
	}
	candidates := []ConfigLayerInfo{{Level: LevelProject, Path: project}}
	if !opts.NoInherit {
		candidates = append([]ConfigLayerInfo{
			{Level: LevelSystem, Path: overrideOr(opts.SystemConfigPath, LevelSystem)},
			{Level: LevelUser, Path: overrideOr(opts.UserConfigPath, LevelUser)},
		}, candidates...)
	}

	// Walk from the highest level down so duplicates keep their top level.
	seen := make(map[string]bool)
	var layers []ConfigLayerInfo
	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		if c.Path == "" {
			continue
		}
		key, err := filepath.Abs(c.Path)
		if err != nil {
			key = c.Path
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		layers = append([]ConfigLayerInfo{c}, layers...)
	}
	return layers
}

func overrideOr(path string, level ConfigLevel) string {
	if path != "" {
		return path
	}
	return defaultLayerPath(level)
}

// LoadLayered reads every discovered layer that exists, merges them in order
// and validates the result. With no layer on disk it returns an empty
// version 1 config. The layers report what was read, for diagnostics; on a
// parse failure the offending layer carries the error.
func LoadLayered(opts DiscoverOptions) (*Config, []ConfigLayerInfo, error) {
	layers := DiscoverPaths(opts)
	merged := &Config{Version: 1}
	loaded := 0
	for i := range layers {
		cfg, err := parseFile(layers[i].Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			layers[i].Err = err
			return nil, layers, err
		}
		layers[i].Loaded = true
		if loaded == 0 {
			merged = cfg
		} else if merged, err = Merge(merged, cfg); err != nil {
			return nil, layers, fmt.Errorf("%s config %s: %w", layers[i].Level, layers[i].Path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return merged, layers, nil
	}
	if errs := Validate(merged); len(errs) > 0 {
		return nil, layers, &ValidationError{Errors: errs}
	}
	return merged, layers, nil
}

// defaultLayerPath is the platform location of an inherited layer, or "" when
// the platform has none.
func defaultLayerPath(level ConfigLevel) string {
	switch level {
	case LevelSystem:
		if runtime.GOOS == "windows" {
			root := os.Getenv("ProgramData")
			if root == "" {
				root = `C:\ProgramData`
			}
			return filepath.Join(root, configDirName, FileName)
		}
		return filepath.Join("/etc", configDirName, FileName)
	case LevelUser:
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		return filepath.Join(dir, configDirName, FileName)
	}
	return ""
}
