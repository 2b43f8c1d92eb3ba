package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nullishamy/dakko/internal/logging"
)

// EnvConfig names a configuration file that takes precedence over discovery.
const EnvConfig = "DAKKO_CONFIG"

// ProjectFileName is the per-project configuration file searched for by
// ResolveConfigPath.
const ProjectFileName = ".dakko.yaml"

// ErrNoProjectFile is returned by FindProjectFile when no directory between
// the start directory and the filesystem root holds a ProjectFileName.
var ErrNoProjectFile = errors.New("no project configuration found")

// ResolveConfigPath determines which configuration file to load.
// It checks (in order):
//  1. flagValue (--config CLI flag)
//  2. DAKKO_CONFIG env var
//  3. a .dakko.yaml in startDir or any parent
//
// Returns an empty string when none applies, meaning the global file.
// The returned path is absolute (or empty) and is not required to exist.
func ResolveConfigPath(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbs(ctx, flagValue)
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return toAbs(ctx, envPath)
	}

	path, err := FindProjectFile(startDir)
	if err != nil {
		if !errors.Is(err, ErrNoProjectFile) {
			logger := logging.FromContext(ctx)
			logger.Warn().
				Str("component", "config").
				Err(err).
				Str("start_dir", startDir).
				Msg("unexpected error during project configuration discovery")
		}
		return ""
	}
	return path
}

// FindProjectFile walks up from dir looking for ProjectFileName.
func FindProjectFile(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	current := absDir
	for {
		candidate := filepath.Join(current, ProjectFileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoProjectFile
		}
		current = parent
	}
}

func toAbs(ctx context.Context, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("path", path).
			Msg("failed to resolve absolute path for configuration file")
		return path
	}
	return abs
}
