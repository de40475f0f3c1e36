// Package config loads tsls settings from an optional tsls.toml file.
// Command-line flags override file values; see cmd/tsls.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/diag"
)

// FileName is the settings file looked up from the working directory.
const FileName = "tsls.toml"

// Config holds the settings shared by every subcommand.
type Config struct {
	// Language selects the registered language (e.g., "go").
	Language string `toml:"language"`

	// Rules is a path to a rule-set document replacing the language's
	// built-in one.
	Rules string `toml:"rules"`

	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	// Jobs is the number of parallel workers for batch commands.
	Jobs int `toml:"jobs"`

	// MaxBytes skips files larger than this size. If 0, 2 MiB is used.
	MaxBytes int64 `toml:"max_bytes"`

	// MaxDiagnostics bounds the diagnostics kept per file.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Language:       "go",
		LogLevel:       "info",
		Jobs:           runtime.NumCPU(),
		MaxDiagnostics: diag.DefaultMax,
	}
}

// Load reads path on top of Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Rules != "" && !filepath.IsAbs(cfg.Rules) {
		cfg.Rules = filepath.Join(filepath.Dir(path), cfg.Rules)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the explicit path if set, otherwise the nearest FileName
// above the working directory, otherwise Default.
func Discover(explicit string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(".")
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []error
	if strings.TrimSpace(c.Language) == "" {
		problems = append(problems, errors.New("language is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err)
	}
	if c.Jobs < 0 {
		problems = append(problems, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.MaxBytes < 0 {
		problems = append(problems, fmt.Errorf("max_bytes must not be negative, got %d", c.MaxBytes))
	}
	if c.MaxDiagnostics < 0 {
		problems = append(problems, fmt.Errorf("max_diagnostics must not be negative, got %d", c.MaxDiagnostics))
	}
	return errors.Join(problems...)
}

// ResolveLanguage returns the configured language.
func (c Config) ResolveLanguage() (cst.Language, error) {
	language := cst.Get(c.Language)
	if language == nil {
		return nil, fmt.Errorf("unsupported language: %s (available: %s)", c.Language, strings.Join(cst.List(), ", "))
	}
	return language, nil
}

// RuleSet returns the rule-set document: the Rules file when set, the
// language's built-in rules otherwise.
func (c Config) RuleSet(language cst.Language) (string, error) {
	if c.Rules == "" {
		return language.Rules(), nil
	}
	data, err := os.ReadFile(c.Rules)
	if err != nil {
		return "", fmt.Errorf("read rules: %w", err)
	}
	return string(data), nil
}
