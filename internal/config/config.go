// Package config provides configuration loading for the signoff CLI.
//
// Configuration comes from a single YAML file resolved in order: the
// --config flag, the SIGNOFF_CONFIG environment variable, then
// ~/.signoff/config.yaml when present. Every field is optional over the
// defaults, so a bare machine works with no file at all. The only
// expansion performed is ${VAR} and ${VAR:-default} in paths for
// portability.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable pointing at the config file.
const EnvVar = "SIGNOFF_CONFIG"

// Config is the signoff CLI configuration.
type Config struct {
	// Database is the SQLite file holding the persisted records.
	Database string `yaml:"database"`

	// Roster is the CUE file listing eligible signers.
	Roster string `yaml:"roster"`

	// ExportDir is the directory receipt workbooks are written into.
	ExportDir string `yaml:"export_dir"`

	// Locale is the BCP 47 tag used for name collation in listings
	// and receipts.
	Locale string `yaml:"locale"`

	// Title heads every exported receipt.
	Title string `yaml:"title"`
}

// Default returns the default configuration, rooted at ~/.signoff.
// These are complete working values, not placeholders - signoff runs
// without any config file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	root := filepath.Join(homeDir, ".signoff")

	return &Config{
		Database:  filepath.Join(root, "signoff.db"),
		Roster:    filepath.Join(root, "roster.cue"),
		ExportDir: ".",
		Locale:    "en",
		Title:     "Safety / PPE Document Receipt",
	}
}

// Resolve loads the configuration for a CLI run. An explicit path (the
// --config flag) wins; otherwise SIGNOFF_CONFIG; otherwise the defaults,
// merged with ~/.signoff/config.yaml when that file exists. Explicit
// paths must exist - only the implicit home file is optional.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	if path := os.Getenv(EnvVar); path != "" {
		return LoadFile(path)
	}

	cfg := Default()
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".signoff", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFile(path); err != nil {
				return nil, err
			}
		}
	}
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults. Fields absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Database = expandVars(c.Database, vars)
	c.Roster = expandVars(c.Roster, vars)
	c.ExportDir = expandVars(c.ExportDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required"))
	}
	if c.Roster == "" {
		errs = append(errs, fmt.Errorf("roster is required"))
	}
	if c.ExportDir == "" {
		errs = append(errs, fmt.Errorf("export_dir is required"))
	}
	if c.Locale == "" {
		errs = append(errs, fmt.Errorf("locale is required"))
	}
	if c.Title == "" {
		errs = append(errs, fmt.Errorf("title is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureDirs creates the directories the configured paths live in.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		filepath.Dir(c.Database),
		c.ExportDir,
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
