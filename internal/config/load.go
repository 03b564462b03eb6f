package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "smolview.yaml"
	// EnvFile names a config file when no -config flag is given.
	EnvFile = "SMOLVIEW_CONFIG"
)

// Load layers the defaults, at most one config file and the flags, in that
// order, and validates the result.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	explicit := ""
	if f != nil {
		explicit = f.Config
	}
	if path := Locate(explicit); path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return nil, err
		}
	}

	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Locate picks the config file: explicit if set, then $SMOLVIEW_CONFIG,
// then smolview.yaml in the working directory, then config.yaml in
// UserDir. It returns "" when none applies.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvFile); env != "" {
		return env
	}
	for _, path := range []string{FileName, UserFile()} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// UserDir is the per-user smolview config directory.
func UserDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "smolview")
}

// UserFile is the config file inside UserDir.
func UserFile() string {
	return filepath.Join(UserDir(), "config.yaml")
}

// ReadFile overlays the YAML document at path onto c. Keys that match no
// field are rejected. An empty file leaves c unchanged.
func (c *Config) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
