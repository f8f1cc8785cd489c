// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the aurm configuration, a system file and a user file are merged with later files overriding earlier ones
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/manager"
	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/aur/helper"
)

// SystemFile is the system wide configuration file
const SystemFile = "/etc/choria/aurm/config.yaml"

// Config is the aurm configuration
type Config struct {
	// Provider is the default helper, empty selects the best available
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	// BuildUser is the default user helpers run as
	BuildUser string `json:"build_user,omitempty" yaml:"build_user,omitempty"`
	// LogLevel is one of debug, info, warn or error
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	// LogFormat is text or json
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	// SessionDirectory stores session events on disk when set
	SessionDirectory string `json:"session_directory,omitempty" yaml:"session_directory,omitempty"`
	// MetricsTextfile is where metrics are written for the node exporter textfile collector
	MetricsTextfile string `json:"metrics_textfile,omitempty" yaml:"metrics_textfile,omitempty"`
	// Noop reports what would change without changing anything
	Noop bool `json:"noop,omitempty" yaml:"noop,omitempty"`
	// Data is made available to templates
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`

	// Files are the configuration files that were read
	Files []string `json:"-" yaml:"-"`
}

// UserFile is the configuration file for the current user
func UserFile() string {
	return filepath.Join(xdg.ConfigHome, "choria", "aurm", "config.yaml")
}

// Files are the configuration files in the order they are read
func Files() []string {
	return []string{SystemFile, UserFile()}
}

// Default is the configuration used when no files are found
func Default() *Config {
	return &Config{
		LogLevel:  "warn",
		LogFormat: manager.LogFormatText,
	}
}

// Load reads the standard configuration files, missing files are skipped
func Load() (*Config, error) {
	return LoadFiles(Files()...)
}

// LoadFiles reads files in order over the defaults, missing files are skipped
func LoadFiles(files ...string) (*Config, error) {
	cfg := Default()

	for _, file := range files {
		if !iu.FileExists(file) {
			continue
		}

		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}

		err = cfg.merge(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		cfg.Files = append(cfg.Files, file)
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseConfig parses a single configuration document over the defaults
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := Default()

	err := cfg.merge(r)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// merge decodes r over the current values, keys absent from r keep their values
func (c *Config) merge(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	data := c.Data
	c.Data = nil

	err = yaml.UnmarshalWithOptions(body, c, yaml.Strict())
	if err != nil {
		c.Data = data
		return err
	}

	c.Data = iu.DeepMergeMap(data, c.Data)
	c.SessionDirectory = expandPath(c.SessionDirectory)
	c.MetricsTextfile = expandPath(c.MetricsTextfile)

	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	_, err := manager.ParseLogLevel(c.LogLevel)
	if err != nil {
		return err
	}

	switch c.LogFormat {
	case "", manager.LogFormatText, manager.LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	if c.Provider != "" {
		var names []string
		for _, p := range helper.Profiles() {
			names = append(names, p.Name)
		}

		if !slices.Contains(names, c.Provider) {
			return fmt.Errorf("invalid provider %q, valid providers are %s", c.Provider, strings.Join(names, ", "))
		}
	}

	if c.BuildUser != "" && !model.IsValidUserName(c.BuildUser) {
		return fmt.Errorf("invalid build user %q", c.BuildUser)
	}

	return nil
}

// NewLogger creates a logger using the configured level and format writing to out
func (c *Config) NewLogger(out io.Writer) (model.Logger, error) {
	return manager.NewLogger(c.LogLevel, c.LogFormat, out)
}

// ManagerOptions are the manager options implied by the configuration
func (c *Config) ManagerOptions() []manager.Option {
	var opts []manager.Option

	if c.SessionDirectory != "" {
		opts = append(opts, manager.WithSessionDirectory(c.SessionDirectory))
	}
	if c.Noop {
		opts = append(opts, manager.WithNoop())
	}
	if c.Provider != "" {
		opts = append(opts, manager.WithProvider(c.Provider))
	}
	if c.BuildUser != "" {
		opts = append(opts, manager.WithBuildUser(c.BuildUser))
	}
	if len(c.Data) > 0 {
		opts = append(opts, manager.WithData(c.Data))
	}

	return opts
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
