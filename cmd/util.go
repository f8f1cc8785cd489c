// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/aurm/config"
	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/manager"
	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
)

// managerOptions are command line settings that override the configuration
type managerOptions struct {
	noop     bool
	provider string
	session  string
	readEnv  bool
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFiles(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	switch {
	case debug:
		cfg.LogLevel = "debug"
	case info:
		cfg.LogLevel = "info"
	}

	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	return cfg, nil
}

// newManager creates a manager from the configuration and command line, it returns the manager, the user output logger and the configuration
func newManager(o managerOptions) (*manager.AURM, model.Logger, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if o.noop {
		cfg.Noop = true
	}
	if o.provider != "" {
		cfg.Provider = o.provider
	}
	if o.session != "" {
		cfg.SessionDirectory = o.session
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, f := range cfg.Files {
		logger.Debug("Loaded configuration", "file", f)
	}

	out, err := newOutputLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	env, err := dotEnvData(o.readEnv, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := append(cfg.ManagerOptions(), manager.WithEnvironmentData(env))

	mgr, err := manager.NewManager(logger, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.MetricsTextfile != "" {
		metrics.RegisterMetrics()
	}

	return mgr, out, cfg, nil
}

// writeMetrics saves metrics for the node exporter when a textfile is configured, failures are logged only
func writeMetrics(cfg *config.Config, log model.Logger) {
	if cfg == nil || cfg.MetricsTextfile == "" {
		return
	}

	err := metrics.WriteTextfile(cfg.MetricsTextfile, prometheus.DefaultGatherer)
	if err != nil {
		log.Error("Could not write metrics", "file", cfg.MetricsTextfile, "error", err)
	}
}

func dotEnvData(readEnv bool, log model.Logger) (map[string]string, error) {
	environ := os.Environ()
	res := make(map[string]string)
	re := regexp.MustCompile(`^(.+?)="*(.+?)"*$`)

	if readEnv {
		file, err := filepath.Abs(".env")
		if err != nil {
			return nil, err
		}

		if iu.FileExists(file) {
			log.Info("Reading environment variables from .env file", "file", file)

			env, err := os.Open(file)
			if err != nil {
				return res, err
			}
			defer env.Close()

			scanner := bufio.NewScanner(env)
			for scanner.Scan() {
				line := scanner.Text()
				matches := re.FindStringSubmatch(line)
				if len(matches) == 3 {
					environ = append(environ, line)
				}
			}
		}
	}

	for _, line := range environ {
		matches := re.FindStringSubmatch(line)
		if len(matches) == 3 {
			res[matches[1]] = matches[2]
		}
	}

	return res, nil
}

// newOutputLogger is the logger results are shown to the user with, JSON on stdout when configured and colored text otherwise
func newOutputLogger(cfg *config.Config) (model.Logger, error) {
	level := "info"
	if debug {
		level = "debug"
	}

	return manager.NewLogger(level, cfg.LogFormat, os.Stdout)
}
