// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"fmt"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/session"
)

// Option is a functional option for configuring the manager
type Option func(*AURM) error

// WithSessionDirectory stores session events as files in path
func WithSessionDirectory(path string) Option {
	return func(m *AURM) error {
		log, err := m.Logger("session", "directory", "path", path)
		if err != nil {
			return err
		}

		sess, err := session.NewDirectorySessionStore(path, log)
		if err != nil {
			return err
		}

		m.session = sess

		return nil
	}
}

// WithNoop enables noop mode, resources report what they would do without doing it
func WithNoop() Option {
	return func(m *AURM) error {
		m.noop = true
		return nil
	}
}

// WithProvider sets the helper used by resources that do not name one
func WithProvider(provider string) Option {
	return func(m *AURM) error {
		m.provider = provider
		return nil
	}
}

// WithBuildUser sets the build user used by resources that do not name one
func WithBuildUser(user string) Option {
	return func(m *AURM) error {
		if user != "" && !model.IsValidUserName(user) {
			return fmt.Errorf("invalid build user %q", user)
		}

		m.buildUser = user

		return nil
	}
}

// WithEnvironmentData sets the environment variables exposed to templates, replacing the process environment
func WithEnvironmentData(env map[string]string) Option {
	return func(m *AURM) error {
		m.envData = env
		return nil
	}
}

// WithData sets the initial data exposed to templates
func WithData(data map[string]any) Option {
	return func(m *AURM) error {
		m.data = iu.ShallowMerge(m.data, data)
		return nil
	}
}

// WithFacts merges facts over the gathered host facts
func WithFacts(facts map[string]any) Option {
	return func(m *AURM) error {
		m.extFacts = iu.DeepMergeMap(iu.CloneMap(m.extFacts), facts)
		return nil
	}
}

// WithFactsDirectories sets the directories facts files are read from
func WithFactsDirectories(dirs ...string) Option {
	return func(m *AURM) error {
		m.factDirs = append([]string{}, dirs...)
		return nil
	}
}
