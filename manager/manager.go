// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/choria-io/aurm/internal/cmdrunner"
	"github.com/choria-io/aurm/internal/facts"
	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/session"
	"github.com/choria-io/aurm/templates"
)

// FactsTimeout bounds how long host facts gathering may take
const FactsTimeout = 2 * time.Second

var _ model.Manager = (*AURM)(nil)

// AURM wires together logging, facts, data, the command runner and the session store for reconcilers
type AURM struct {
	session   model.SessionStore
	log       model.Logger
	data      map[string]any
	envData   map[string]string
	facts     map[string]any
	extFacts  map[string]any
	factDirs  []string
	noop      bool
	provider  string
	buildUser string

	mu sync.Mutex
}

// NewManager creates a new manager, without a session directory events are held in memory
func NewManager(log model.Logger, opts ...Option) (*AURM, error) {
	mgr := &AURM{
		log:      log,
		data:     map[string]any{},
		factDirs: facts.Directories(),
	}

	for _, opt := range opts {
		err := opt(mgr)
		if err != nil {
			return nil, err
		}
	}

	if mgr.session == nil {
		sessionLog, err := mgr.Logger("session", "memory")
		if err != nil {
			return nil, err
		}

		mgr.session, err = session.NewMemorySessionStore(sessionLog)
		if err != nil {
			return nil, err
		}
	}

	return mgr, nil
}

// SetData replaces the data available to templates and returns the previous data
func (m *AURM) SetData(data map[string]any) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.data
	if data == nil {
		data = map[string]any{}
	}
	m.data = data

	return old
}

// Data returns the data available to templates
func (m *AURM) Data() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.data
}

// FactsRaw returns the system facts as JSON
func (m *AURM) FactsRaw(ctx context.Context) (json.RawMessage, error) {
	f, err := m.Facts(ctx)
	if err != nil {
		return nil, err
	}

	return json.Marshal(f)
}

// Facts gathers the host facts once and caches them for the life of the manager
func (m *AURM) Facts(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.facts != nil {
		return m.facts, nil
	}

	log := m.log.With("component", "facts")

	to, cancel := context.WithTimeout(ctx, FactsTimeout)
	defer cancel()

	f, err := facts.StandardFacts(to, log, m.factDirs...)
	if err != nil {
		return nil, err
	}

	if len(m.extFacts) > 0 {
		f = iu.DeepMergeMap(f, m.extFacts)
	}

	m.facts = f

	return m.facts, nil
}

// Logger creates a new logger with the provided key-value pairs added to the context
func (m *AURM) Logger(args ...any) (model.Logger, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("invalid logger arguments, must be key value pairs")
	}

	return m.log.With(args...), nil
}

// NewRunner creates a new command runner instance
func (m *AURM) NewRunner() (model.CommandRunner, error) {
	log, err := m.Logger("component", "runner")
	if err != nil {
		return nil, err
	}

	return cmdrunner.NewCommandRunner(log)
}

// NoopMode indicates that resources should only report what they would change
func (m *AURM) NoopMode() bool {
	return m.noop
}

// DefaultProvider is the helper used when a resource does not name one, empty selects automatically
func (m *AURM) DefaultProvider() string {
	return m.provider
}

// DefaultBuildUser is the unprivileged user helpers run as when a resource does not name one
func (m *AURM) DefaultBuildUser() string {
	if m.buildUser != "" {
		return m.buildUser
	}

	// only meaningful when running as root through sudo
	if os.Geteuid() == 0 {
		user := os.Getenv("SUDO_USER")
		if user != "root" {
			return user
		}
	}

	return ""
}

// TemplateEnvironment builds the environment used to resolve templates in resource properties
func (m *AURM) TemplateEnvironment(ctx context.Context) (*templates.Env, error) {
	f, err := m.Facts(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	env := &templates.Env{
		Facts:   f,
		Data:    m.data,
		Environ: map[string]string{},
	}

	if m.envData != nil {
		maps.Copy(env.Environ, m.envData)
	} else {
		for _, line := range os.Environ() {
			k, v, ok := strings.Cut(line, "=")
			if ok {
				env.Environ[k] = v
			}
		}
	}

	return env, nil
}

// StartSession starts a new session in the session store
func (m *AURM) StartSession(apply model.Apply) (model.SessionStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.session.StartSession(apply)
	if err != nil {
		return nil, err
	}

	return m.session, nil
}

// SessionSummary summarizes the events recorded so far without destroying the session
func (m *AURM) SessionSummary() (*model.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session.StopSession(false)
}

// RecordEvent records an event in the session store
func (m *AURM) RecordEvent(event *model.TransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return fmt.Errorf("no session store available")
	}

	if event == nil {
		return fmt.Errorf("no event to record")
	}

	return m.session.RecordEvent(event)
}

// SessionStore is the store events are recorded in
func (m *AURM) SessionStore() model.SessionStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session
}
