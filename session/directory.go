// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
)

// DirectorySessionStore stores transaction events in a directory of files
type DirectorySessionStore struct {
	directory string
	log       model.Logger
	mu        sync.Mutex
}

var _ model.SessionStore = (*DirectorySessionStore)(nil)

// NewDirectorySessionStore creates a session store that keeps one file per event in directory
func NewDirectorySessionStore(directory string, logger model.Logger) (*DirectorySessionStore, error) {
	if directory == "" {
		return nil, fmt.Errorf("session directory path cannot be empty")
	}

	// Clean and make the directory path absolute to prevent path traversal
	absDir, err := filepath.Abs(filepath.Clean(directory))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	if absDir == "/" {
		return nil, fmt.Errorf("session directory cannot be the root directory")
	}

	return &DirectorySessionStore{
		log:       logger,
		directory: absDir,
	}, nil
}

// Directory is the absolute path events are stored in
func (s *DirectorySessionStore) Directory() string {
	return s.directory
}

// StartSession creates the session directory and records the session start
func (s *DirectorySessionStore) StartSession(manifest model.Apply) error {
	s.log.Debug("Creating new session record", "resources", len(manifest.Resources()), "store", "directory")

	s.mu.Lock()
	err := os.MkdirAll(s.directory, 0755)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	start := model.NewSessionStartEvent()

	return s.RecordEvent(start)
}

// EventsForResource returns all events for a given resource, the events are sorted in time order with latest event at the end
func (s *DirectorySessionStore) EventsForResource(resourceType string, resourceName string) ([]model.TransactionEvent, error) {
	// Get all events from the session
	allEvents, err := s.AllEvents()
	if err != nil {
		return nil, err
	}

	return filterEvents(allEvents, resourceType, resourceName), nil
}

// RecordEvent writes event to a file named after its id
func (s *DirectorySessionStore) RecordEvent(event model.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateMetrics(event)

	// Validate EventID is a valid ksuid to prevent directory traversal
	// Valid ksuids contain only safe characters (base62) and no path separators
	_, err := ksuid.Parse(event.SessionEventID())
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	if !iu.IsDirectory(s.directory) {
		return fmt.Errorf("session store %s does not exist", s.directory)
	}

	// Marshal event to JSON
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return err
	}

	// Write to file named <eventid>.event
	// Safe to use EventID directly since it's validated as a ksuid
	filename := filepath.Join(s.directory, event.SessionEventID()+".event")
	s.log.Debug("Recording event", "filename", filename)

	return os.WriteFile(filename, data, 0644)
}

// StopSession summarizes the session, destroy removes the session directory
func (s *DirectorySessionStore) StopSession(destroy bool) (*model.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.allEventsUnlocked()
	if err != nil {
		return nil, err
	}

	summary := model.BuildSessionSummary(events)

	if destroy && iu.IsDirectory(s.directory) {
		err = os.RemoveAll(s.directory)
		if err != nil {
			s.log.Error("Failed to remove session directory", "error", err)
		}
	}

	return summary, nil
}

// AllEvents returns all events in the session sorted by time order (oldest first)
func (s *DirectorySessionStore) AllEvents() ([]model.SessionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allEventsUnlocked()
}

func (s *DirectorySessionStore) allEventsUnlocked() ([]model.SessionEvent, error) {
	var events []model.SessionEvent

	// Read all files in the directory
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist yet, return empty slice
			return events, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	// Process each .event file
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".event") {
			continue
		}

		// Read the event file
		filename := filepath.Join(s.directory, entry.Name())
		data, err := os.ReadFile(filename)
		if err != nil {
			s.log.Error("Failed to read event file", "filename", filename, "error", err)
			continue
		}

		// Try to determine event type by examining the protocol field
		var eventType struct {
			Protocol string `json:"protocol"`
		}
		err = json.Unmarshal(data, &eventType)
		if err != nil {
			s.log.Error("Failed to parse event type", "filename", filename, "error", err)
			continue
		}

		// Parse based on protocol
		var event model.SessionEvent
		switch eventType.Protocol {
		case model.SessionStartEventProtocol:
			var startEvent model.SessionStartEvent
			err = json.Unmarshal(data, &startEvent)
			if err != nil {
				s.log.Error("Failed to parse session start event", "filename", filename, "error", err)
				continue
			}
			event = &startEvent

		case model.TransactionEventProtocol:
			var txEvent model.TransactionEvent
			err = json.Unmarshal(data, &txEvent)
			if err != nil {
				s.log.Error("Failed to parse transaction event", "filename", filename, "error", err)
				continue
			}
			event = &txEvent

		default:
			s.log.Warn("Unknown event protocol", "filename", filename, "protocol", eventType.Protocol)
			continue
		}

		events = append(events, event)
	}

	// ksuids only have second resolution so the event time orders first
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := eventTime(events[i]), eventTime(events[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}

		return events[i].SessionEventID() < events[j].SessionEventID()
	})

	return events, nil
}

func eventTime(e model.SessionEvent) time.Time {
	switch event := e.(type) {
	case *model.SessionStartEvent:
		return event.TimeStamp
	case *model.TransactionEvent:
		return event.TimeStamp
	default:
		return time.Time{}
	}
}
