// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

type SessionEvent interface {
	SessionEventID() string
	String() string
}

type Apply interface {
	Resources() []ResourceProperties
	Data() map[string]any
	Execute(ctx context.Context, mgr Manager, userLog Logger) (SessionStore, error)
}

type SessionStore interface {
	StartSession(Apply) error
	StopSession(destroy bool) (*SessionSummary, error)
	RecordEvent(SessionEvent) error
	EventsForResource(resourceType string, resourceName string) ([]TransactionEvent, error)
	AllEvents() ([]SessionEvent, error)
}

const TransactionEventProtocol = "io.choria.aurm.v1.transaction.event"
const SessionStartEventProtocol = "io.choria.aurm.v1.session.start"

// TransactionEvent represents a single event for a resource session
type TransactionEvent struct {
	Protocol     string             `json:"protocol" yaml:"protocol"`
	EventID      string             `json:"event_id" yaml:"event_id"`
	TimeStamp    time.Time          `json:"timestamp" yaml:"timestamp"`
	ResourceType string             `json:"type" yaml:"type"`
	Provider     string             `json:"provider" yaml:"provider"`
	Name         string             `json:"name" yaml:"name"`
	Alias        string             `json:"alias,omitempty" yaml:"alias,omitempty"`
	Ensure       string             `json:"ensure" yaml:"ensure"`               // Ensure is the requested state
	ActualEnsure string             `json:"actual_ensure" yaml:"actual_ensure"` // ActualEnsure is the state after the session
	Duration     time.Duration      `json:"duration" yaml:"duration"`
	Properties   ResourceProperties `json:"properties" yaml:"properties"`
	Status       ResourceState      `json:"status" yaml:"status"`
	NoopMessage  string             `json:"noop_message,omitempty" yaml:"noop_message,omitempty"`

	Errors  []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Changed bool     `json:"changed" yaml:"changed"`
	Failed  bool     `json:"failed" yaml:"failed"`
	Noop    bool     `json:"noop" yaml:"noop"`
}

type SessionStartEvent struct {
	Protocol  string    `json:"protocol" yaml:"protocol"`
	EventID   string    `json:"event_id" yaml:"event_id"`
	TimeStamp time.Time `json:"timestamp" yaml:"timestamp"`
}

func NewSessionStartEvent() *SessionStartEvent {
	return &SessionStartEvent{
		Protocol:  SessionStartEventProtocol,
		EventID:   ksuid.New().String(),
		TimeStamp: time.Now().UTC(),
	}
}

func NewTransactionEvent(typeName string, name string, alias string) *TransactionEvent {
	return &TransactionEvent{
		Protocol:     TransactionEventProtocol,
		EventID:      ksuid.New().String(),
		TimeStamp:    time.Now().UTC(),
		ResourceType: typeName,
		Name:         name,
		Alias:        alias,
	}
}

func (t *SessionStartEvent) SessionEventID() string { return t.EventID }
func (t *SessionStartEvent) String() string {
	return fmt.Sprintf("session %s started %s", t.EventID, t.TimeStamp.Format(time.RFC3339))
}

func (t *TransactionEvent) SessionEventID() string { return t.EventID }

// UnmarshalJSON decodes an event, properties and status are decoded into the types matching the resource type
func (t *TransactionEvent) UnmarshalJSON(data []byte) error {
	type plain TransactionEvent

	aux := struct {
		*plain
		Properties json.RawMessage `json:"properties"`
		Status     json.RawMessage `json:"status"`
	}{plain: (*plain)(t)}

	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	if t.ResourceType != AURTypeName {
		return nil
	}

	if len(aux.Properties) > 0 && string(aux.Properties) != "null" {
		prop := &AURResourceProperties{}
		err = json.Unmarshal(aux.Properties, prop)
		if err != nil {
			return fmt.Errorf("properties: %w", err)
		}
		prop.Type = AURTypeName
		t.Properties = prop
	}

	if len(aux.Status) > 0 && string(aux.Status) != "null" {
		status := &ExecutionResult{}
		err = json.Unmarshal(aux.Status, status)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		t.Status = status
	}

	return nil
}

// LogStatus logs the outcome of the event at a level matching how interesting it is
func (t *TransactionEvent) LogStatus(log Logger) {
	args := []any{
		"ensure", t.Ensure,
		"runtime", t.Duration.Truncate(time.Millisecond),
		"provider", t.Provider,
	}

	if t.Noop {
		if t.NoopMessage != "" {
			args = append(args, "noop", t.NoopMessage)
		} else {
			args = append(args, "noop", true)
		}
	}

	switch {
	case t.Failed:
		log.Error(fmt.Sprintf("%s#%s failed", t.ResourceType, t.Name), append(args, "errors", t.Errors)...)
	case t.Changed:
		log.Warn(fmt.Sprintf("%s#%s changed", t.ResourceType, t.Name), args...)
	default:
		log.Info(fmt.Sprintf("%s#%s stable", t.ResourceType, t.Name), args...)
	}
}

func (t *TransactionEvent) String() string {
	switch {
	case t.Failed:
		return fmt.Sprintf("%s#%s failed ensure=%s runtime=%v errors=%v provider=%s", t.ResourceType, t.Name, t.Ensure, t.Duration, t.Errors, t.Provider)
	case t.Changed:
		return fmt.Sprintf("%s#%s changed ensure=%s runtime=%v provider=%s", t.ResourceType, t.Name, t.Ensure, t.Duration, t.Provider)
	default:
		return fmt.Sprintf("%s#%s ensure=%s runtime=%v provider=%s", t.ResourceType, t.Name, t.Ensure, t.Duration, t.Provider)
	}
}

// SessionSummary provides a statistical summary of a session
type SessionSummary struct {
	StartTime        time.Time     `json:"start_time" yaml:"start_time"`
	EndTime          time.Time     `json:"end_time" yaml:"end_time"`
	TotalDuration    time.Duration `json:"total_duration" yaml:"total_duration"`
	TotalResources   int           `json:"total_resources" yaml:"total_resources"`
	UniqueResources  int           `json:"unique_resources" yaml:"unique_resources"`
	ChangedResources int           `json:"changed_resources" yaml:"changed_resources"`
	FailedResources  int           `json:"failed_resources" yaml:"failed_resources"`
	StableResources  int           `json:"stable_resources" yaml:"stable_resources"`
	NoopResources    int           `json:"noop_resources" yaml:"noop_resources"`
	TotalErrors      int           `json:"total_errors" yaml:"total_errors"`
}

// BuildSessionSummary creates a summary report from all events in a session
func BuildSessionSummary(events []SessionEvent) *SessionSummary {
	summary := &SessionSummary{}
	uniques := map[string]struct{}{}
	var totalTime time.Duration

	for _, event := range events {
		switch e := event.(type) {
		case *SessionStartEvent:
			summary.StartTime = e.TimeStamp

		case *TransactionEvent:
			totalTime += e.Duration
			summary.TotalResources++
			uniques[e.ResourceType+"#"+e.Name] = struct{}{}

			if e.TimeStamp.After(summary.EndTime) {
				summary.EndTime = e.TimeStamp
			}

			if e.Noop {
				summary.NoopResources++
			}

			switch {
			case e.Failed:
				summary.FailedResources++
				summary.TotalErrors += max(len(e.Errors), 1)
			case e.Changed:
				summary.ChangedResources++
			default:
				summary.StableResources++
			}
		}
	}

	summary.UniqueResources = len(uniques)

	if !summary.StartTime.IsZero() && !summary.EndTime.IsZero() {
		summary.TotalDuration = summary.EndTime.Sub(summary.StartTime)
	} else {
		summary.TotalDuration = totalTime
	}

	return summary
}

// String returns a human-readable summary of the session
func (s *SessionSummary) String() string {
	return fmt.Sprintf("Session: %d resources, %d changed, %d failed, %d stable, %d noop, duration=%v",
		s.TotalResources, s.ChangedResources, s.FailedResources, s.StableResources, s.NoopResources, s.TotalDuration)
}
