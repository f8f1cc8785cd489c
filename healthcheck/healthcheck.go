// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package healthcheck renders session summaries as Nagios plugin results so that
// drift from the desired package state can be monitored
package healthcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/choria-io/aurm/model"
)

// Status is a Nagios plugin status
type Status int

const (
	OK Status = iota
	Warning
	Critical
	Unknown
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode is the process exit code Nagios expects for the status
func (s Status) ExitCode() int {
	if s < OK || s > Unknown {
		return int(Unknown)
	}

	return int(s)
}

// Result is the outcome of a check
type Result struct {
	Status   Status
	Output   string
	PerfData []PerfData
}

// PerfData is a single Nagios performance data item
type PerfData struct {
	Label string
	Value string
}

// FromSummary evaluates a noop session, failures are critical and resources that would change are a warning
func FromSummary(summary *model.SessionSummary, err error) *Result {
	if summary == nil {
		if err == nil {
			err = fmt.Errorf("no session summary")
		}

		return &Result{Status: Unknown, Output: err.Error()}
	}

	result := &Result{
		PerfData: []PerfData{
			{Label: "total", Value: fmt.Sprintf("%d", summary.TotalResources)},
			{Label: "stable", Value: fmt.Sprintf("%d", summary.StableResources)},
			{Label: "changed", Value: fmt.Sprintf("%d", summary.ChangedResources)},
			{Label: "failed", Value: fmt.Sprintf("%d", summary.FailedResources)},
			{Label: "time", Value: fmt.Sprintf("%.3fs", summary.TotalDuration.Round(time.Millisecond).Seconds())},
		},
	}

	switch {
	case summary.FailedResources > 0:
		result.Status = Critical
		result.Output = fmt.Sprintf("%d of %d resources failed", summary.FailedResources, summary.TotalResources)
	case err != nil:
		result.Status = Critical
		result.Output = err.Error()
	case summary.TotalResources == 0:
		result.Status = Unknown
		result.Output = "no resources were checked"
	case summary.ChangedResources > 0:
		result.Status = Warning
		result.Output = fmt.Sprintf("%d of %d resources are not in the desired state", summary.ChangedResources, summary.TotalResources)
	default:
		result.Status = OK
		result.Output = fmt.Sprintf("%d resources in the desired state", summary.TotalResources)
	}

	return result
}

// String is the Nagios plugin output line
func (r *Result) String() string {
	var perf []string
	for _, p := range r.PerfData {
		perf = append(perf, fmt.Sprintf("%s=%s", p.Label, p.Value))
	}

	line := fmt.Sprintf("%s: %s", r.Status, r.Output)
	if len(perf) > 0 {
		line = fmt.Sprintf("%s | %s", line, strings.Join(perf, " "))
	}

	return line
}
