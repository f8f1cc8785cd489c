// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NameSpace = "choria"
	Subsystem = "aurm"

	//ManifestApplyTime is a summary of the time taken to apply an entire manifest
	ManifestApplyTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "manifest_apply_duration_seconds"),
		Help: "Time taken to apply an entire manifest",
	}, []string{"source"})

	// ResourceApplyTime is a summary of the time taken to apply a particular resource
	ResourceApplyTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_apply_duration_seconds"),
		Help: "Time taken to apply a particular resource",
	}, []string{"type", "provider", "name"})

	// ResourceStateChanged counts how many resources were changed
	ResourceStateChanged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_state_changed_count"),
		Help: "How many resources were changed",
	}, []string{"type", "name"})

	// ResourceStateFailed counts how many resources failed
	ResourceStateFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_state_failed_count"),
		Help: "How many resources failed",
	}, []string{"type", "name"})

	// ResourceStateNoop counts how many resources were in noop mode
	ResourceStateNoop = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_state_noop_count"),
		Help: "How many resources were in noop mode",
	}, []string{"type", "name"})

	// ResourceStateTotal counts how many resources were processed
	ResourceStateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_state_total_count"),
		Help: "How many resources were processed",
	}, []string{"type", "name"})

	// ResourceStateStable counts how many resources were in stable state
	ResourceStateStable = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "resource_state_stable_count"),
		Help: "How many resources were in stable state",
	}, []string{"type", "name"})

	// HelperActionTime is a summary of the time helper and pacman invocations take
	HelperActionTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "helper_action_duration_seconds"),
		Help: "Time taken to execute helper actions",
	}, []string{"provider", "action"})

	// HelperActionFailures counts helper invocations that exited non zero
	HelperActionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "helper_action_failure_count"),
		Help: "How many helper actions failed",
	}, []string{"provider", "action"})

	// PackageQueryTime is a summary of the time taken to query the installed state of packages
	PackageQueryTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "package_query_duration_seconds"),
		Help: "Time taken to query installed package state",
	}, []string{"provider"})

	// FactGatherTime is a summary of the time taken to gather facts
	FactGatherTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "facts_gather_duration_seconds"),
		Help: "Time taken to gather facts",
	}, []string{})

	registerOnce sync.Once
)

// RegisterMetrics registers all collectors with the default registry, repeated calls are ignored
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ManifestApplyTime)
		prometheus.MustRegister(ResourceApplyTime)
		prometheus.MustRegister(ResourceStateChanged)
		prometheus.MustRegister(ResourceStateFailed)
		prometheus.MustRegister(ResourceStateNoop)
		prometheus.MustRegister(ResourceStateTotal)
		prometheus.MustRegister(ResourceStateStable)
		prometheus.MustRegister(HelperActionTime)
		prometheus.MustRegister(HelperActionFailures)
		prometheus.MustRegister(PackageQueryTime)
		prometheus.MustRegister(FactGatherTime)
	})
}

// WriteTextfile writes the metrics gathered by g to file in the node exporter textfile format, the file is replaced atomically
func WriteTextfile(file string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}

	return prometheus.WriteToTextfile(file, g)
}
