// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
)

func updateMetrics(event model.SessionEvent) {
	e, ok := event.(*model.TransactionEvent)
	if !ok {
		return
	}

	metrics.ResourceStateTotal.WithLabelValues(e.ResourceType, e.Name).Inc()

	switch {
	case e.Failed:
		metrics.ResourceStateFailed.WithLabelValues(e.ResourceType, e.Name).Inc()
	case e.Noop:
		metrics.ResourceStateNoop.WithLabelValues(e.ResourceType, e.Name).Inc()
	case e.Changed:
		metrics.ResourceStateChanged.WithLabelValues(e.ResourceType, e.Name).Inc()
	default:
		metrics.ResourceStateStable.WithLabelValues(e.ResourceType, e.Name).Inc()
	}
}

// filterEvents returns the transaction events matching the resource type and either the name or alias
func filterEvents(allEvents []model.SessionEvent, resourceType string, resourceName string) []model.TransactionEvent {
	var filtered []model.TransactionEvent

	for _, event := range allEvents {
		txEvent, ok := event.(*model.TransactionEvent)
		if !ok {
			continue
		}

		if txEvent.ResourceType == resourceType && (txEvent.Name == resourceName || txEvent.Alias == resourceName) {
			filtered = append(filtered, *txEvent)
		}
	}

	return filtered
}
