// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package base

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
)

// EmbeddedResource is an interface that must be implemented by all resources that are based on this base
type EmbeddedResource interface {
	ApplyResource(ctx context.Context) (model.ResourceState, error)
	SelectProvider() (string, error)
	Type() string
}

type Base struct {
	Resource           EmbeddedResource
	TypeName           string
	InstanceName       string
	InstanceAlias      string
	Ensure             string
	ResourceProperties model.ResourceProperties
	Log                model.Logger
	Manager            model.Manager

	sync.Mutex
}

func (b *Base) NewTransactionEvent() *model.TransactionEvent {
	event := model.NewTransactionEvent(b.TypeName, b.InstanceName, b.InstanceAlias)
	event.Ensure = b.Ensure
	if b.ResourceProperties != nil {
		event.Properties = b.ResourceProperties
	}

	return event
}

// Apply selects a provider and applies the resource, failures are recorded in the event while partial state is kept
func (b *Base) Apply(ctx context.Context) (*model.TransactionEvent, error) {
	b.Lock()
	defer b.Unlock()

	provName, err := b.Resource.SelectProvider()
	if err != nil {
		return nil, err
	}

	event := b.NewTransactionEvent()
	event.Provider = provName
	start := time.Now()

	timer := prometheus.NewTimer(metrics.ResourceApplyTime.WithLabelValues(b.TypeName, provName, b.InstanceName))
	state, err := b.Resource.ApplyResource(ctx)
	timer.ObserveDuration()

	event.Duration = time.Since(start)
	if err != nil {
		event.Failed = true
		event.Errors = append(event.Errors, err.Error())
	}

	if state != nil {
		event.Status = state
		cs := state.CommonState()
		event.Changed = cs.Changed
		event.ActualEnsure = cs.Ensure
		event.Noop = cs.Noop
		event.NoopMessage = cs.NoopMessage
	}

	return event, nil
}

func (b *Base) Type() string {
	return b.TypeName
}

func (b *Base) Name() string {
	return b.InstanceName
}

func (b *Base) Properties() model.ResourceProperties {
	return b.ResourceProperties
}

func (b *Base) String() string {
	return fmt.Sprintf("%s#%s", b.TypeName, b.InstanceName)
}

// FinalizeState sets common fields on the resource state after applying changes.
// This reduces boilerplate in ApplyResource implementations.
func (b *Base) FinalizeState(state model.ResourceState, noop bool, noopMessage string, changed bool) {
	cs := state.CommonState()
	cs.Noop = noop
	cs.NoopMessage = noopMessage
	cs.Changed = changed
}
