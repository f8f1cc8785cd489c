// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

// Provider is an interface for a resource provider
type Provider interface {
	Name() string
}

// ProviderFactory creates providers and reports if they can be used on this node, lower priority values are preferred
type ProviderFactory interface {
	IsManageable(facts map[string]any) (bool, int, error)
	TypeName() string
	Name() string
	New(Logger, CommandRunner) (Provider, error)
}
