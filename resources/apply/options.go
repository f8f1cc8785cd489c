// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package apply

// Option configures an Apply
type Option func(*Apply) error

// WithFailOnError stops the apply at the first failed resource
func WithFailOnError() Option {
	return func(a *Apply) error {
		a.failOnError = true
		return nil
	}
}
