// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
)

var (
	ErrResourceInvalid        = errors.New("invalid resource")
	ErrResourceNameRequired   = errors.New("name is required")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrPackageNotFound        = errors.New("package not found")
	ErrSubprocessFailure      = errors.New("command failed")
	ErrParse                  = errors.New("could not parse command output")
	ErrDesiredStateNotReached = errors.New("failed to reach desired state")
	ErrProviderNotFound       = errors.New("provider not found")
	ErrProviderNotManageable  = errors.New("provider is not manageable")
	ErrNoSuitableProvider     = errors.New("no suitable provider found")
	ErrDuplicateProvider      = errors.New("provider already exists")
	ErrUnknownType            = errors.New("unknown resource type")
)
