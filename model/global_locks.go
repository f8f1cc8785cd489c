// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"sync"
)

// PackageGlobalLock ensures only one helper, pacman or expac invocation runs at a time
// in this process, the pacman database lock is exclusive and concurrent runs fail
var PackageGlobalLock = sync.Mutex{}
