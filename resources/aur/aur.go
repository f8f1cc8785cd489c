// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package aurresource

import (
	"context"

	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/aur/helper"
)

func init() {
	helper.Register()
}

// AURProvider queries and changes AUR packages, actions are built without side effects and run using Execute
type AURProvider interface {
	model.Provider

	Status(ctx context.Context, pkg string) (*model.PackageStatus, error)
	Info(ctx context.Context, pkg string, opts model.HelperOptions) (*model.PackageInfo, error)
	InstallAction(pkg string, opts model.HelperOptions) model.AURAction
	UpgradeAction(targets []string, opts model.HelperOptions) model.AURAction
	RemoveAction(pkg string, opts model.HelperOptions) model.AURAction
	Execute(ctx context.Context, action model.AURAction) (*model.ActionOutput, error)
}
