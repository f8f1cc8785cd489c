// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/choria-io/fisk"

	"github.com/choria-io/aurm/healthcheck"
	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/manager"
	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/apply"
	aurresource "github.com/choria-io/aurm/resources/aur"
)

type checkCommand struct {
	manifest string
	names    []string
	state    string
	provider string
}

func registerCheckCommand(app *fisk.Application) {
	cmd := &checkCommand{}

	check := app.Command("check", "Nagios compatible check that reports drift from the desired state").Action(cmd.checkAction)
	check.Flag("manifest", "Manifest to check").PlaceHolder("FILE").ExistingFileVar(&cmd.manifest)
	check.Flag("package", "Package to check, may be repeated").PlaceHolder("NAME").StringsVar(&cmd.names)
	check.Flag("state", "Desired state of the packages").Default(model.EnsurePresent).EnumVar(&cmd.state, "present", "installed", "latest", "absent", "removed")
	check.Flag("provider", "AUR helper to use").EnumVar(&cmd.provider, "yay", "paru", "packer")
}

func (c *checkCommand) checkAction(_ *fisk.ParseContext) error {
	result := c.check()

	fmt.Println(result.String())
	os.Exit(result.Status.ExitCode())

	return nil
}

func (c *checkCommand) check() *healthcheck.Result {
	if c.manifest == "" && len(c.names) == 0 {
		return healthcheck.FromSummary(nil, errors.New("a manifest or packages to check are required"))
	}

	mgr, _, _, err := newManager(managerOptions{noop: true, provider: c.provider})
	if err != nil {
		return healthcheck.FromSummary(nil, err)
	}

	if c.manifest != "" {
		err = c.checkManifest(mgr)
	} else {
		err = c.checkPackages(mgr)
	}
	if err != nil && !errors.Is(err, apply.ErrResourceFailed) {
		return healthcheck.FromSummary(nil, err)
	}

	summary, serr := mgr.SessionSummary()
	if serr != nil {
		return healthcheck.FromSummary(nil, serr)
	}

	return healthcheck.FromSummary(summary, nil)
}

func (c *checkCommand) checkManifest(mgr *manager.AURM) error {
	// stdout is reserved for the plugin output
	quiet, err := manager.NewLogger("error", manager.LogFormatText, os.Stderr)
	if err != nil {
		return err
	}

	manifest, err := os.Open(c.manifest)
	if err != nil {
		return err
	}
	defer manifest.Close()

	resolved, err := apply.ResolveManifestReader(ctx, mgr, filepath.Base(c.manifest), manifest)
	if err != nil {
		return err
	}

	_, err = resolved.Execute(ctx, mgr, quiet)

	return err
}

func (c *checkCommand) checkPackages(mgr *manager.AURM) error {
	res, err := aurresource.New(ctx, mgr, model.AURResourceProperties{Names: iu.SplitNames(c.names...), State: c.state})
	if err != nil {
		return err
	}

	event, err := res.Apply(ctx)
	if err != nil {
		return err
	}

	return mgr.RecordEvent(event)
}
