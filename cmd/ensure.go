// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"strings"

	"github.com/choria-io/fisk"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
	aurresource "github.com/choria-io/aurm/resources/aur"
)

type ensureCommand struct {
	names     []string
	state     string
	upgrade   bool
	recurse   bool
	force     bool
	buildUser string
	alias     string
	json      bool
	mgrOpts   managerOptions
}

func (c *ensureCommand) commonFlags(cmd *fisk.CmdClause) {
	cmd.Flag("provider", "AUR helper to use").EnumVar(&c.mgrOpts.provider, "yay", "paru", "packer")
	cmd.Flag("build-user", "Unprivileged user to run the helper as").PlaceHolder("USER").StringVar(&c.buildUser)
	cmd.Flag("noop", "Only report what would change").UnNegatableBoolVar(&c.mgrOpts.noop)
	cmd.Flag("session", "Session store to use").Envar("AURM_SESSION_STORE").PlaceHolder("DIRECTORY").StringVar(&c.mgrOpts.session)
	cmd.Flag("read-env", "Read extra variables from .env file").Default("true").BoolVar(&c.mgrOpts.readEnv)
	cmd.Flag("json", "Show the result in JSON format").UnNegatableBoolVar(&c.json)
}

func registerEnsureCommand(app *fisk.Application) {
	cmd := &ensureCommand{}

	ens := app.Command("ensure", "Ensure AUR packages are in a desired state").Action(cmd.action)
	ens.Arg("names", "Packages to manage, comma separated lists are accepted").StringsVar(&cmd.names)
	ens.Flag("state", "Desired package state").Default(model.EnsurePresent).EnumVar(&cmd.state, "present", "installed", "latest", "absent", "removed")
	ens.Flag("upgrade", "Upgrade all installed AUR packages").UnNegatableBoolVar(&cmd.upgrade)
	ens.Flag("recurse", "Remove dependencies not required by other packages when absent").UnNegatableBoolVar(&cmd.recurse)
	ens.Flag("force", "Remove packages without dependency checks when absent").UnNegatableBoolVar(&cmd.force)
	ens.Flag("alias", "Alias to record the resource under").StringVar(&cmd.alias)
	cmd.commonFlags(ens)
}

func registerRemoveCommand(app *fisk.Application) {
	cmd := &ensureCommand{state: model.EnsureAbsent}

	rm := app.Command("remove", "Remove AUR packages").Alias("rm").Action(cmd.action)
	rm.Arg("names", "Packages to remove").Required().StringsVar(&cmd.names)
	rm.Flag("recurse", "Remove dependencies not required by other packages").UnNegatableBoolVar(&cmd.recurse)
	rm.Flag("force", "Remove packages without dependency checks").UnNegatableBoolVar(&cmd.force)
	cmd.commonFlags(rm)
}

func registerUpgradeCommand(app *fisk.Application) {
	cmd := &ensureCommand{state: model.EnsureLatest, upgrade: true}

	up := app.Command("upgrade", "Upgrade all installed AUR packages, named packages are installed when missing").Action(cmd.action)
	up.Arg("names", "Additional packages to install or upgrade").StringsVar(&cmd.names)
	cmd.commonFlags(up)
}

func (c *ensureCommand) properties() model.AURResourceProperties {
	props := model.AURResourceProperties{
		Names:     iu.SplitNames(c.names...),
		State:     c.state,
		Upgrade:   c.upgrade,
		Recurse:   c.recurse,
		Force:     c.force,
		BuildUser: c.buildUser,
	}
	props.Alias = c.alias

	return props
}

func (c *ensureCommand) action(_ *fisk.ParseContext) error {
	mgr, out, cfg, err := newManager(c.mgrOpts)
	if err != nil {
		return err
	}

	log, err := mgr.Logger("command", "ensure")
	if err != nil {
		return err
	}
	defer writeMetrics(cfg, log)

	res, err := aurresource.New(ctx, mgr, c.properties())
	if err != nil {
		return err
	}

	event, err := res.Apply(ctx)
	if err != nil {
		return err
	}

	err = mgr.RecordEvent(event)
	if err != nil {
		log.Error("Could not save event", "event", event.String(), "error", err)
	}

	if c.json {
		err = iu.DumpJson(event)
		if err != nil {
			return err
		}
	} else {
		event.LogStatus(out)

		if status, ok := event.Status.(*model.ExecutionResult); ok && !event.Noop {
			out.Info(status.Message())
		}
	}

	if event.Failed {
		return errors.New(strings.Join(event.Errors, ", "))
	}

	return nil
}
