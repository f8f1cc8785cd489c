// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
	aurresource "github.com/choria-io/aurm/resources/aur"
)

type statusCommand struct {
	names    []string
	name     string
	json     bool
	query    string
	provider string
}

func registerStatusCommand(app *fisk.Application) {
	cmd := &statusCommand{}

	status := app.Command("status", "Show the installed status of AUR packages").Action(cmd.statusAction)
	status.Arg("names", "Packages to inspect").Required().StringsVar(&cmd.names)
	status.Flag("json", "Output status in JSON format").UnNegatableBoolVar(&cmd.json)
	status.Flag("query", "Show only the result of a GJSON query against the status").PlaceHolder("GJSON").StringVar(&cmd.query)
	status.Flag("provider", "AUR helper to use").EnumVar(&cmd.provider, "yay", "paru", "packer")
}

func registerInfoCommand(app *fisk.Application) {
	cmd := &statusCommand{}

	nfo := app.Command("info", "Show AUR metadata for a package").Action(cmd.infoAction)
	nfo.Arg("name", "Package to inspect").Required().StringVar(&cmd.name)
	nfo.Flag("json", "Output information in JSON format").UnNegatableBoolVar(&cmd.json)
	nfo.Flag("provider", "AUR helper to use").EnumVar(&cmd.provider, "yay", "paru", "packer")
}

func (c *statusCommand) resource(names ...string) (*aurresource.Type, error) {
	mgr, _, _, err := newManager(managerOptions{noop: true, provider: c.provider})
	if err != nil {
		return nil, err
	}

	return aurresource.New(ctx, mgr, model.AURResourceProperties{Names: iu.SplitNames(names...)})
}

func (c *statusCommand) statusAction(_ *fisk.ParseContext) error {
	res, err := c.resource(c.names...)
	if err != nil {
		return err
	}

	nfo, err := res.Info(ctx)
	if err != nil {
		return fmt.Errorf("could not get status: %w", err)
	}

	if c.query != "" {
		j, err := json.Marshal(nfo)
		if err != nil {
			return err
		}

		fmt.Println(gjson.GetBytes(j, c.query).String())

		return nil
	}

	return c.show(nfo)
}

func (c *statusCommand) infoAction(_ *fisk.ParseContext) error {
	res, err := c.resource(c.name)
	if err != nil {
		return err
	}

	nfo, err := res.PackageInfo(ctx, c.name)
	if err != nil {
		return fmt.Errorf("could not get package information: %w", err)
	}

	return c.show(nfo)
}

func (c *statusCommand) show(nfo any) error {
	if c.json {
		return iu.DumpJson(nfo)
	}

	out, err := yaml.Marshal(nfo)
	if err != nil {
		return err
	}

	fmt.Print(string(out))

	return nil
}
