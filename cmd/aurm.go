// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/choria-io/appbuilder/builder"
	"github.com/choria-io/appbuilder/commands/exec"
	"github.com/choria-io/appbuilder/commands/parent"
	"github.com/choria-io/fisk"

	iu "github.com/choria-io/aurm/internal/util"
)

var (
	ctx        context.Context
	debug      bool
	info       bool
	logFormat  string
	configFile string
	Version    = "development"
)

func main() {
	app := fisk.New("aurm", "Declarative AUR package management")
	app.Version(Version)
	app.Author("https://choria.io")

	app.Flag("debug", "Enable debug logging").UnNegatableBoolVar(&debug)
	app.Flag("info", "Enable info logging").UnNegatableBoolVar(&info)
	app.Flag("log-format", "Log format to use").EnumVar(&logFormat, "text", "json")
	app.Flag("config", "Configuration file to use instead of the standard locations").Envar("AURM_CONFIG").PlaceHolder("FILE").ExistingFileVar(&configFile)

	registerEnsureCommand(app)
	registerRemoveCommand(app)
	registerUpgradeCommand(app)
	registerStatusCommand(app)
	registerInfoCommand(app)
	registerApplyCommand(app)
	registerModuleCommand(app)
	registerFactsCommand(app)
	registerSessionCommand(app)
	registerCheckCommand(app)

	ctx, _ = signal.NotifyContext(context.Background(), os.Interrupt)
	err := extendCli(app)
	if err != nil {
		log.Fatalf("Could not load CLI extensions: %s", err)
	}

	app.MustParseWithUsage(os.Args[1:])
}

func extendCli(app *fisk.Application) error {
	var path string
	var userFile = filepath.Join(xdg.ConfigHome, "choria", "aurm", "cli-extension.yaml")
	var systemFile = "/etc/choria/aurm/cli-extension.yaml"

	if iu.FileExists(userFile) {
		path = userFile
	} else if iu.FileExists(systemFile) {
		path = systemFile
	}

	if path == "" {
		return nil
	}

	def, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parent.MustRegister()
	exec.MustRegister()

	ext := app.Command("plugin", "External CLI plugin commands").Alias("ext")

	return builder.MountAsCommand(ctx, ext, def, nil)
}
