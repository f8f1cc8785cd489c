// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"

	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/apply"
)

type applyCommand struct {
	manifest    string
	renderOnly  bool
	report      bool
	failOnError bool
	mgrOpts     managerOptions
}

func registerApplyCommand(app *fisk.Application) {
	cmd := &applyCommand{}

	ap := app.Command("apply", "Apply a manifest").Action(cmd.applyAction)
	ap.Arg("manifest", "Path to manifest to apply, .jet files are rendered first").Required().ExistingFileVar(&cmd.manifest)
	ap.Flag("render", "Do not apply, only render the resolved manifest").UnNegatableBoolVar(&cmd.renderOnly)
	ap.Flag("report", "Generate a report").Default("true").BoolVar(&cmd.report)
	ap.Flag("noop", "Only report what would change").UnNegatableBoolVar(&cmd.mgrOpts.noop)
	ap.Flag("fail-on-error", "Stop at the first failed resource").UnNegatableBoolVar(&cmd.failOnError)
	ap.Flag("session", "Session store to use").Envar("AURM_SESSION_STORE").PlaceHolder("DIRECTORY").StringVar(&cmd.mgrOpts.session)
	ap.Flag("read-env", "Read extra variables from .env file").Default("true").BoolVar(&cmd.mgrOpts.readEnv)
}

func (c *applyCommand) applyAction(_ *fisk.ParseContext) error {
	manifest, err := os.Open(c.manifest)
	if err != nil {
		return err
	}
	defer manifest.Close()

	mgr, out, cfg, err := newManager(c.mgrOpts)
	if err != nil {
		return err
	}

	log, err := mgr.Logger("command", "apply")
	if err != nil {
		return err
	}
	defer writeMetrics(cfg, log)

	var opts []apply.Option
	if c.failOnError {
		opts = append(opts, apply.WithFailOnError())
	}

	resolved, err := apply.ResolveManifestReader(ctx, mgr, filepath.Base(c.manifest), manifest, opts...)
	if err != nil {
		return err
	}

	if c.renderOnly {
		resolvedYaml, err := yaml.Marshal(resolved)
		if err != nil {
			return err
		}

		fmt.Println(string(resolvedYaml))

		return nil
	}

	_, applyErr := resolved.Execute(ctx, mgr, out)

	if c.report {
		summary, err := mgr.SessionSummary()
		if err != nil {
			return err
		}

		printSummary("Manifest Run Summary", summary)
	}

	return applyErr
}

func printSummary(title string, summary *model.SessionSummary) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println()
	if summary.TotalDuration > 0 {
		fmt.Printf("             Run Time: %v\n", summary.TotalDuration.Round(time.Millisecond))
	}
	fmt.Printf("      Total Resources: %d\n", summary.TotalResources)
	fmt.Printf("     Unique Resources: %d\n", summary.UniqueResources)
	fmt.Printf("     Stable Resources: %d\n", summary.StableResources)
	fmt.Printf("    Changed Resources: %d\n", summary.ChangedResources)
	fmt.Printf("     Failed Resources: %d\n", summary.FailedResources)
	fmt.Printf("       Noop Resources: %d\n", summary.NoopResources)
	fmt.Printf("         Total Errors: %d\n", summary.TotalErrors)
}
