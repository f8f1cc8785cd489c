// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/choria-io/fisk"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
)

type sessionCmd struct {
	sessionStore string
	resource     string
	json         bool
}

func registerSessionCommand(app *fisk.Application) {
	cmd := &sessionCmd{}

	sess := app.Command("session", "Manage session stores")

	newAction := sess.Command("new", "Creates a new session store").Alias("start").Action(cmd.newAction)
	newAction.Flag("directory", "Directory to store the session in").StringVar(&cmd.sessionStore)

	reportAction := sess.Command("report", "Report on the active session").Action(cmd.reportAction)
	reportAction.Flag("session", "Session store to use").Envar("AURM_SESSION_STORE").StringVar(&cmd.sessionStore)
	reportAction.Flag("json", "Output the summary in JSON format").UnNegatableBoolVar(&cmd.json)

	eventsAction := sess.Command("events", "Show events recorded for a resource").Action(cmd.eventsAction)
	eventsAction.Arg("name", "Resource name or alias").Required().StringVar(&cmd.resource)
	eventsAction.Flag("session", "Session store to use").Envar("AURM_SESSION_STORE").StringVar(&cmd.sessionStore)
}

func (c *sessionCmd) store() (model.SessionStore, error) {
	mgr, _, cfg, err := newManager(managerOptions{session: c.sessionStore})
	if err != nil {
		return nil, err
	}

	if cfg.SessionDirectory == "" {
		return nil, fmt.Errorf("no session store specified")
	}

	return mgr.SessionStore(), nil
}

func (c *sessionCmd) reportAction(_ *fisk.ParseContext) error {
	store, err := c.store()
	if err != nil {
		return err
	}

	summary, err := store.StopSession(false)
	if err != nil {
		return err
	}

	if c.json {
		return iu.DumpJson(summary)
	}

	printSummary("Session Summary", summary)

	return nil
}

func (c *sessionCmd) eventsAction(_ *fisk.ParseContext) error {
	store, err := c.store()
	if err != nil {
		return err
	}

	events, err := store.EventsForResource(model.AURTypeName, c.resource)
	if err != nil {
		return err
	}

	for _, event := range events {
		fmt.Printf("%s %s\n", event.TimeStamp.Format("2006-01-02 15:04:05"), event.String())
	}

	return nil
}

func (c *sessionCmd) newAction(_ *fisk.ParseContext) error {
	var err error

	if c.sessionStore == "" {
		c.sessionStore, err = os.MkdirTemp("", "aurm-session-*")
		if err != nil {
			return err
		}
	} else {
		if iu.IsDirectory(c.sessionStore) {
			return fmt.Errorf("session store %s already exists", c.sessionStore)
		}
	}

	fmt.Printf("export AURM_SESSION_STORE=%v\n", c.sessionStore)

	return nil
}
