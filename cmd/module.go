// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/choria-io/fisk"
	"github.com/kballard/go-shellquote"
	"github.com/tidwall/gjson"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/manager"
	"github.com/choria-io/aurm/model"
	aurresource "github.com/choria-io/aurm/resources/aur"
)

type moduleCommand struct {
	argsFile string
}

// moduleResult is the document automation frameworks read from stdout
type moduleResult struct {
	Changed  bool                  `json:"changed"`
	Failed   bool                  `json:"failed"`
	Msg      string                `json:"msg"`
	Stdout   string                `json:"stdout,omitempty"`
	Actions  []string              `json:"actions,omitempty"`
	Packages []model.PackageStatus `json:"packages,omitempty"`
}

// moduleArgs are the accepted arguments, the first name of each entry is the canonical one
var moduleArgs = [][]string{
	{"name", "pkg", "package"},
	{"state"},
	{"upgrade"},
	{"recurse"},
	{"force"},
	{"provider"},
	{"build_user", "user"},
	{"_ansible_check_mode", "check_mode", "noop"},
}

func registerModuleCommand(app *fisk.Application) {
	cmd := &moduleCommand{}

	mod := app.Command("module", "Reconcile packages using automation framework module arguments").Action(cmd.moduleAction)
	mod.Arg("args", "File holding JSON or key=value arguments, read from stdin when not given").ExistingFileVar(&cmd.argsFile)
}

func (c *moduleCommand) moduleAction(_ *fisk.ParseContext) error {
	var raw []byte
	var err error

	if c.argsFile != "" {
		raw, err = os.ReadFile(c.argsFile)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return c.respond(nil, err)
	}

	props, noop, err := parseModuleArgs(raw)
	if err != nil {
		return c.respond(nil, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return c.respond(nil, err)
	}

	// stdout is reserved for the result document
	level, err := manager.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return c.respond(nil, err)
	}
	logger := manager.NewJSONLogger(level, os.Stderr)

	opts := cfg.ManagerOptions()
	if noop {
		opts = append(opts, manager.WithNoop())
	}

	mgr, err := manager.NewManager(logger, opts...)
	if err != nil {
		return c.respond(nil, err)
	}

	res, err := aurresource.Reconcile(ctx, mgr, props)

	return c.respond(res, err)
}

func (c *moduleCommand) respond(res *model.ExecutionResult, err error) error {
	out := newModuleResult(res, err)

	j, merr := json.Marshal(out)
	if merr != nil {
		return merr
	}

	fmt.Println(string(j))

	if out.Failed {
		return fmt.Errorf("%s", out.Msg)
	}

	return nil
}

func newModuleResult(res *model.ExecutionResult, err error) moduleResult {
	out := moduleResult{}

	if res != nil {
		out.Changed = res.Changed
		out.Msg = res.Message()
		out.Stdout = res.Output
		out.Packages = res.Packages
		for _, a := range res.Actions {
			out.Actions = append(out.Actions, a.CommandLine())
		}
	}

	if err != nil {
		out.Failed = true
		out.Msg = err.Error()
	}

	return out
}

// parseModuleArgs accepts a JSON object or shell quoted key=value pairs
func parseModuleArgs(raw []byte) (model.AURResourceProperties, bool, error) {
	var props model.AURResourceProperties

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return props, false, fmt.Errorf("%w: no module arguments given", model.ErrInvalidRequest)
	}

	var args gjson.Result

	if strings.HasPrefix(trimmed, "{") {
		if !gjson.Valid(trimmed) {
			return props, false, fmt.Errorf("%w: module arguments are not valid JSON", model.ErrInvalidRequest)
		}
		args = gjson.Parse(trimmed)
	} else {
		words, err := shellquote.Split(trimmed)
		if err != nil {
			return props, false, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
		}

		kv := map[string]string{}
		for _, w := range words {
			k, v, ok := strings.Cut(w, "=")
			if !ok {
				return props, false, fmt.Errorf("%w: argument %q is not key=value", model.ErrInvalidRequest, w)
			}
			kv[k] = v
		}

		j, err := json.Marshal(kv)
		if err != nil {
			return props, false, err
		}
		args = gjson.ParseBytes(j)
	}

	known := map[string]string{}
	for _, names := range moduleArgs {
		for _, n := range names {
			known[n] = names[0]
		}
	}

	values := map[string]gjson.Result{}
	var err error
	args.ForEach(func(key, value gjson.Result) bool {
		canonical, ok := known[key.String()]
		if !ok {
			// framework internal arguments are ignored
			if strings.HasPrefix(key.String(), "_ansible_") {
				return true
			}

			err = fmt.Errorf("%w: unsupported argument %q", model.ErrInvalidRequest, key.String())
			return false
		}

		values[canonical] = value
		return true
	})
	if err != nil {
		return props, false, err
	}

	if name, ok := values["name"]; ok {
		if name.IsArray() {
			for _, n := range name.Array() {
				props.Names = append(props.Names, n.String())
			}
			props.Names = iu.SplitNames(props.Names...)
		} else {
			props.Names = iu.SplitNames(name.String())
		}
	}

	props.State = values["state"].String()
	props.Provider = values["provider"].String()
	props.BuildUser = values["build_user"].String()

	for key, target := range map[string]*bool{"upgrade": &props.Upgrade, "recurse": &props.Recurse, "force": &props.Force} {
		*target, err = moduleBool(values[key])
		if err != nil {
			return props, false, fmt.Errorf("%w: %s: %w", model.ErrInvalidRequest, key, err)
		}
	}

	noop, err := moduleBool(values["_ansible_check_mode"])
	if err != nil {
		return props, false, fmt.Errorf("%w: check mode: %w", model.ErrInvalidRequest, err)
	}

	return props, noop, nil
}

// moduleBool accepts JSON booleans and the yes/no forms automation frameworks send
func moduleBool(v gjson.Result) (bool, error) {
	switch v.Type {
	case gjson.Null:
		return false, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	}

	switch strings.ToLower(v.String()) {
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n", "":
		return false, nil
	}

	return strconv.ParseBool(v.String())
}
