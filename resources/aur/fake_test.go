// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package aurresource

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/aur/helper"
)

// fakeAUR is a command runner that behaves like yay, expac and pacman against an in memory package database
type fakeAUR struct {
	installed map[string]string
	aur       map[string]string
	deps      map[string][]string
	broken    map[string]bool
	ghost     map[string]bool
	queryFail bool

	commands []string
	queries  int
	infos    int
	mu       sync.Mutex
}

func newFakeAUR() *fakeAUR {
	return &fakeAUR{
		installed: map[string]string{},
		aur:       map[string]string{"cower": "20-2", "meat": "1.0-1", "yajl": "2.1.0-6", "broken": "1-1", "ghost": "1-1"},
		deps:      map[string][]string{},
		broken:    map[string]bool{"broken": true},
		ghost:     map[string]bool{"ghost": true},
	}
}

func (f *fakeAUR) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.commands)
}

func (f *fakeAUR) Execute(ctx context.Context, cmd string, args ...string) ([]byte, []byte, int, error) {
	return f.ExecuteWithOptions(ctx, model.ExtendedExecOptions{Command: cmd, Args: args})
}

func (f *fakeAUR) ExecuteWithOptions(_ context.Context, opts model.ExtendedExecOptions) ([]byte, []byte, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cmd, args := opts.Command, opts.Args
	if cmd == helper.SudoBinary {
		i := slices.Index(args, "--")
		cmd, args = args[i+1], args[i+2:]
	}

	switch cmd {
	case helper.ExpacBinary:
		f.queries++
		return f.expac(args)
	case "yay":
		if args[0] == "-Si" {
			f.infos++
			return f.yay(args)
		}

		f.commands = append(f.commands, strings.Join(append([]string{opts.Command}, opts.Args...), " "))
		return f.yay(args)
	case helper.PacmanBinary:
		f.commands = append(f.commands, strings.Join(append([]string{opts.Command}, opts.Args...), " "))
		return f.pacman(args)
	}

	return nil, []byte(cmd + ": command not found"), 127, nil
}

func targets(args []string) []string {
	var res []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			res = append(res, a)
		}
	}

	return res
}

func (f *fakeAUR) expac(args []string) ([]byte, []byte, int, error) {
	if f.queryFail {
		return nil, []byte("error: failed to initialize alpm library"), 1, nil
	}

	pkg := args[len(args)-1]
	v, ok := f.installed[pkg]
	if !ok {
		return nil, fmt.Appendf(nil, "error: package '%s' not found", pkg), 1, nil
	}

	return fmt.Appendf(nil, `{"name":"%s","version":"%s"}`, pkg, v), nil, 0, nil
}

func (f *fakeAUR) install(out *strings.Builder, pkg string) (bool, []byte, int) {
	v, ok := f.aur[pkg]
	if !ok {
		return false, []byte(" -> No AUR package found for " + pkg), 1
	}

	if f.broken[pkg] {
		return false, []byte("==> ERROR: A failure occurred in build().\n -> error making: " + pkg), 1
	}

	if f.installed[pkg] == v {
		fmt.Fprintf(out, " -> %s-%s is up to date -- skipping\n", pkg, v)
		return false, nil, 0
	}

	if !f.ghost[pkg] {
		f.installed[pkg] = v
	}

	fmt.Fprintf(out, "installing %s\n", pkg)

	return true, nil, 0
}

func (f *fakeAUR) yay(args []string) ([]byte, []byte, int, error) {
	var out strings.Builder
	changed := false

	switch args[0] {
	case "-Si":
		pkg := targets(args)[0]
		v, ok := f.aur[pkg]
		if !ok {
			return nil, []byte(" -> No AUR package found for " + pkg), 1, nil
		}

		return fmt.Appendf(nil, "Name            : %s\nVersion         : %s\nDescription     : test package\n", pkg, v), nil, 0, nil

	case "-Syu":
		for _, pkg := range slices.Sorted(maps.Keys(f.installed)) {
			v, ok := f.aur[pkg]
			if ok && f.installed[pkg] != v {
				f.installed[pkg] = v
				fmt.Fprintf(&out, "upgrading %s\n", pkg)
				changed = true
			}
		}

		fallthrough

	case "-S":
		for _, pkg := range targets(args) {
			c, stderr, code := f.install(&out, pkg)
			if code != 0 {
				return []byte(out.String()), stderr, code, nil
			}
			changed = changed || c
		}
	}

	if !changed {
		out.WriteString(" there is nothing to do\n")
	}

	return []byte(out.String()), nil, 0, nil
}

func (f *fakeAUR) pacman(args []string) ([]byte, []byte, int, error) {
	pkg := args[len(args)-1]

	_, ok := f.installed[pkg]
	if !ok {
		return nil, []byte("error: target not found: " + pkg), 1, nil
	}

	delete(f.installed, pkg)
	if slices.Contains(args, "-s") {
		for _, d := range f.deps[pkg] {
			delete(f.installed, d)
		}
	}

	return fmt.Appendf(nil, "removing %s...\n", pkg), nil, 0, nil
}

type fakeFactory struct{}

func (fakeFactory) TypeName() string                              { return model.AURTypeName }
func (fakeFactory) Name() string                                  { return "fake" }
func (fakeFactory) IsManageable(map[string]any) (bool, int, error) { return true, 1, nil }
func (fakeFactory) New(log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	return helper.NewProvider(log, runner, helper.Yay)
}
