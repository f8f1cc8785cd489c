// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
)

const (
	// ExpacBinary queries the local package database
	ExpacBinary = "expac"
	// PacmanBinary removes packages
	PacmanBinary = "pacman"
	// SudoBinary runs the helper as the build user
	SudoBinary = "sudo"

	// statusFormat makes expac emit one JSON document per package
	statusFormat = `{"name":"%n","version":"%v"}`
)

var (
	// notFoundRe matches helper and pacman messages about unknown packages
	notFoundRe = regexp.MustCompile(`(?i)(target not found|no AUR package found|package '.+' was not found|no packages? found)`)

	// missingRe matches the header yay and paru print before listing unresolvable packages
	missingRe = regexp.MustCompile(`(?i)could not find all required packages`)

	// missingEntryRe matches the entries listed after missingRe, the reason is Target or the dependant package
	missingEntryRe = regexp.MustCompile(`(?m)^\s+(\S+) \((Target|Wanted by: ([^)]+))\)`)

	// nothingToDoRe matches helper output for runs that made no changes at all
	nothingToDoRe = regexp.MustCompile(`(?i)there is nothing to do`)

	// skippingRe matches the per package line for a target that is already current
	skippingRe = regexp.MustCompile(`(?m)^\s*(?:->|::)?\s*(\S+) is up to date -- skipping`)
)

// Provider manages AUR packages using a helper described by a Profile
type Provider struct {
	profile Profile
	log     model.Logger
	runner  model.CommandRunner
}

// NewProvider creates a provider for the helper described by profile
func NewProvider(log model.Logger, runner model.CommandRunner, profile Profile) (*Provider, error) {
	if profile.Name == "" || profile.Binary == "" {
		return nil, fmt.Errorf("invalid helper profile")
	}

	return &Provider{profile: profile, log: log, runner: runner}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.profile.Name
}

// Profile returns the helper profile in use
func (p *Provider) Profile() Profile {
	return p.profile
}

// We ensure that any user of this provider in the same process will not call the helper or pacman multiple times
func (p *Provider) execute(ctx context.Context, cmd string, args ...string) (stdout []byte, stderr []byte, exitCode int, err error) {
	model.PackageGlobalLock.Lock()
	defer model.PackageGlobalLock.Unlock()

	return p.runner.ExecuteWithOptions(ctx, model.ExtendedExecOptions{
		Command: cmd,
		Args:    args,
	})
}

// helperCommand builds the command and arguments to run the helper, as the build user when one is set
func (p *Provider) helperCommand(opts model.HelperOptions, args ...string) (string, []string) {
	if opts.BuildUser == "" {
		return p.profile.Binary, args
	}

	return SudoBinary, append([]string{"-H", "-u", opts.BuildUser, "--", p.profile.Binary}, args...)
}

// InstallAction installs pkg, or upgrades it when an update is available
func (p *Provider) InstallAction(pkg string, opts model.HelperOptions) model.AURAction {
	args := append(append([]string{}, p.profile.InstallArgs...), pkg)
	cmd, args := p.helperCommand(opts, args...)

	return model.AURAction{
		Kind:    model.ActionInstall,
		Targets: []string{pkg},
		Command: cmd,
		Args:    args,
	}
}

// UpgradeAction upgrades all installed AUR packages and installs targets in the same transaction
func (p *Provider) UpgradeAction(targets []string, opts model.HelperOptions) model.AURAction {
	args := append(append([]string{}, p.profile.UpgradeArgs...), targets...)
	cmd, args := p.helperCommand(opts, args...)

	return model.AURAction{
		Kind:    model.ActionUpgrade,
		Targets: targets,
		Command: cmd,
		Args:    args,
	}
}

// RemoveAction removes pkg using pacman, recursively when requested and without dependency checks when forced
func (p *Provider) RemoveAction(pkg string, opts model.HelperOptions) model.AURAction {
	args := []string{"-R", "--noconfirm"}
	if opts.Recurse {
		args = append(args, "-s")
	}
	if opts.Force {
		args = append(args, "-dd")
	}

	return model.AURAction{
		Kind:    model.ActionRemove,
		Targets: []string{pkg},
		Command: PacmanBinary,
		Args:    append(args, pkg),
	}
}

// Execute runs a planned action, Changed is false when the helper reported nothing to do
func (p *Provider) Execute(ctx context.Context, action model.AURAction) (*model.ActionOutput, error) {
	labels := []string{p.Name(), string(action.Kind)}

	p.log.Info("Executing action", "action", action.String(), "command", action.CommandLine())

	timer := prometheus.NewTimer(metrics.HelperActionTime.WithLabelValues(labels...))
	stdout, stderr, exitcode, err := p.execute(ctx, action.Command, action.Args...)
	timer.ObserveDuration()

	out := &model.ActionOutput{
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		ExitCode: exitcode,
	}

	if err != nil {
		metrics.HelperActionFailures.WithLabelValues(labels...).Inc()
		return out, fmt.Errorf("%w: %s: %w", model.ErrSubprocessFailure, action.CommandLine(), err)
	}

	if exitcode != 0 {
		metrics.HelperActionFailures.WithLabelValues(labels...).Inc()

		if missingRe.Match(stderr) || missingRe.Match(stdout) {
			return out, missingError(action, append(append([]byte{}, stdout...), stderr...))
		}

		if notFoundRe.Match(stderr) || notFoundRe.Match(stdout) {
			return out, fmt.Errorf("%w: %s", model.ErrPackageNotFound, strings.Join(action.Targets, ", "))
		}

		return out, fmt.Errorf("%w: %s exited %d: %s", model.ErrSubprocessFailure, action.CommandLine(), exitcode, lastLines(stderr, stdout))
	}

	out.Changed = !nothingDone(action, stdout, stderr)

	return out, nil
}

// nothingDone determines if a successful action left the system unchanged.
//
// Only the whole run marker is trusted for upgrades, a full upgrade can skip a current target
// while upgrading other packages in the same transaction.
func nothingDone(action model.AURAction, stdout []byte, stderr []byte) bool {
	if nothingToDoRe.Match(stdout) || nothingToDoRe.Match(stderr) {
		return true
	}

	if action.Kind != model.ActionInstall || len(action.Targets) != 1 {
		return false
	}

	for _, out := range [][]byte{stdout, stderr} {
		for _, m := range skippingRe.FindAllSubmatch(out, -1) {
			if skippedPackage(string(m[1])) == action.Targets[0] {
				return true
			}
		}
	}

	return false
}

// skippedPackage extracts the package name from a name-version-release string
func skippedPackage(nvr string) string {
	parts := strings.Split(nvr, "-")
	if len(parts) < 3 {
		return nvr
	}

	return strings.Join(parts[:len(parts)-2], "-")
}

// missingError reports unresolvable packages, targets are not found while missing dependencies are subprocess failures naming the dependency
func missingError(action model.AURAction, output []byte) error {
	var targets, deps []string

	for _, m := range missingEntryRe.FindAllSubmatch(output, -1) {
		if string(m[2]) == "Target" {
			targets = append(targets, string(m[1]))
			continue
		}

		deps = append(deps, fmt.Sprintf("%s (wanted by %s)", m[1], strings.TrimSpace(string(m[3]))))
	}

	switch {
	case len(targets) > 0:
		return fmt.Errorf("%w: %s", model.ErrPackageNotFound, strings.Join(targets, ", "))
	case len(deps) > 0:
		return fmt.Errorf("%w: %s: missing dependencies: %s", model.ErrSubprocessFailure, action.CommandLine(), strings.Join(deps, ", "))
	default:
		return fmt.Errorf("%w: %s: could not find all required packages", model.ErrSubprocessFailure, action.CommandLine())
	}
}

// Status queries the local package database for pkg
func (p *Provider) Status(ctx context.Context, pkg string) (*model.PackageStatus, error) {
	timer := prometheus.NewTimer(metrics.PackageQueryTime.WithLabelValues(p.Name()))
	defer timer.ObserveDuration()

	stdout, stderr, exitcode, err := p.execute(ctx, ExpacBinary, "-Q", statusFormat, pkg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrSubprocessFailure, ExpacBinary, err)
	}

	return parseStatus(pkg, stdout, stderr, exitcode)
}

// Info retrieves AUR metadata for pkg using the helper
func (p *Provider) Info(ctx context.Context, pkg string, opts model.HelperOptions) (*model.PackageInfo, error) {
	cmd, args := p.helperCommand(opts, append(append([]string{}, p.profile.InfoArgs...), pkg)...)

	stdout, stderr, exitcode, err := p.execute(ctx, cmd, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrSubprocessFailure, p.profile.Binary, err)
	}

	if exitcode != 0 {
		if notFoundRe.Match(stderr) || notFoundRe.Match(stdout) || len(stdout) == 0 {
			return nil, fmt.Errorf("%w: %s", model.ErrPackageNotFound, pkg)
		}

		return nil, fmt.Errorf("%w: %s exited %d: %s", model.ErrSubprocessFailure, p.profile.Binary, exitcode, lastLines(stderr, stdout))
	}

	return parseInfo(pkg, stdout)
}
