// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package aurresource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/choria-io/aurm/internal/registry"
	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/resources/aur/helper"
	"github.com/choria-io/aurm/resources/base"
)

// Type is an aur resource that brings a set of AUR packages into a desired state
type Type struct {
	*base.Base

	prop     *model.AURResourceProperties
	mgr      model.Manager
	log      model.Logger
	provider AURProvider
	facts    map[string]any
	data     map[string]any

	mu sync.Mutex
}

var _ model.Resource = (*Type)(nil)
var _ AURProvider = (*helper.Provider)(nil)

// New creates a new aur resource, templates are resolved and the request is validated
func New(ctx context.Context, mgr model.Manager, properties model.AURResourceProperties) (*Type, error) {
	env, err := mgr.TemplateEnvironment(ctx)
	if err != nil {
		return nil, err
	}

	err = properties.ResolveTemplates(env)
	if err != nil {
		return nil, err
	}

	if properties.Name == "" {
		switch {
		case len(properties.Names) > 0:
			properties.Name = strings.Join(properties.Names, ",")
		case properties.Upgrade:
			properties.Name = "upgrade"
		}
	}

	if properties.BuildUser == "" {
		properties.BuildUser = mgr.DefaultBuildUser()
	}

	if properties.Provider == "" {
		properties.Provider = mgr.DefaultProvider()
	}

	logger, err := mgr.Logger("type", model.AURTypeName, "name", properties.Name)
	if err != nil {
		return nil, err
	}

	t := &Type{
		prop:  &properties,
		mgr:   mgr,
		log:   logger,
		facts: env.Facts,
		data:  env.Data,
	}
	t.Base = &base.Base{
		Resource:           t,
		TypeName:           model.AURTypeName,
		InstanceName:       properties.Name,
		InstanceAlias:      properties.Alias,
		Ensure:             properties.NormalizedState(),
		ResourceProperties: &properties,
		Log:                logger,
		Manager:            mgr,
	}

	err = t.prop.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}

	t.log.Debug("Created resource instance")

	return t, nil
}

// Reconcile brings the packages described by properties into the desired state.
//
// The result is returned also when an action fails and then describes the actions taken up to the failure.
func Reconcile(ctx context.Context, mgr model.Manager, properties model.AURResourceProperties) (*model.ExecutionResult, error) {
	t, err := New(ctx, mgr, properties)
	if err != nil {
		return nil, err
	}

	_, err = t.SelectProvider()
	if err != nil {
		return nil, err
	}

	return t.reconcile(ctx)
}

// ApplyResource implements base.EmbeddedResource
func (t *Type) ApplyResource(ctx context.Context) (model.ResourceState, error) {
	state, err := t.reconcile(ctx)
	if state == nil {
		return nil, err
	}

	return state, err
}

func (t *Type) reconcile(ctx context.Context) (*model.ExecutionResult, error) {
	var (
		properties = t.prop
		noop       = t.mgr.NoopMode()
		ensure     = properties.NormalizedState()
		pkgs       = properties.Packages()
	)

	result := &model.ExecutionResult{
		CommonResourceState: model.NewCommonResourceState(model.ResourceStatusAURProtocol, model.AURTypeName, properties.Name, ensure),
	}

	initial, err := t.statuses(ctx, pkgs)
	if err != nil {
		return nil, err
	}
	result.Packages = initial

	actions := t.plan(initial)

	if noop {
		actions, err = t.checkPlan(ctx, initial, actions)
		if err != nil {
			result.Actions = actions
			result.Error = err.Error()
			t.FinalizeState(result, true, "", false)

			return result, err
		}
	}

	result.Actions = actions

	t.log.Info("Checking desired state", "ensure", ensure, "packages", pkgs, "actions", len(actions))

	if len(actions) == 0 {
		t.log.Info("Skipping as packages are already in desired state")
		t.FinalizeState(result, noop, "", false)
		return result, nil
	}

	if noop {
		t.log.Info("Skipping actions as noop")
		t.FinalizeState(result, true, noopMessage(actions), true)
		return result, nil
	}

	if properties.BuildUser == "" && os.Geteuid() == 0 && needsHelper(actions) {
		t.log.Warn("Running the AUR helper as root without a build user, makepkg will refuse to build packages")
	}

	var outputs []string
	changed := false

	for i, action := range actions {
		out, err := t.provider.Execute(ctx, action)
		if out != nil {
			outputs = append(outputs, strings.TrimSpace(out.Stdout+out.Stderr))
			changed = changed || out.Changed
		}

		if err != nil {
			result.Actions = actions[:i+1]
			result.Output = strings.TrimSpace(strings.Join(outputs, "\n"))
			result.Error = err.Error()
			t.FinalizeState(result, false, "", changed)

			return result, err
		}
	}

	result.Output = strings.TrimSpace(strings.Join(outputs, "\n"))

	final, err := t.statuses(ctx, pkgs)
	if err != nil {
		result.Error = err.Error()
		t.FinalizeState(result, false, "", changed)
		return result, err
	}
	result.Packages = final

	changed = changed || statusChanged(initial, final)
	t.FinalizeState(result, false, "", changed)

	err = t.verify(final)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	return result, nil
}

// plan decides the actions needed to move from the current status to the desired state, it has no side effects
func (t *Type) plan(status []model.PackageStatus) []model.AURAction {
	var (
		p       = t.provider
		opts    = t.prop.HelperOptions()
		ensure  = t.prop.NormalizedState()
		actions []model.AURAction
	)

	if t.prop.Upgrade {
		var targets []string

		if ensure == model.EnsureAbsent {
			if len(status) > 0 {
				t.log.Warn("Ignoring packages to remove during a full upgrade", "packages", t.prop.Packages())
			}

			return []model.AURAction{p.UpgradeAction(nil, opts)}
		}

		for _, s := range uniqueStatus(status) {
			if ensure == model.EnsureLatest || !s.Installed {
				targets = append(targets, s.Name)
			}
		}

		return []model.AURAction{p.UpgradeAction(targets, opts)}
	}

	for _, s := range uniqueStatus(status) {
		switch ensure {
		case model.EnsurePresent:
			if !s.Installed {
				actions = append(actions, p.InstallAction(s.Name, opts))
			}

		case model.EnsureLatest:
			actions = append(actions, p.InstallAction(s.Name, opts))

		case model.EnsureAbsent:
			if s.Installed {
				actions = append(actions, p.RemoveAction(s.Name, opts))
			}
		}
	}

	return actions
}

// checkPlan drops planned installs the helper would not perform, used in noop mode where the helper cannot report it.
//
// Every install target is looked up in the AUR, unknown targets fail the check and latest
// targets that are already current are dropped.
func (t *Type) checkPlan(ctx context.Context, status []model.PackageStatus, actions []model.AURAction) ([]model.AURAction, error) {
	var (
		kept     []model.AURAction
		notFound []string
		opts     = t.prop.HelperOptions()
		ensure   = t.prop.NormalizedState()
	)

	installed := map[string]model.PackageStatus{}
	for _, s := range status {
		installed[s.Name] = s
	}

	for _, action := range actions {
		if action.Kind != model.ActionInstall || len(action.Targets) != 1 {
			kept = append(kept, action)
			continue
		}

		pkg := action.Targets[0]

		info, err := t.provider.Info(ctx, pkg, opts)
		switch {
		case errors.Is(err, model.ErrPackageNotFound):
			notFound = append(notFound, pkg)
			continue
		case err != nil:
			return kept, fmt.Errorf("%s: %w", pkg, err)
		}

		current := installed[pkg]
		if ensure == model.EnsureLatest && current.Installed && iu.VersionCmp(current.Version, info.Version, false) >= 0 {
			t.log.Debug("Package is current", "package", pkg, "version", current.Version, "available", info.Version)
			continue
		}

		kept = append(kept, action)
	}

	if len(notFound) > 0 {
		return kept, fmt.Errorf("%w: could not find %s", model.ErrPackageNotFound, strings.Join(notFound, ", "))
	}

	return kept, nil
}

// uniqueStatus drops repeated packages keeping the first occurrence so each package is acted on once
func uniqueStatus(status []model.PackageStatus) []model.PackageStatus {
	seen := map[string]bool{}

	var res []model.PackageStatus
	for _, s := range status {
		if seen[s.Name] {
			continue
		}

		seen[s.Name] = true
		res = append(res, s)
	}

	return res
}

// verify checks that the final status matches the desired state
func (t *Type) verify(status []model.PackageStatus) error {
	ensure := t.prop.NormalizedState()

	var failed []string
	for _, s := range status {
		switch {
		case ensure == model.EnsureAbsent && t.prop.Upgrade:
		case ensure == model.EnsureAbsent && s.Installed:
			failed = append(failed, s.Name)
		case ensure != model.EnsureAbsent && !s.Installed:
			failed = append(failed, s.Name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w %s: %s", model.ErrDesiredStateNotReached, ensure, strings.Join(failed, ", "))
	}

	return nil
}

func (t *Type) statuses(ctx context.Context, pkgs []string) ([]model.PackageStatus, error) {
	var res []model.PackageStatus

	for _, pkg := range pkgs {
		s, err := t.provider.Status(ctx, pkg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pkg, err)
		}

		res = append(res, *s)
	}

	return res, nil
}

func statusChanged(initial []model.PackageStatus, final []model.PackageStatus) bool {
	if len(initial) != len(final) {
		return true
	}

	for i := range initial {
		if initial[i].Ensure() != final[i].Ensure() {
			return true
		}
	}

	return false
}

func needsHelper(actions []model.AURAction) bool {
	for _, a := range actions {
		if a.Kind != model.ActionRemove {
			return true
		}
	}

	return false
}

// noopMessage describes planned actions grouped by kind, for example "would install cower, meat"
func noopMessage(actions []model.AURAction) string {
	var kinds []model.ActionKind
	targets := map[model.ActionKind][]string{}

	for _, a := range actions {
		_, ok := targets[a.Kind]
		if !ok {
			kinds = append(kinds, a.Kind)
			targets[a.Kind] = []string{}
		}

		targets[a.Kind] = append(targets[a.Kind], a.Targets...)
	}

	var parts []string
	for _, k := range kinds {
		if len(targets[k]) == 0 {
			parts = append(parts, fmt.Sprintf("would %s", k))
			continue
		}

		parts = append(parts, fmt.Sprintf("would %s %s", k, strings.Join(targets[k], ", ")))
	}

	return strings.Join(parts, "; ")
}

// Info returns the installed status of every package managed by the resource
func (t *Type) Info(ctx context.Context) (any, error) {
	_, err := t.SelectProvider()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}

	return t.statuses(ctx, t.prop.Packages())
}

// PackageInfo returns AUR metadata for pkg along with the installed version and if an update is available
func (t *Type) PackageInfo(ctx context.Context, pkg string) (*model.PackageInfo, error) {
	_, err := t.SelectProvider()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}

	info, err := t.provider.Info(ctx, pkg, t.prop.HelperOptions())
	if err != nil {
		return nil, err
	}

	status, err := t.provider.Status(ctx, pkg)
	if err != nil {
		return nil, err
	}

	if status.Installed {
		info.Installed = status.Version
		info.UpdateAvailable = iu.VersionCmp(status.Version, info.Version, false) < 0
	}

	return info, nil
}

// SelectProvider implements base.EmbeddedResource
func (t *Type) SelectProvider() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.provider != nil {
		return t.provider.Name(), nil
	}

	runner, err := t.mgr.NewRunner()
	if err != nil {
		return "", err
	}

	provider, err := registry.FindSuitableProvider(model.AURTypeName, t.prop.Provider, t.facts, t.log, runner)
	if err != nil {
		return "", err
	}

	p, ok := provider.(AURProvider)
	if !ok {
		return "", fmt.Errorf("%w: provider %s does not manage aur packages", model.ErrResourceInvalid, provider.Name())
	}

	t.provider = p

	return p.Name(), nil
}

// Provider returns the name of the selected provider
func (t *Type) Provider() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.provider == nil {
		return ""
	}

	return t.provider.Name()
}
