// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kballard/go-shellquote"

	"github.com/choria-io/aurm/templates"
)

const (
	// ResourceStatusAURProtocol is the protocol identifier for aur resource state
	ResourceStatusAURProtocol = "io.choria.aurm.v1.resource.aur.state"

	// AURTypeName is the type name for aur resources
	AURTypeName = "aur"
)

var (
	// aurNameRegex matches names allowed by the AUR, the first character may not be a dash so names are never read as options
	aurNameRegex = regexp.MustCompile(`^[a-zA-Z0-9@_+][a-zA-Z0-9@._+-]*$`)

	// userNameRegex matches POSIX user names
	userNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]*[$]?$`)
)

// IsValidUserName determines if user is a valid POSIX user name
func IsValidUserName(user string) bool {
	return userNameRegex.MatchString(user)
}

// AURResourceProperties is a request to bring one or more AUR packages into a desired state
type AURResourceProperties struct {
	CommonResourceProperties `yaml:",inline"`

	// Names are the packages to manage, when empty the resource name is the package unless Upgrade is set
	Names []string `json:"names,omitempty" yaml:"names,omitempty"`
	// State is one of present, latest or absent, installed and removed are accepted as aliases
	State string `json:"state,omitempty" yaml:"state,omitempty"`
	// Upgrade performs a full upgrade of all installed AUR packages
	Upgrade bool `json:"upgrade,omitempty" yaml:"upgrade,omitempty"`
	// Recurse removes dependencies that are not required by other packages, only used with absent
	Recurse bool `json:"recurse,omitempty" yaml:"recurse,omitempty"`
	// Force removes packages without dependency checks, only used with absent
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
	// BuildUser runs the helper as this user using sudo, makepkg refuses to run as root
	BuildUser string `json:"build_user,omitempty" yaml:"build_user,omitempty"`
}

// PackageStatus is the installed status of a single package
type PackageStatus struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Installed bool   `json:"installed" yaml:"installed"`
}

// Ensure returns the installed version or absent
func (s PackageStatus) Ensure() string {
	if !s.Installed {
		return EnsureAbsent
	}

	return s.Version
}

// PackageInfo is the AUR metadata for a package as reported by the helper
type PackageInfo struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Maintainer  string            `json:"maintainer,omitempty" yaml:"maintainer,omitempty"`
	Fields      map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Installed is the locally installed version, empty when not installed
	Installed string `json:"installed,omitempty" yaml:"installed,omitempty"`
	// UpdateAvailable is true when the AUR version is newer than the installed one
	UpdateAvailable bool `json:"update_available" yaml:"update_available"`
}

// ActionKind is the kind of change an action makes
type ActionKind string

const (
	ActionUpgrade ActionKind = "upgrade"
	ActionInstall ActionKind = "install"
	ActionRemove  ActionKind = "remove"
)

// HelperOptions adjust how actions are built
type HelperOptions struct {
	Recurse   bool
	Force     bool
	BuildUser string
}

// AURAction is a single planned command invocation
type AURAction struct {
	Kind    ActionKind `json:"kind" yaml:"kind"`
	Targets []string   `json:"targets,omitempty" yaml:"targets,omitempty"`
	Command string     `json:"command" yaml:"command"`
	Args    []string   `json:"args,omitempty" yaml:"args,omitempty"`
}

// CommandLine is the action as a shell quoted string, for logging only
func (a AURAction) CommandLine() string {
	return shellquote.Join(append([]string{a.Command}, a.Args...)...)
}

func (a AURAction) String() string {
	if len(a.Targets) == 0 {
		return string(a.Kind)
	}

	return fmt.Sprintf("%s %s", a.Kind, strings.Join(a.Targets, ", "))
}

// ActionOutput is the captured result of executing an action
type ActionOutput struct {
	Stdout   string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	// Changed is false when the helper reported there was nothing to do
	Changed bool `json:"changed" yaml:"changed"`
}

// ExecutionResult is the outcome of reconciling an aur resource
type ExecutionResult struct {
	CommonResourceState

	Output   string          `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
	Actions  []AURAction     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Packages []PackageStatus `json:"packages,omitempty" yaml:"packages,omitempty"`
}

func (r *ExecutionResult) CommonState() *CommonResourceState {
	return &r.CommonResourceState
}

// Message is a short human readable summary of the result
func (r *ExecutionResult) Message() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Noop && r.NoopMessage != "":
		return r.NoopMessage
	case len(r.Actions) == 0:
		return fmt.Sprintf("all packages already %s", r.Ensure)
	case !r.Changed:
		return "helper reported nothing to do"
	}

	var parts []string
	for _, a := range r.Actions {
		parts = append(parts, a.String())
	}

	return strings.Join(parts, "; ")
}

func (p *AURResourceProperties) CommonProperties() *CommonResourceProperties {
	return &p.CommonResourceProperties
}

// NormalizedState maps the requested state onto present, latest or absent, empty when unknown
func (p *AURResourceProperties) NormalizedState() string {
	switch p.State {
	case "", EnsurePresent, "installed":
		return EnsurePresent
	case EnsureLatest:
		return EnsureLatest
	case EnsureAbsent, "removed":
		return EnsureAbsent
	default:
		return ""
	}
}

// Packages are the package names this resource acts on in request order
func (p *AURResourceProperties) Packages() []string {
	if len(p.Names) > 0 {
		return p.Names
	}

	if p.Upgrade || p.Name == "" {
		return nil
	}

	return []string{p.Name}
}

// HelperOptions are the options to pass to the provider when building actions
func (p *AURResourceProperties) HelperOptions() HelperOptions {
	return HelperOptions{
		Recurse:   p.Recurse,
		Force:     p.Force,
		BuildUser: p.BuildUser,
	}
}

// Validate validates the aur resource properties, every failure wraps ErrInvalidRequest
func (p *AURResourceProperties) Validate() error {
	if p.SkipValidate {
		return nil
	}

	if p.NormalizedState() == "" {
		return fmt.Errorf("%w: unknown state %q, expected one of present, latest or absent", ErrInvalidRequest, p.State)
	}

	pkgs := p.Packages()
	if len(pkgs) == 0 && !p.Upgrade {
		return fmt.Errorf("%w: one of name or upgrade is required", ErrInvalidRequest)
	}

	for _, name := range pkgs {
		if !aurNameRegex.MatchString(name) {
			return fmt.Errorf("%w: package name contains invalid characters: %q (allowed: alphanumeric, @._+-)", ErrInvalidRequest, name)
		}
	}

	if p.BuildUser != "" && !IsValidUserName(p.BuildUser) {
		return fmt.Errorf("%w: invalid build user %q", ErrInvalidRequest, p.BuildUser)
	}

	return nil
}

// ResolveTemplates resolves template expressions in the aur resource properties
func (p *AURResourceProperties) ResolveTemplates(env *templates.Env) error {
	err := p.CommonResourceProperties.ResolveTemplates(env)
	if err != nil {
		return err
	}

	p.Names, err = templates.ResolveTemplateStrings(p.Names, env)
	if err != nil {
		return fmt.Errorf("names: %w", err)
	}

	p.State, err = templates.ResolveTemplateString(p.State, env)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}

	p.BuildUser, err = templates.ResolveTemplateString(p.BuildUser, env)
	if err != nil {
		return fmt.Errorf("build_user: %w", err)
	}

	return nil
}

// ToYamlManifest returns the aur resource properties as a yaml document
func (p *AURResourceProperties) ToYamlManifest() (yaml.RawMessage, error) {
	return yaml.Marshal(p)
}

// NewAURResourcePropertiesFromYaml creates aur resource properties from a yaml document, does not validate or expand templates
func NewAURResourcePropertiesFromYaml(raw yaml.RawMessage) ([]ResourceProperties, error) {
	return parseProperties(raw, AURTypeName, func() ResourceProperties { return &AURResourceProperties{} })
}
