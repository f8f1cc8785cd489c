// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/choria-io/aurm/templates"
)

const (
	// EnsurePresent indicates a package should be installed
	EnsurePresent string = "present"
	// EnsureAbsent indicates a package should be removed from the system
	EnsureAbsent string = "absent"
	// EnsureLatest indicates a package should be installed and upgraded by the helper
	EnsureLatest string = "latest"
)

// Resource represents a system resource that can be managed
type Resource interface {
	Type() string
	Name() string
	Provider() string
	Properties() ResourceProperties
	Apply(context.Context) (*TransactionEvent, error)
	Info(context.Context) (any, error)
}

type ResourceState interface {
	CommonState() *CommonResourceState
}

// ResourceProperties defines the interface for resource property validation and template resolution
type ResourceProperties interface {
	CommonProperties() *CommonResourceProperties
	Validate() error
	ResolveTemplates(*templates.Env) error
	ToYamlManifest() (yaml.RawMessage, error)
}

// CommonResourceProperties contains properties shared by all resource types
type CommonResourceProperties struct {
	Type         string `json:"-" yaml:"-"`
	Name         string `json:"name" yaml:"name"`
	Alias        string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Provider     string `json:"provider,omitempty" yaml:"provider,omitempty"`
	SkipValidate bool   `json:"-" yaml:"-"`
}

// ResolveTemplates resolves template expressions in common resource properties
func (p *CommonResourceProperties) ResolveTemplates(env *templates.Env) error {
	var err error

	p.Name, err = templates.ResolveTemplateString(p.Name, env)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}

	p.Provider, err = templates.ResolveTemplateString(p.Provider, env)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	return nil
}

// Validate validates common resource properties
func (p *CommonResourceProperties) Validate() error {
	if p.SkipValidate {
		return nil
	}

	if p.Name == "" {
		return ErrResourceNameRequired
	}

	return nil
}

// NewCommonResourceState creates a new common resource state with the given properties
func NewCommonResourceState(protocol string, resourceType string, name string, ensure string) CommonResourceState {
	return CommonResourceState{
		TimeStamp:    time.Now().UTC(),
		Protocol:     protocol,
		ResourceType: resourceType,
		Name:         name,
		Ensure:       ensure,
	}
}

// CommonResourceState contains state information shared by all resource types
type CommonResourceState struct {
	TimeStamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Protocol     string    `json:"protocol" yaml:"protocol"`
	ResourceType string    `json:"type" yaml:"type"`
	Name         string    `json:"name" yaml:"name"`
	Ensure       string    `json:"ensure" yaml:"ensure"`
	Changed      bool      `json:"changed" yaml:"changed"`
	Noop         bool      `json:"noop" yaml:"noop"`
	NoopMessage  string    `json:"noop_message,omitempty" yaml:"noop_message,omitempty"`
}

// NewResourcePropertiesFromYaml creates resource properties from a yaml document and expands templates, it does not validate
func NewResourcePropertiesFromYaml(typeName string, rawProperties yaml.RawMessage, env *templates.Env) ([]ResourceProperties, error) {
	var props []ResourceProperties
	var err error

	switch typeName {
	case AURTypeName:
		props, err = NewAURResourcePropertiesFromYaml(rawProperties)
	default:
		return nil, fmt.Errorf("%w: %w %s", ErrResourceInvalid, ErrUnknownType, typeName)
	}
	if err != nil {
		return nil, err
	}

	for _, prop := range props {
		err = prop.ResolveTemplates(env)
		if err != nil {
			return nil, err
		}
	}

	return props, nil
}

// NewValidatedResourcePropertiesFromYaml creates resource properties from a yaml document, expands templates and validates the result
func NewValidatedResourcePropertiesFromYaml(typeName string, rawProperties yaml.RawMessage, env *templates.Env) ([]ResourceProperties, error) {
	props, err := NewResourcePropertiesFromYaml(typeName, rawProperties, env)
	if err != nil {
		return nil, err
	}

	for _, prop := range props {
		err = prop.Validate()
		if err != nil {
			return nil, fmt.Errorf("%s#%s: %w", typeName, prop.CommonProperties().Name, err)
		}
	}

	return props, nil
}

func findDefaultProperties(props []map[string]yaml.RawMessage) (yaml.RawMessage, error) {
	var defaultProps yaml.RawMessage

	for _, v := range props {
		if len(v) != 1 {
			return nil, fmt.Errorf("each resource entry must have exactly one name")
		}

		dflt, ok := v["defaults"]
		if !ok {
			continue
		}

		if defaultProps != nil {
			return nil, fmt.Errorf("multiple defaults found")
		}

		defaultProps = dflt
	}

	return defaultProps, nil
}

// parseProperties accepts either a single properties document or a list of single key maps, keyed by resource name, with optional defaults
func parseProperties(raw yaml.RawMessage, typeName string, target func() ResourceProperties) ([]ResourceProperties, error) {
	var entries []map[string]yaml.RawMessage

	// a single document will not unmarshal into a list, that is fine
	yaml.Unmarshal(raw, &entries)

	if len(entries) == 0 {
		prop := target()
		err := yaml.Unmarshal(raw, prop)
		if err != nil {
			return nil, err
		}

		prop.CommonProperties().Type = typeName

		return []ResourceProperties{prop}, nil
	}

	dflt, err := findDefaultProperties(entries)
	if err != nil {
		return nil, err
	}

	var res []ResourceProperties

	for _, entry := range entries {
		for name, raw := range entry {
			if name == "defaults" {
				continue
			}

			prop := target()

			if len(dflt) > 0 {
				err = yaml.Unmarshal(dflt, prop)
				if err != nil {
					return nil, err
				}
			}

			err = yaml.Unmarshal(raw, prop)
			if err != nil {
				return nil, err
			}

			cp := prop.CommonProperties()
			cp.Name = name
			cp.Type = typeName

			res = append(res, prop)
		}
	}

	return res, nil
}
