// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/santhosh-tekuri/jsonschema/v6"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
	aurresource "github.com/choria-io/aurm/resources/aur"
	"github.com/choria-io/aurm/templates"
)

//go:embed manifest.schema.json
var manifestSchema []byte

const manifestSchemaURL = "https://choria.io/schemas/aurm/v1/manifest.json"

// ErrResourceFailed indicates that at least one resource in a manifest failed
var ErrResourceFailed = errors.New("manifest resource failed")

var _ model.Apply = (*Apply)(nil)

// Apply represents a parsed and resolved manifest ready for execution
type Apply struct {
	resources   []model.ResourceProperties
	data        map[string]any
	checksum    string
	failOnError bool

	mu sync.Mutex
}

// Manifest is the raw structure of a manifest file
type Manifest struct {
	Data map[string]any  `json:"data,omitempty" yaml:"data,omitempty"`
	AUR  yaml.RawMessage `json:"aur,omitempty" yaml:"aur,omitempty"`
}

func (a *Apply) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(a.toMap())
}

func (a *Apply) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.toMap())
}

func (a *Apply) toMap() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	resources := []map[string]any{}
	for _, r := range a.resources {
		resources = append(resources, map[string]any{r.CommonProperties().Name: r})
	}

	return map[string]any{
		"data": a.data,
		"aur":  resources,
	}
}

// Resources returns the resources in the manifest in the order they are applied
func (a *Apply) Resources() []model.ResourceProperties {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.resources
}

// Data returns the data associated with the manifest
func (a *Apply) Data() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.data
}

// Checksum is the sha256 of the manifest source as read
func (a *Apply) Checksum() string {
	return a.checksum
}

// FailOnError indicates the apply stops at the first failed resource
func (a *Apply) FailOnError() bool {
	return a.failOnError
}

// ValidateManifest validates a YAML manifest against the manifest schema
func ValidateManifest(manifest []byte) error {
	mj, err := yaml.YAMLToJSON(manifest)
	if err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manifestSchema))
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	err = compiler.AddResource(manifestSchemaURL, schemaDoc)
	if err != nil {
		return err
	}

	schema, err := compiler.Compile(manifestSchemaURL)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(mj))
	if err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	err = schema.Validate(inst)
	if err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	return nil
}

// ResolveManifestReader reads, renders and validates a manifest, the manifest data is merged into the manager data before resources are parsed.
// Manifests with names ending in .jet are rendered as jet templates first.
func ResolveManifestReader(ctx context.Context, mgr model.Manager, name string, manifest io.Reader, opts ...Option) (*Apply, error) {
	mb, err := io.ReadAll(manifest)
	if err != nil {
		return nil, err
	}

	log, err := mgr.Logger("component", "apply", "manifest", name)
	if err != nil {
		return nil, err
	}

	res := &Apply{checksum: iu.Sha256HashBytes(mb)}
	for _, opt := range opts {
		err = opt(res)
		if err != nil {
			return nil, err
		}
	}

	log.Debug("Resolving manifest", "sha256", res.checksum)

	env, err := mgr.TemplateEnvironment(ctx)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(name, ".jet") {
		rendered, err := templates.RenderJet(name, string(mb), env.JetVariables(), env, "[[", "]]")
		if err != nil {
			return nil, fmt.Errorf("could not render manifest: %w", err)
		}
		mb = []byte(rendered)
	}

	err = ValidateManifest(mb)
	if err != nil {
		return nil, err
	}

	var m Manifest
	err = yaml.Unmarshal(mb, &m)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	res.data = iu.DeepMergeMap(mgr.Data(), m.Data)
	mgr.SetData(res.data)

	if len(m.AUR) == 0 {
		log.Warn("Manifest has no aur resources")
		return res, nil
	}

	// the environment has to be rebuilt to see the manifest data
	env, err = mgr.TemplateEnvironment(ctx)
	if err != nil {
		return nil, err
	}

	res.resources, err = model.NewValidatedResourcePropertiesFromYaml(model.AURTypeName, m.AUR, env)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return res, nil
}

// Execute applies every resource in order and records an event for each, a resource that cannot be constructed is recorded as failed
func (a *Apply) Execute(ctx context.Context, mgr model.Manager, userLog model.Logger) (model.SessionStore, error) {
	timer := prometheus.NewTimer(metrics.ManifestApplyTime.WithLabelValues())
	defer timer.ObserveDuration()

	session, err := mgr.StartSession(a)
	if err != nil {
		return nil, err
	}

	log, err := mgr.Logger("component", "apply")
	if err != nil {
		return nil, err
	}

	var failed []string

	for _, prop := range a.Resources() {
		if ctx.Err() != nil {
			return session, ctx.Err()
		}

		event := a.applyResource(ctx, mgr, prop)

		event.LogStatus(userLog)

		err = mgr.RecordEvent(event)
		if err != nil {
			log.Error("Could not save event", "event", event.String(), "error", err)
		}

		if !event.Failed {
			continue
		}

		failed = append(failed, fmt.Sprintf("%s#%s", event.ResourceType, event.Name))

		if a.failOnError {
			return session, fmt.Errorf("%w: %s: %s", ErrResourceFailed, failed[0], strings.Join(event.Errors, ", "))
		}
	}

	if len(failed) > 0 {
		return session, fmt.Errorf("%w: %s", ErrResourceFailed, strings.Join(failed, ", "))
	}

	return session, nil
}

func (a *Apply) applyResource(ctx context.Context, mgr model.Manager, prop model.ResourceProperties) *model.TransactionEvent {
	common := prop.CommonProperties()

	failure := func(err error) *model.TransactionEvent {
		event := model.NewTransactionEvent(model.AURTypeName, common.Name, common.Alias)
		event.Properties = prop
		event.Failed = true
		event.Errors = append(event.Errors, err.Error())
		return event
	}

	aurProp, ok := prop.(*model.AURResourceProperties)
	if !ok {
		return failure(fmt.Errorf("%w: %T", model.ErrUnknownType, prop))
	}

	resource, err := aurresource.New(ctx, mgr, *aurProp)
	if err != nil {
		return failure(err)
	}

	event, err := resource.Apply(ctx)
	if err != nil {
		return failure(err)
	}

	return event
}
