// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/choria-io/aurm/internal/facts"
	"github.com/choria-io/aurm/internal/registry"
	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/model"
)

// Register registers a factory for every supported helper with the registry
func Register() {
	for _, p := range Profiles() {
		registry.MustRegister(&factory{profile: p})
	}
}

type factory struct {
	profile Profile
}

func (p *factory) TypeName() string { return model.AURTypeName }
func (p *factory) Name() string     { return p.profile.Name }
func (p *factory) New(log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	return NewProvider(log, runner, p.profile)
}

func (p *factory) IsManageable(f map[string]any) (bool, int, error) {
	arch, err := isArchFamily(f)
	if err != nil {
		return false, 0, err
	}
	if !arch {
		return false, 0, nil
	}

	for _, path := range []string{p.profile.Binary, ExpacBinary, PacmanBinary} {
		_, found, err := iu.ExecutableInPath(path)
		if err != nil {
			return false, 0, err
		}
		if !found {
			return false, 0, nil
		}
	}

	return true, p.profile.Priority, nil
}

// isArchFamily is true unless the facts identify a platform outside the Arch family
func isArchFamily(f map[string]any) (bool, error) {
	if len(f) == 0 {
		return true, nil
	}

	j, err := json.Marshal(f)
	if err != nil {
		return false, err
	}

	platform := gjson.GetBytes(j, "host.info.platform").String()
	family := gjson.GetBytes(j, "host.info.platformFamily").String()

	switch {
	case platform == "" && family == "":
		return true, nil
	case family == "arch":
		return true, nil
	default:
		return slices.Contains(facts.ArchPlatforms, platform), nil
	}
}
