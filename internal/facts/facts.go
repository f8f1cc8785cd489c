// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	iu "github.com/choria-io/aurm/internal/util"
	"github.com/choria-io/aurm/metrics"
	"github.com/choria-io/aurm/model"
)

// Tools are the executables reported in the aur.tools fact
var Tools = []string{"yay", "paru", "packer", "expac", "pacman", "makepkg", "sudo"}

// ArchPlatforms are gopsutil platform names of Arch Linux and its derivatives
var ArchPlatforms = []string{"arch", "archarm", "manjaro", "manjaro-arm", "endeavouros", "garuda", "artix", "cachyos"}

// Directories are the locations facts files are read from, later ones override earlier ones
func Directories() []string {
	return []string{
		"/etc/choria/aurm",
		filepath.Join(xdg.ConfigHome, "choria", "aurm"),
	}
}

// StandardFacts returns a map of standard facts merged with facts files from dirs, Directories() when none are given
func StandardFacts(ctx context.Context, log model.Logger, dirs ...string) (map[string]any, error) {
	timer := prometheus.NewTimer(metrics.FactGatherTime.WithLabelValues())
	defer timer.ObserveDuration()

	sf, err := standardFacts(ctx)
	if err != nil {
		return nil, err
	}

	if dirs == nil {
		dirs = Directories()
	}

	return MergeFactFiles(sf, log, dirs...), nil
}

// MergeFactFiles deep merges facts.json and facts.yaml from each directory into facts
func MergeFactFiles(facts map[string]any, log model.Logger, dirs ...string) map[string]any {
	for _, dir := range dirs {
		for _, file := range []string{"facts.json", "facts.yaml"} {
			path := filepath.Join(dir, file)
			if !iu.FileExists(path) {
				continue
			}

			log.Debug("Reading facts", "file", path)

			fb, err := os.ReadFile(path)
			if err != nil {
				log.Error("Failed to read facts file", "file", path, "error", err)
				continue
			}

			var f map[string]any
			if filepath.Ext(path) == ".json" {
				err = json.Unmarshal(fb, &f)
			} else {
				err = yaml.Unmarshal(fb, &f)
			}
			if err != nil {
				log.Error("Failed to unmarshal facts file", "file", path, "error", err)
				continue
			}

			facts = iu.DeepMergeMap(facts, f)
		}
	}

	return facts
}

// aurFacts describes the AUR tooling available on the node
func aurFacts() map[string]any {
	tools := map[string]any{}

	for _, t := range Tools {
		path, found, _ := iu.ExecutableInPath(t)
		if found {
			tools[t] = path
		}
	}

	return map[string]any{
		"tools":     tools,
		"sudo_user": os.Getenv("SUDO_USER"),
		"root":      os.Geteuid() == 0,
	}
}

func standardFacts(ctx context.Context) (map[string]any, error) {
	memoryFacts := map[string]any{
		"virtual": map[string]any{},
		"swap":    map[string]any{},
	}
	cpuFacts := map[string]any{
		"info":  []any{},
		"count": 0,
	}
	partitionFacts := map[string]any{
		"partitions": []any{},
		"usage":      []any{},
	}
	hostFacts := map[string]any{
		"info": map[string]any{},
	}

	virtual, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		memoryFacts["virtual"] = virtual
	}

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err == nil {
		memoryFacts["swap"] = swap
	}

	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err == nil {
		cpuFacts["info"] = cpuInfo
	}

	// makepkg builds scale with logical cores
	count, err := cpu.CountsWithContext(ctx, true)
	if err == nil {
		cpuFacts["count"] = count
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err == nil && len(parts) > 0 {
		usages := []*disk.UsageStat{}

		for _, part := range parts {
			u, err := disk.UsageWithContext(ctx, part.Mountpoint)
			if err != nil {
				continue
			}
			usages = append(usages, u)
		}

		partitionFacts["partitions"] = parts
		partitionFacts["usage"] = usages
	}

	hostInfo, err := host.InfoWithContext(ctx)
	if err == nil {
		hostFacts["info"] = hostInfo
	}

	return map[string]any{
		"host":      hostFacts,
		"partition": partitionFacts,
		"cpu":       cpuFacts,
		"memory":    memoryFacts,
		"aur":       aurFacts(),
	}, nil
}
