// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package helper

// Profile describes how to drive a specific AUR helper, arguments are placed before the package names
type Profile struct {
	// Name is the provider name
	Name string
	// Binary is the executable to invoke
	Binary string
	// Priority orders auto selection, lower is preferred
	Priority int
	// InstallArgs install or upgrade the named packages
	InstallArgs []string
	// UpgradeArgs upgrade all installed AUR packages
	UpgradeArgs []string
	// InfoArgs show AUR metadata for a package
	InfoArgs []string
}

var (
	Yay = Profile{
		Name:        "yay",
		Binary:      "yay",
		Priority:    1,
		InstallArgs: []string{"-S", "--aur", "--noconfirm", "--needed"},
		UpgradeArgs: []string{"-Syu", "--aur", "--noconfirm"},
		InfoArgs:    []string{"-Si", "--aur"},
	}

	Paru = Profile{
		Name:        "paru",
		Binary:      "paru",
		Priority:    2,
		InstallArgs: []string{"-S", "--aur", "--noconfirm", "--needed"},
		UpgradeArgs: []string{"-Syu", "--aur", "--noconfirm"},
		InfoArgs:    []string{"-Si", "--aur"},
	}

	Packer = Profile{
		Name:        "packer",
		Binary:      "packer",
		Priority:    3,
		InstallArgs: []string{"-S", "--auronly", "--noconfirm", "--noedit"},
		UpgradeArgs: []string{"-Syu", "--auronly", "--noconfirm", "--noedit"},
		InfoArgs:    []string{"-Si", "--auronly"},
	}
)

// Profiles are all supported helpers in order of preference
func Profiles() []Profile {
	return []Profile{Yay, Paru, Packer}
}
