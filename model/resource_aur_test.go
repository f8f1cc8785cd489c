// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"github.com/goccy/go-yaml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/aurm/templates"
)

var _ = Describe("AURResourceProperties", func() {
	Describe("NormalizedState", func() {
		DescribeTable("state aliases",
			func(state string, expected string) {
				p := &AURResourceProperties{State: state}
				Expect(p.NormalizedState()).To(Equal(expected))
			},
			Entry("default", "", EnsurePresent),
			Entry("present", "present", EnsurePresent),
			Entry("installed", "installed", EnsurePresent),
			Entry("latest", "latest", EnsureLatest),
			Entry("absent", "absent", EnsureAbsent),
			Entry("removed", "removed", EnsureAbsent),
			Entry("unknown", "bogus", ""),
		)
	})

	Describe("Packages", func() {
		It("Should prefer names", func() {
			p := &AURResourceProperties{CommonResourceProperties: CommonResourceProperties{Name: "devtools"}, Names: []string{"cower", "meat"}}
			Expect(p.Packages()).To(Equal([]string{"cower", "meat"}))
		})

		It("Should fall back to the resource name", func() {
			p := &AURResourceProperties{CommonResourceProperties: CommonResourceProperties{Name: "cower"}}
			Expect(p.Packages()).To(Equal([]string{"cower"}))
		})

		It("Should not use the resource name for upgrades", func() {
			p := &AURResourceProperties{CommonResourceProperties: CommonResourceProperties{Name: "nightly"}, Upgrade: true}
			Expect(p.Packages()).To(BeEmpty())
		})
	})

	Describe("Validate", func() {
		It("Should accept valid requests", func() {
			Expect((&AURResourceProperties{Names: []string{"cower", "python-foo_bar", "lib32-gtk+", "nerd-fonts@git"}}).Validate()).To(Succeed())
			Expect((&AURResourceProperties{Upgrade: true}).Validate()).To(Succeed())
			Expect((&AURResourceProperties{Names: []string{"cower"}, State: "absent", Recurse: true, BuildUser: "build"}).Validate()).To(Succeed())
		})

		It("Should require names or upgrade", func() {
			err := (&AURResourceProperties{}).Validate()
			Expect(err).To(MatchError(ErrInvalidRequest))
			Expect(err).To(MatchError(ContainSubstring("one of name or upgrade is required")))
		})

		It("Should reject unknown states", func() {
			err := (&AURResourceProperties{Names: []string{"cower"}, State: "bogus"}).Validate()
			Expect(err).To(MatchError(ErrInvalidRequest))
		})

		It("Should reject unsafe names", func() {
			for _, name := range []string{"-Rns", "cower;reboot", "co wer", "$(id)", ""} {
				err := (&AURResourceProperties{Names: []string{"cower", name}}).Validate()
				Expect(err).To(MatchError(ErrInvalidRequest), name)
			}
		})

		It("Should reject invalid build users", func() {
			err := (&AURResourceProperties{Names: []string{"cower"}, BuildUser: "root; id"}).Validate()
			Expect(err).To(MatchError(ErrInvalidRequest))
		})

		It("Should skip validation when requested", func() {
			p := &AURResourceProperties{CommonResourceProperties: CommonResourceProperties{SkipValidate: true}, State: "bogus"}
			Expect(p.Validate()).To(Succeed())
		})
	})

	Describe("HelperOptions", func() {
		It("Should copy the helper settings", func() {
			p := &AURResourceProperties{Recurse: true, Force: true, BuildUser: "build"}
			Expect(p.HelperOptions()).To(Equal(HelperOptions{Recurse: true, Force: true, BuildUser: "build"}))
		})
	})

	Describe("ResolveTemplates", func() {
		It("Should resolve all templated fields", func() {
			env := &templates.Env{Data: map[string]any{"pkg": "cower", "user": "build", "state": "latest"}}
			p := &AURResourceProperties{
				CommonResourceProperties: CommonResourceProperties{Name: "{{ Data.pkg }}"},
				Names:                    []string{"{{ Data.pkg }}", "meat"},
				State:                    "{{ Data.state }}",
				BuildUser:                "{{ Data.user }}",
			}

			Expect(p.ResolveTemplates(env)).To(Succeed())
			Expect(p.Name).To(Equal("cower"))
			Expect(p.Names).To(Equal([]string{"cower", "meat"}))
			Expect(p.State).To(Equal("latest"))
			Expect(p.BuildUser).To(Equal("build"))
		})

		It("Should report the failing field", func() {
			p := &AURResourceProperties{Names: []string{"{{ lookup('data.missing') }}"}}
			Expect(p.ResolveTemplates(&templates.Env{})).To(MatchError(ContainSubstring("names: item 0")))
		})
	})

	Describe("NewAURResourcePropertiesFromYaml", func() {
		It("Should parse a single document", func() {
			props, err := NewAURResourcePropertiesFromYaml(yaml.RawMessage("name: cower\nstate: latest\nbuild_user: build\n"))
			Expect(err).ToNot(HaveOccurred())
			Expect(props).To(HaveLen(1))

			p := props[0].(*AURResourceProperties)
			Expect(p.Name).To(Equal("cower"))
			Expect(p.Type).To(Equal(AURTypeName))
			Expect(p.State).To(Equal(EnsureLatest))
			Expect(p.BuildUser).To(Equal("build"))
		})

		It("Should parse a list with defaults", func() {
			raw := `
- defaults:
    build_user: build
    state: latest
- cower: {}
- devtools:
    names: [meat, yajl]
    state: present
`
			props, err := NewAURResourcePropertiesFromYaml(yaml.RawMessage(raw))
			Expect(err).ToNot(HaveOccurred())
			Expect(props).To(HaveLen(2))

			cower := props[0].(*AURResourceProperties)
			Expect(cower.Name).To(Equal("cower"))
			Expect(cower.State).To(Equal(EnsureLatest))
			Expect(cower.BuildUser).To(Equal("build"))
			Expect(cower.Packages()).To(Equal([]string{"cower"}))

			devtools := props[1].(*AURResourceProperties)
			Expect(devtools.Name).To(Equal("devtools"))
			Expect(devtools.State).To(Equal(EnsurePresent))
			Expect(devtools.BuildUser).To(Equal("build"))
			Expect(devtools.Packages()).To(Equal([]string{"meat", "yajl"}))
		})

		It("Should reject multiple defaults", func() {
			_, err := NewAURResourcePropertiesFromYaml(yaml.RawMessage("- defaults: {}\n- defaults: {}\n"))
			Expect(err).To(MatchError("multiple defaults found"))
		})
	})

	Describe("NewValidatedResourcePropertiesFromYaml", func() {
		It("Should resolve and validate", func() {
			env := &templates.Env{Data: map[string]any{"editor": "meat"}}

			props, err := NewValidatedResourcePropertiesFromYaml(AURTypeName, yaml.RawMessage("- editor:\n    names: ['{{ Data.editor }}']\n"), env)
			Expect(err).ToNot(HaveOccurred())
			Expect(props[0].(*AURResourceProperties).Names).To(Equal([]string{"meat"}))

			_, err = NewValidatedResourcePropertiesFromYaml(AURTypeName, yaml.RawMessage("- bad:\n    state: bogus\n"), env)
			Expect(err).To(MatchError(ErrInvalidRequest))
			Expect(err).To(MatchError(ContainSubstring("aur#bad")))
		})

		It("Should reject unknown types", func() {
			_, err := NewValidatedResourcePropertiesFromYaml("file", yaml.RawMessage("{}"), &templates.Env{})
			Expect(err).To(MatchError(ErrUnknownType))
		})
	})

	Describe("ExecutionResult", func() {
		It("Should summarize the outcome", func() {
			r := &ExecutionResult{CommonResourceState: CommonResourceState{Ensure: EnsurePresent}}
			Expect(r.Message()).To(Equal("all packages already present"))

			r.Actions = []AURAction{{Kind: ActionInstall, Targets: []string{"cower"}}, {Kind: ActionRemove, Targets: []string{"meat"}}}
			r.Changed = true
			Expect(r.Message()).To(Equal("install cower; remove meat"))

			r.Error = "command failed"
			Expect(r.Message()).To(Equal("command failed"))
		})

		It("Should quote command lines", func() {
			a := AURAction{Command: "yay", Args: []string{"-S", "lib32-gtk+", "odd name"}}
			Expect(a.CommandLine()).To(Equal("yay -S lib32-gtk+ 'odd name'"))
		})
	})
})
