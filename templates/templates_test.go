// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTemplates(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Templates")
}

var _ = Describe("Templates", func() {
	var env *Env

	BeforeEach(func() {
		env = &Env{
			Facts: map[string]any{
				"host": map[string]any{
					"info": map[string]any{
						"platform": "arch",
						"hostname": "builder",
					},
				},
				"cpus": 8,
			},
			Data: map[string]any{
				"helper":     "yay",
				"build_user": "build",
				"devtools":   []any{"yay-bin", "cower", "meat"},
				"parallel":   4,
				"enabled":    true,
				"editor": map[string]any{
					"package": "neovim-git",
				},
			},
		}
	})

	Describe("ResolveTemplateString", func() {
		It("Should return empty string for empty template", func() {
			result, err := ResolveTemplateString("", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(""))
		})

		It("Should return unchanged string without templates", func() {
			result, err := ResolveTemplateString("cower", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("cower"))
		})

		It("Should resolve data and facts", func() {
			result, err := ResolveTemplateString("{{ Data.helper }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("yay"))

			result, err = ResolveTemplateString("{{Facts.host.info.platform}}-{{ Data.editor.package }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("arch-neovim-git"))
		})

		It("Should render scalars as strings", func() {
			result, err := ResolveTemplateString("-j{{ Data.parallel }} {{ Data.enabled }} {{ Facts.cpus * 2 }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("-j4 true 16"))
		})

		It("Should support conditionals", func() {
			result, err := ResolveTemplateString("{{ Facts.host.info.platform == 'arch' ? 'present' : 'absent' }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("present"))
		})

		It("Should render nil as <nil>", func() {
			env.Data["nothing"] = nil

			result, err := ResolveTemplateString("{{ Data.nothing }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("<nil>"))
		})

		It("Should not resolve templates found in values", func() {
			env.Data["literal"] = "{{ Data.helper }}"

			result, err := ResolveTemplateString("{{ Data.literal }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("{{ Data.helper }}"))
		})

		It("Should fail with invalid expressions", func() {
			_, err := ResolveTemplateString("{{ Data.helper + }}", env)
			Expect(err).To(MatchError(ContainSubstring("expr compile error")))
		})
	})

	Describe("ResolveTemplateStrings", func() {
		It("Should resolve every item", func() {
			in := []string{"cower", "{{ Data.editor.package }}", "{{ lookup('data.devtools.0') }}"}

			result, err := ResolveTemplateStrings(in, env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal([]string{"cower", "neovim-git", "yay-bin"}))
			Expect(in[1]).To(Equal("{{ Data.editor.package }}"))
		})

		It("Should keep nil as nil", func() {
			result, err := ResolveTemplateStrings(nil, env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(BeNil())
		})

		It("Should report the failing item", func() {
			_, err := ResolveTemplateStrings([]string{"cower", "{{ lookup('data.missing') }}"}, env)
			Expect(err).To(MatchError(ContainSubstring("item 1: missing key 'data.missing' in environment")))
		})
	})

	Describe("lookup function", func() {
		It("Should lookup nested values", func() {
			result, err := ResolveTemplateString("{{ lookup('data.editor.package') }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("neovim-git"))

			result, err = ResolveTemplateString("{{ lookup('facts.host.info.hostname') }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("builder"))
		})

		It("Should lookup array elements", func() {
			result, err := ResolveTemplateString("{{ lookup('data.devtools.2') }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("meat"))
		})

		It("Should preserve numbers", func() {
			env.Data["ratio"] = 0.75

			result, err := ResolveTemplateString("{{ lookup('data.parallel') + 1 }} {{ lookup('data.ratio') }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("5 0.75"))
		})

		It("Should use the default for missing keys", func() {
			result, err := ResolveTemplateString("{{ lookup('data.provider', 'paru') }}", env)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("paru"))
		})

		It("Should fail for missing keys without a default", func() {
			result, err := ResolveTemplateString("{{ lookup('data.provider') }}", env)
			Expect(err).To(MatchError(ContainSubstring("missing key 'data.provider' in environment")))
			Expect(result).To(Equal(""))
		})

		It("Should be safe for concurrent use", func() {
			wg := sync.WaitGroup{}

			for range 10 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()

					result, err := ResolveTemplateString("{{ lookup('data.build_user') }}", env)
					Expect(err).ToNot(HaveOccurred())
					Expect(result).To(Equal("build"))
				}()
			}

			wg.Wait()
		})
	})

	Describe("jet function", func() {
		DescribeTable("successful template rendering",
			func(template, expected string) {
				result, err := ResolveTemplateString(template, env)
				Expect(err).ToNot(HaveOccurred())
				Expect(result).To(Equal(expected))
			},
			Entry("data variable", "{{ jet('[[ data.helper ]]') }}", "yay"),
			Entry("facts variable", "{{ jet('[[ facts.host.info.platform ]]') }}", "arch"),
			Entry("capitalized variable", "{{ jet('[[ Data.build_user ]]') }}", "build"),
			Entry("context dot notation", "{{ jet('[[ .Data.helper ]]') }}", "yay"),
			Entry("custom delimiters", "{{ jet('<< data.helper >>', '<<', '>>') }}", "yay"),
			Entry("conditional", "{{ jet('[[ if data.enabled ]]on[[ else ]]off[[ end ]]') }}", "on"),
			Entry("range", "{{ jet('[[ range i, v := data.devtools ]][[ if i > 0 ]],[[ end ]][[ v ]][[ end ]]') }}", "yay-bin,cower,meat"),
			Entry("len", "{{ jet('[[ len(data.devtools) ]]') }}", "3"),
			Entry("context map", `{{ jet('[[ name ]]-[[ build.user ]]', {"name": "cower", "build": {"user": "aur"}}) }}`, "cower-aur"),
			Entry("context lookup path", "{{ jet('[[ context_name ]]:[[ package ]]', 'data.editor') }}", "editor:neovim-git"),
			Entry("context map with delimiters", `{{ jet('<< name >>', {"name": "meat"}, '<<', '>>') }}`, "meat"),
			Entry("empty body", "{{ jet('') }}", ""),
		)

		DescribeTable("error cases",
			func(template, expectedError string) {
				_, err := ResolveTemplateString(template, env)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(expectedError))
			},
			Entry("invalid jet syntax", "{{ jet('[[ if ]]') }}", ""),
			Entry("no arguments", "{{ jet() }}", "jet requires 1, 2, 3 or 4 arguments"),
			Entry("non-string body", "{{ jet(123) }}", "jet requires a string argument for template body"),
			Entry("non-string left delimiter", "{{ jet('body', 123, '>>') }}", "jet requires a string argument for left delimiter"),
			Entry("non-string right delimiter", "{{ jet('body', '<<', 123) }}", "jet requires a string argument for right delimiter"),
			Entry("context path not a map", "{{ jet('body', 'data.helper') }}", "is not a map"),
		)
	})

	Describe("RenderJet", func() {
		It("Should render with supplied variables", func() {
			vars := env.JetVariables()
			vars.Set("extra", "meat")

			result, err := RenderJet("test", "[[ data.helper ]] [[ extra ]]", vars, env, "[[", "]]")
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("yay meat"))
		})
	})
})
