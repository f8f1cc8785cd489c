// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/aurm/model"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd")
}

var _ = Describe("Module", func() {
	Describe("parseModuleArgs", func() {
		It("Should require arguments", func() {
			_, _, err := parseModuleArgs([]byte("  \n"))
			Expect(err).To(MatchError(model.ErrInvalidRequest))
		})

		It("Should parse JSON arguments", func() {
			props, noop, err := parseModuleArgs([]byte(`{"name":["cower","meat"],"state":"absent","recurse":true,"force":"yes","build_user":"build","_ansible_check_mode":false,"_ansible_verbosity":3}`))
			Expect(err).ToNot(HaveOccurred())
			Expect(noop).To(BeFalse())
			Expect(props.Names).To(Equal([]string{"cower", "meat"}))
			Expect(props.State).To(Equal("absent"))
			Expect(props.Recurse).To(BeTrue())
			Expect(props.Force).To(BeTrue())
			Expect(props.Upgrade).To(BeFalse())
			Expect(props.BuildUser).To(Equal("build"))
		})

		It("Should support name aliases and comma separated names", func() {
			props, _, err := parseModuleArgs([]byte(`{"pkg":"cower, meat"}`))
			Expect(err).ToNot(HaveOccurred())
			Expect(props.Names).To(Equal([]string{"cower", "meat"}))

			props, _, err = parseModuleArgs([]byte(`{"package":["a,b","c"]}`))
			Expect(err).ToNot(HaveOccurred())
			Expect(props.Names).To(Equal([]string{"a", "b", "c"}))
		})

		It("Should detect check mode", func() {
			props, noop, err := parseModuleArgs([]byte(`{"upgrade":true,"_ansible_check_mode":true}`))
			Expect(err).ToNot(HaveOccurred())
			Expect(noop).To(BeTrue())
			Expect(props.Upgrade).To(BeTrue())
			Expect(props.Names).To(BeEmpty())
		})

		It("Should parse key=value arguments", func() {
			props, noop, err := parseModuleArgs([]byte(`name=cower state=latest upgrade=yes provider=paru check_mode=true`))
			Expect(err).ToNot(HaveOccurred())
			Expect(noop).To(BeTrue())
			Expect(props.Names).To(Equal([]string{"cower"}))
			Expect(props.State).To(Equal("latest"))
			Expect(props.Upgrade).To(BeTrue())
			Expect(props.Provider).To(Equal("paru"))
		})

		It("Should support quoted key=value arguments", func() {
			props, _, err := parseModuleArgs([]byte(`name="cower, meat" state=present`))
			Expect(err).ToNot(HaveOccurred())
			Expect(props.Names).To(Equal([]string{"cower", "meat"}))
		})

		It("Should reject malformed input", func() {
			for _, args := range []string{
				`{"name":`,
				`name=cower bogus`,
				`name='cower`,
				`{"name":"cower","root":"/mnt"}`,
				`name=cower upgrade=maybe`,
				`{"name":"cower","recurse":"sometimes"}`,
			} {
				_, _, err := parseModuleArgs([]byte(args))
				Expect(err).To(MatchError(model.ErrInvalidRequest), args)
			}
		})
	})

	Describe("newModuleResult", func() {
		It("Should report successful results", func() {
			res := &model.ExecutionResult{
				Output: "installed cower",
				Actions: []model.AURAction{
					{Kind: model.ActionInstall, Targets: []string{"cower"}, Command: "yay", Args: []string{"-S", "--aur", "--noconfirm", "--needed", "cower"}},
				},
				Packages: []model.PackageStatus{{Name: "cower"}},
			}
			res.Changed = true

			out := newModuleResult(res, nil)
			Expect(out.Changed).To(BeTrue())
			Expect(out.Failed).To(BeFalse())
			Expect(out.Stdout).To(Equal("installed cower"))
			Expect(out.Msg).To(Equal(res.Message()))
			Expect(out.Actions).To(Equal([]string{"yay -S --aur --noconfirm --needed cower"}))
			Expect(out.Packages).To(HaveLen(1))
		})

		It("Should report failures with partial results", func() {
			res := &model.ExecutionResult{Output: "partial"}
			res.Changed = true

			out := newModuleResult(res, errors.New("boom"))
			Expect(out.Failed).To(BeTrue())
			Expect(out.Changed).To(BeTrue())
			Expect(out.Msg).To(Equal("boom"))
			Expect(out.Stdout).To(Equal("partial"))
		})

		It("Should handle failures without results", func() {
			out := newModuleResult(nil, model.ErrInvalidRequest)
			Expect(out.Failed).To(BeTrue())
			Expect(out.Changed).To(BeFalse())
			Expect(out.Msg).To(Equal("invalid request"))
		})
	})
})
