// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/aurm/healthcheck"
	"github.com/choria-io/aurm/manager"
)

var _ = Describe("Check", func() {
	It("Should be unknown without anything to check", func() {
		res := (&checkCommand{}).check()
		Expect(res.Status).To(Equal(healthcheck.Unknown))
		Expect(res.String()).To(Equal("UNKNOWN: a manifest or packages to check are required"))
	})
})

var _ = Describe("dotEnvData", func() {
	It("Should read the environment and .env files", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("AURM_TEST_HELPER=\"paru\"\n# comment\n"), 0600)).To(Succeed())

		wd, err := os.Getwd()
		Expect(err).ToNot(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(os.Chdir, wd)

		Expect(os.Setenv("AURM_TEST_USER", "build")).To(Succeed())
		DeferCleanup(os.Unsetenv, "AURM_TEST_USER")

		log, err := manager.NewLogger("error", manager.LogFormatText, GinkgoWriter)
		Expect(err).ToNot(HaveOccurred())

		env, err := dotEnvData(true, log)
		Expect(err).ToNot(HaveOccurred())
		Expect(env).To(HaveKeyWithValue("AURM_TEST_HELPER", "paru"))
		Expect(env).To(HaveKeyWithValue("AURM_TEST_USER", "build"))

		env, err = dotEnvData(false, log)
		Expect(err).ToNot(HaveOccurred())
		Expect(env).ToNot(HaveKey("AURM_TEST_HELPER"))
		Expect(env).To(HaveKeyWithValue("AURM_TEST_USER", "build"))
	})
})
