// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics")
}

var _ = Describe("Metrics", func() {
	Describe("RegisterMetrics", func() {
		It("Should be safe to call repeatedly", func() {
			Expect(func() {
				RegisterMetrics()
				RegisterMetrics()
			}).ToNot(Panic())
		})
	})

	Describe("WriteTextfile", func() {
		It("Should write collected metrics", func() {
			reg := prometheus.NewRegistry()
			reg.MustRegister(HelperActionFailures)

			HelperActionFailures.WithLabelValues("yay", "install").Inc()
			Expect(testutil.ToFloat64(HelperActionFailures.WithLabelValues("yay", "install"))).To(BeNumerically(">=", 1))

			file := filepath.Join(GinkgoT().TempDir(), "aurm.prom")
			Expect(WriteTextfile(file, reg)).To(Succeed())

			body, err := os.ReadFile(file)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`choria_aurm_helper_action_failure_count{action="install",provider="yay"}`))
		})

		It("Should fail for unwritable locations", func() {
			err := WriteTextfile(filepath.Join(GinkgoT().TempDir(), "missing", "aurm.prom"), prometheus.NewRegistry())
			Expect(err).To(HaveOccurred())
		})
	})
})
