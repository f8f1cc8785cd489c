// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPackageutil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal/Util")
}

var _ = Describe("VersionCmp", func() {
	It("Should compare simple versions", func() {
		Expect(VersionCmp("1.2", "1.3", false)).To(Equal(-1))
		Expect(VersionCmp("1.3", "1.2", false)).To(Equal(1))
		Expect(VersionCmp("1.3", "1.3", false)).To(Equal(0))
	})

	It("Should compare package releases", func() {
		Expect(VersionCmp("3.2.1-1", "3.2.1-2", false)).To(Equal(-1))
		Expect(VersionCmp("3.2.10-1", "3.2.9-4", false)).To(Equal(1))
	})

	It("Should prefer the higher epoch", func() {
		Expect(VersionCmp("1:1.0-1", "9.9-1", false)).To(Equal(1))
		Expect(VersionCmp("1.0-1", "2:0.1-1", false)).To(Equal(-1))
		Expect(VersionCmp("2:1.0-1", "2:1.1-1", false)).To(Equal(-1))
	})

	Context("when ignoring trailing zeroes", func() {
		It("Should equate versions with unneeded zeros", func() {
			Expect(VersionCmp("10.1.0", "10.1", true)).To(Equal(0))
			Expect(VersionCmp("11.0.00", "11", true)).To(Equal(0))
			Expect(VersionCmp("10.1-0", "10.1.0-0", true)).To(Equal(0))
		})

		It("Should not drop zeros that are not trailing", func() {
			Expect(VersionCmp("1.1", "1.0.1", true)).To(Equal(1))
		})
	})
})

var _ = Describe("Sha256HashBytes", func() {
	It("Should compute known hashes", func() {
		Expect(Sha256HashBytes([]byte("hello world"))).To(Equal("b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"))
		Expect(Sha256HashBytes([]byte{})).To(Equal("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"))
	})
})

var _ = Describe("ExecutableInPath", func() {
	It("Should find executables", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "yay"), []byte("#!/bin/sh\n"), 0755)).To(Succeed())
		GinkgoT().Setenv("PATH", dir)

		path, found, err := ExecutableInPath("yay")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(path).To(Equal(filepath.Join(dir, "yay")))
	})

	It("Should not treat missing executables as errors", func() {
		GinkgoT().Setenv("PATH", GinkgoT().TempDir())

		path, found, err := ExecutableInPath("paru")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeFalse())
		Expect(path).To(BeEmpty())
	})
})

var _ = Describe("File helpers", func() {
	It("Should detect files and directories", func() {
		dir := GinkgoT().TempDir()
		file := filepath.Join(dir, "manifest.yaml")
		Expect(os.WriteFile(file, []byte("aur: []\n"), 0644)).To(Succeed())

		Expect(FileExists(file)).To(BeTrue())
		Expect(FileExists(filepath.Join(dir, "missing"))).To(BeFalse())
		Expect(IsDirectory(dir)).To(BeTrue())
		Expect(IsDirectory(file)).To(BeFalse())
		Expect(IsDirectory(filepath.Join(dir, "missing"))).To(BeFalse())
	})
})

var _ = Describe("SplitNames", func() {
	It("Should split and trim comma separated names", func() {
		Expect(SplitNames("cower, meat", "yay-bin", " ,", "")).To(Equal([]string{"cower", "meat", "yay-bin"}))
	})

	It("Should return nil for no names", func() {
		Expect(SplitNames()).To(BeNil())
		Expect(SplitNames(" , ")).To(BeNil())
	})
})

var _ = Describe("Map helpers", func() {
	It("Should clone maps deeply", func() {
		source := map[string]any{
			"nested": map[string]any{"value": 1},
			"list":   []any{1, 2},
		}

		cloned := CloneMap(source)
		cloned["nested"].(map[string]any)["value"] = 2
		cloned["list"].([]any)[0] = 99

		Expect(source).To(Equal(map[string]any{
			"nested": map[string]any{"value": 1},
			"list":   []any{1, 2},
		}))
	})

	It("Should deep merge maps", func() {
		target := map[string]any{
			"aur":  map[string]any{"helper": "yay", "user": "build"},
			"list": []any{"cower"},
		}
		source := map[string]any{
			"aur":  map[string]any{"helper": "paru"},
			"list": []any{"meat"},
		}

		merged := DeepMergeMap(target, source)
		Expect(merged).To(Equal(map[string]any{
			"aur":  map[string]any{"helper": "paru", "user": "build"},
			"list": []any{"cower", "meat"},
		}))

		merged["list"].([]any)[0] = "changed"
		Expect(target["list"]).To(Equal([]any{"cower"}))
	})

	It("Should shallow merge maps without mutating inputs", func() {
		target := map[string]any{
			"a":      1,
			"nested": map[string]any{"x": 10, "y": 20},
		}
		source := map[string]any{
			"b":      2,
			"nested": map[string]any{"x": 11},
		}

		result := ShallowMerge(target, source)
		Expect(result).To(Equal(map[string]any{
			"a":      1,
			"b":      2,
			"nested": map[string]any{"x": 11},
		}))

		result["nested"].(map[string]any)["x"] = 999
		Expect(source["nested"].(map[string]any)["x"]).To(Equal(11))
		Expect(target["nested"].(map[string]any)["x"]).To(Equal(10))
	})
})
