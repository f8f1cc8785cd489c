// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/aurm/model"
	"github.com/choria-io/aurm/model/modelmocks"
)

var _ = Describe("DirectorySessionStore", func() {
	var (
		mockctl  *gomock.Controller
		logger   *modelmocks.MockLogger
		manifest *modelmocks.MockApply
		tempDir  string
		store    *DirectorySessionStore
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewMockLogger(mockctl)
		manifest = modelmocks.NewMockApply(mockctl)

		logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
		logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
		logger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
		manifest.EXPECT().Resources().Return(nil).AnyTimes()

		tempDir = filepath.Join(GinkgoT().TempDir(), "session")

		var err error
		store, err = NewDirectorySessionStore(tempDir, logger)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("NewDirectorySessionStore", func() {
		It("Should create an absolute path from relative directory", func() {
			relStore, err := NewDirectorySessionStore("./relative/path", logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(filepath.IsAbs(relStore.Directory())).To(BeTrue())
		})

		It("Should clean the directory path", func() {
			dirtyStore, err := NewDirectorySessionStore("/some//path/../clean/./path", logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(dirtyStore.Directory()).To(Equal("/some/clean/path"))
		})

		It("Should reject unsafe directories", func() {
			_, err := NewDirectorySessionStore("", logger)
			Expect(err).To(MatchError("session directory path cannot be empty"))

			_, err = NewDirectorySessionStore("/tmp/../", logger)
			Expect(err).To(MatchError("session directory cannot be the root directory"))
		})
	})

	Describe("StartSession", func() {
		It("Should create the directory and record the start", func() {
			Expect(tempDir).ToNot(BeADirectory())
			Expect(store.StartSession(manifest)).To(Succeed())
			Expect(tempDir).To(BeADirectory())

			files, err := filepath.Glob(filepath.Join(tempDir, "*.event"))
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
		})
	})

	Describe("RecordEvent", func() {
		It("Should fail before the session started", func() {
			err := store.RecordEvent(event("cower", true, false))
			Expect(err).To(MatchError(ContainSubstring("does not exist")))
		})

		It("Should reject invalid event ids", func() {
			Expect(store.StartSession(manifest)).To(Succeed())

			e := event("cower", true, false)
			e.EventID = "../../etc/passwd"
			Expect(store.RecordEvent(e)).To(MatchError(ContainSubstring("invalid event ID")))
		})

		It("Should round trip events with their properties and status", func() {
			Expect(store.StartSession(manifest)).To(Succeed())

			e := event("cower", true, false)
			e.Properties = &model.AURResourceProperties{Names: []string{"cower"}, State: model.EnsurePresent}
			e.Status = &model.ExecutionResult{
				CommonResourceState: model.NewCommonResourceState(model.ResourceStatusAURProtocol, model.AURTypeName, "cower", model.EnsurePresent),
				Actions:             []model.AURAction{{Kind: model.ActionInstall, Targets: []string{"cower"}, Command: "yay"}},
			}
			Expect(store.RecordEvent(e)).To(Succeed())

			events, err := store.EventsForResource(model.AURTypeName, "cower")
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].EventID).To(Equal(e.EventID))
			Expect(events[0].Changed).To(BeTrue())
			Expect(events[0].Properties.(*model.AURResourceProperties).Names).To(Equal([]string{"cower"}))
			Expect(events[0].Status.(*model.ExecutionResult).Actions[0].Kind).To(Equal(model.ActionInstall))
		})
	})

	Describe("AllEvents", func() {
		It("Should return events in time order and skip unknown files", func() {
			Expect(store.StartSession(manifest)).To(Succeed())
			Expect(store.RecordEvent(event("cower", true, false))).To(Succeed())
			Expect(store.RecordEvent(event("meat", false, false))).To(Succeed())

			Expect(os.WriteFile(filepath.Join(tempDir, "junk.event"), []byte("not json"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tempDir, "other.event"), []byte(`{"protocol":"x"}`), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644)).To(Succeed())

			events, err := store.AllEvents()
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(HaveLen(3))
			Expect(events[0]).To(BeAssignableToTypeOf(&model.SessionStartEvent{}))
		})

		It("Should handle missing directories", func() {
			events, err := store.AllEvents()
			Expect(err).ToNot(HaveOccurred())
			Expect(events).To(BeEmpty())
		})
	})

	Describe("StopSession", func() {
		It("Should summarize and remove the directory when destroying", func() {
			Expect(store.StartSession(manifest)).To(Succeed())
			Expect(store.RecordEvent(event("cower", true, false))).To(Succeed())
			Expect(store.RecordEvent(event("broken", false, true))).To(Succeed())

			summary, err := store.StopSession(false)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.TotalResources).To(Equal(2))
			Expect(summary.FailedResources).To(Equal(1))
			Expect(tempDir).To(BeADirectory())

			_, err = store.StopSession(true)
			Expect(err).ToNot(HaveOccurred())
			Expect(tempDir).ToNot(BeADirectory())
		})
	})
})
