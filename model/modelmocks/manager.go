// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package modelmocks

import (
	"go.uber.org/mock/gomock"

	"github.com/choria-io/aurm/templates"
)

// NewManager creates a mock manager and logger that tolerate any logging, facts and data access
func NewManager(facts map[string]any, data map[string]any, noop bool, ctl *gomock.Controller) (*MockManager, *MockLogger) {
	logger := NewMockLogger(ctl)
	mgr := NewMockManager(ctl)

	mgr.EXPECT().Logger(gomock.Any()).AnyTimes().Return(logger, nil)
	mgr.EXPECT().Facts(gomock.Any()).AnyTimes().Return(facts, nil)
	mgr.EXPECT().Data().AnyTimes().Return(data)
	mgr.EXPECT().NoopMode().AnyTimes().Return(noop)
	mgr.EXPECT().DefaultProvider().AnyTimes().Return("")
	mgr.EXPECT().DefaultBuildUser().AnyTimes().Return("")
	mgr.EXPECT().TemplateEnvironment(gomock.Any()).AnyTimes().DoAndReturn(func(any) (*templates.Env, error) {
		return &templates.Env{Facts: facts, Data: data}, nil
	})

	logger.EXPECT().With(gomock.Any()).AnyTimes().Return(logger)
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()

	return mgr, logger
}
