// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SladkyCitron/slogcolor"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/choria-io/aurm/model"
)

const (
	// LogFormatText logs human readable lines, colored when writing to a terminal
	LogFormatText = "text"
	// LogFormatJSON logs one JSON object per line
	LogFormatJSON = "json"
)

// ParseLogLevel parses debug, info, warn or error, an empty level is warn
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

// NewLogger creates a logger writing to out in the given format
func NewLogger(level string, format string, out io.Writer) (model.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	switch format {
	case LogFormatJSON:
		return NewJSONLogger(lvl, out), nil

	case "", LogFormatText:
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return NewSlogLogger(slog.New(slogcolor.NewHandler(out, &slogcolor.Options{Level: lvl}))), nil
		}

		return NewSlogLogger(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))), nil

	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// NewJSONLogger creates a logrus backed logger emitting JSON lines
func NewJSONLogger(level slog.Level, out io.Writer) model.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})

	switch {
	case level <= slog.LevelDebug:
		l.SetLevel(logrus.DebugLevel)
	case level <= slog.LevelInfo:
		l.SetLevel(logrus.InfoLevel)
	case level <= slog.LevelWarn:
		l.SetLevel(logrus.WarnLevel)
	default:
		l.SetLevel(logrus.ErrorLevel)
	}

	return NewLogrusLogger(logrus.NewEntry(l))
}
