// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/authpanel/internal/platform/constants"
)

// Options selects the handler shape of the root logger.
type Options struct {
	Format      string // "json" or "text"
	Debug       bool
	Environment string
}

// New returns a configured root logger tagged with the application name and
// installs it as the slog default.
func New(output io.Writer, options Options) *slog.Logger {
	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{
		Level:     level,
		AddSource: options.Debug,
	}

	var handler slog.Handler
	switch strings.ToLower(options.Format) {
	case "text":
		handler = slog.NewTextHandler(output, handlerOptions)
	default:
		handler = slog.NewJSONHandler(output, handlerOptions)
	}

	logger := slog.New(handler).With(
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("env", options.Environment),
	)

	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
