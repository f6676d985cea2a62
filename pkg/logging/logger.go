// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides the structured logging used by sinkguard:
// the Sink Guard's violation/blocked records and the startup messages
// of the serve command and the demo binary.
//
// It is a thin wrapper over log/slog, not a logging framework: a
// Logger picks stderr vs. quiet, text vs. JSON, and a minimum level,
// then defers everything else to slog.
//
// # Basic usage
//
//	logger := logging.Default()
//	logger.Info("starting server", "addr", addr)
//	logger.Error("request failed", "error", err)
//
// # Configuration
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    Service: "sinkguard-serve",
//	    JSON:    true,
//	})
package logging

import (
	"log/slog"
	"os"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for recoverable problems (e.g. a warn-mode violation).
	LevelWarn

	// LevelError is for operation failures (e.g. a blocked sink call).
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. A zero-value Config logs Debug+ to
// stderr in text format.
type Config struct {
	// Level sets the minimum level written. The zero value is LevelDebug.
	Level Level

	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON switches stderr output from text to JSON.
	JSON bool

	// Quiet disables stderr output entirely.
	Quiet bool
}

// Logger wraps an slog.Logger with sinkguard's Config conventions.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger from config.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handler slog.Handler
	if config.Quiet {
		handler = slog.NewTextHandler(discardWriter{}, opts)
	} else if config.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	return &Logger{slog: slog.New(handler)}
}

// Default returns an Info-level, text, stderr logger tagged "sinkguard".
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "sinkguard"})
}

// Debug logs at Debug level.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at Info level.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at Warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at Error level.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a new Logger with additional attributes attached to
// every subsequent record. The receiver is unchanged.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog returns the underlying slog.Logger for callers that need
// features this wrapper doesn't expose (LogAttrs, custom handlers).
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// discardWriter backs Quiet mode: an io.Writer that drops everything.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
