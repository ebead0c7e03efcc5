// Copyright (c) 2025 BVK Chaitanya

package sglog

import (
	"io"
	"log/slog"
	"os"
	"time"
)

type Options struct {
	// LogDirs lists the candidate log directories in the order of preference.
	// Log files are created in the first usable directory. Temporary directory
	// is used when no directory is given.
	LogDirs []string

	// LogFileMaxSize is the size limit for a log file in bytes.
	LogFileMaxSize uint64

	// ReuseFileDuration is the maximum age of an existing log file that can be
	// reused by a new process.
	ReuseFileDuration time.Duration

	// FlushTimeout is the maximum buffering interval for INFO and DEBUG
	// messages. WARN and ERROR messages are flushed immediately.
	FlushTimeout time.Duration

	// Levels lists the severities that get a log file.
	Levels []slog.Level

	// LogFileMode is the log file permissions.
	LogFileMode os.FileMode

	// LogMessageMaxLen limits the formatted log message length.
	LogMessageMaxLen int

	// Stderr, when non-nil, also receives every formatted message.
	Stderr io.Writer
}

func (v *Options) setDefaults() {
	if len(v.LogDirs) == 0 {
		v.LogDirs = []string{os.TempDir()}
	}
	if v.LogFileMaxSize == 0 {
		v.LogFileMaxSize = 256 * 1024 * 1024
	}
	if v.ReuseFileDuration == 0 {
		v.ReuseFileDuration = time.Hour
	}
	if v.FlushTimeout == 0 {
		v.FlushTimeout = 5 * time.Second
	}
	if len(v.Levels) == 0 {
		v.Levels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	}
	if v.LogFileMode == 0 {
		v.LogFileMode = 0644
	}
	if v.LogMessageMaxLen == 0 {
		v.LogMessageMaxLen = 16 * 1024
	}
}
