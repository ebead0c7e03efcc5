// Copyright (c) 2025 BVK Chaitanya

// Package defaults resolves the default locations and ports used by the oco
// commands. Defaults can be overridden with OCO_* environment variables,
// which can also be loaded from the ~/.ocoenv file.
package defaults

import (
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	ServerPortEnv = "OCO_SERVER_PORT"
	DataDirEnv    = "OCO_DATA_DIR"
	LogDirEnv     = "OCO_LOG_DIR"
)

const defaultServerPort = 10000

func ServerPort() int {
	value := os.Getenv(ServerPortEnv)
	if len(value) == 0 {
		return defaultServerPort
	}

	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil || port == 0 {
		slog.Warn("server port must be a positive decimal integer (ignored)", "env", ServerPortEnv, "value", value)
		return defaultServerPort
	}
	return int(port)
}

func DataDir() string {
	const fallbackValue = "."
	user, err := user.Current()
	if err != nil {
		slog.Warn("could not query for current user (using fallback data directory)", "err", err)
		return fallbackValue
	}
	if len(user.HomeDir) == 0 {
		slog.Warn("could not find home directory (using fallback data directory)")
		return fallbackValue
	}

	var defaultValue = filepath.Join(user.HomeDir, ".oco")
	value := os.Getenv(DataDirEnv)
	if len(value) == 0 {
		return defaultValue
	}

	if !filepath.IsAbs(value) {
		slog.Warn("data directory must be an absolute path (ignored)", "env", DataDirEnv, "value", value)
		return defaultValue
	}
	return value
}

// LogDir returns the log directory. A relative base name is placed under the
// data directory.
func LogDir() string {
	var dataDir = DataDir()

	var defaultValue = filepath.Join(dataDir, "logs")
	value := os.ExpandEnv(os.Getenv(LogDirEnv))
	if len(value) == 0 {
		return defaultValue
	}

	if !filepath.IsAbs(value) {
		if strings.ContainsRune(value, os.PathSeparator) {
			slog.Warn("log directory must be an absolute path or a directory base name (ignored)", "env", LogDirEnv, "value", value)
			return defaultValue
		}
		return filepath.Join(dataDir, value)
	}
	return value
}
