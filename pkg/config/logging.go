package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// FormatVerbose prints level, time, caller and message.
	FormatVerbose = "verbose"
	// FormatSimple prints level and message.
	FormatSimple = "simple"

	logDirName  = "logs"
	logFileName = "server.log"
)

// LoggingConfig describes the console and file log handlers.
type LoggingConfig struct {
	Level         string `json:"level" validate:"oneof=debug info warn error"`
	ConsoleFormat string `json:"consoleFormat" validate:"oneof=verbose simple"`
	FilePath      string `json:"filePath" validate:"required"`
	FileLevel     string `json:"fileLevel" validate:"oneof=debug info warn error"`
}

func newLoggingConfig(baseDir string, debug bool) LoggingConfig {
	cfg := LoggingConfig{
		Level:         "info",
		ConsoleFormat: FormatSimple,
		FilePath:      filepath.Join(baseDir, logDirName, logFileName),
		FileLevel:     "warn",
	}
	if debug {
		cfg.Level = "debug"
		cfg.ConsoleFormat = FormatVerbose
	}
	return cfg
}

// EnsureFile creates the log directory and an empty log file if absent.
func (l LoggingConfig) EnsureFile() error {
	if err := os.MkdirAll(filepath.Dir(l.FilePath), 0o755); err != nil {
		return errors.Wrap(err, "creating log directory")
	}
	f, err := os.OpenFile(l.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "creating log file")
	}
	return f.Close()
}
