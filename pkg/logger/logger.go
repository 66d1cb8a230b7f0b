// Package logger is the process-wide structured logger. It writes to the
// console at the configured level and mirrors warnings and errors into the
// log file.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
)

const (
	// LevelDebug is for request traces and other development output.
	LevelDebug uint = iota
	// LevelInfo is the default production level.
	LevelInfo
	// LevelWarn marks degraded but working behaviour.
	LevelWarn
	// LevelError marks failed operations.
	LevelError
)

var (
	mu      sync.RWMutex
	zlog    = zerolog.New(os.Stderr).With().Timestamp().Logger()
	logFile io.Closer
)

// Init configures the console and file handlers from settings. It may be
// called again; the previous log file is closed.
func Init(cfg config.LoggingConfig) error {
	return InitWithOutput(cfg, os.Stdout)
}

// InitWithOutput is Init with a custom console writer.
func InitWithOutput(cfg config.LoggingConfig, console io.Writer) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrapf(err, "log level %q", cfg.Level)
	}
	fileLevel, err := zerolog.ParseLevel(cfg.FileLevel)
	if err != nil {
		return errors.Wrapf(err, "file log level %q", cfg.FileLevel)
	}

	if err := cfg.EnsureFile(); err != nil {
		return err
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening log file")
	}

	out := zerolog.MultiLevelWriter(
		levelFilter{w: consoleWriter(console, cfg.ConsoleFormat), min: level},
		levelFilter{w: consoleWriter(f, config.FormatVerbose), min: fileLevel},
	)

	// Handlers filter on their own; the logger itself passes everything
	// either of them wants.
	minLevel := level
	if fileLevel < minLevel {
		minLevel = fileLevel
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	zlog = zerolog.New(out).Level(minLevel).With().Timestamp().Logger()

	configureLogrus(cfg.Level, console)
	return nil
}

// Close releases the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	zlog = zerolog.New(os.Stderr).With().Timestamp().Logger()
	return err
}

// Log writes msg at level with the given string fields. err may be nil.
func Log(level uint, fields map[string]string, err interface{}, msg string) {
	mu.RLock()
	l := zlog
	mu.RUnlock()

	var entry *zerolog.Event
	switch level {
	case LevelDebug:
		entry = l.Debug()
	case LevelWarn:
		entry = l.Warn()
	case LevelError:
		entry = l.Error()
	default:
		entry = l.Info()
	}

	for k, v := range fields {
		entry = entry.Str(k, v)
	}
	if err != nil {
		switch e := err.(type) {
		case error:
			entry = entry.Err(e)
		default:
			entry = entry.Interface("error", e)
		}
	}
	entry.Caller(1).Msg(msg)
}

func consoleWriter(w io.Writer, format string) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			return strings.ToUpper(s)
		},
		FormatCaller: func(i interface{}) string {
			s, _ := i.(string)
			return strings.TrimSuffix(filepath.Base(s), filepath.Ext(filepath.Base(s)))
		},
	}
	if format == config.FormatSimple {
		cw.PartsOrder = []string{zerolog.LevelFieldName, zerolog.MessageFieldName}
		cw.PartsExclude = []string{zerolog.TimestampFieldName, zerolog.CallerFieldName}
	} else {
		cw.PartsOrder = []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}
	}
	return cw
}

// configureLogrus keeps the mail dispatchers' logrus output in line with
// the console handler.
func configureLogrus(level string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
}

// levelFilter drops events below min before they reach w.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
