package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdgeo/location-api/pkg/config"
)

func setup(t *testing.T, level, format string) (*bytes.Buffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	var console bytes.Buffer
	err := InitWithOutput(config.LoggingConfig{
		Level:         level,
		ConsoleFormat: format,
		FilePath:      path,
		FileLevel:     "warn",
	}, &console)
	if err != nil {
		t.Fatalf("InitWithOutput() error: %v", err)
	}
	t.Cleanup(func() { Close() })
	return &console, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(b)
}

func TestLog_ConsoleAndFileLevels(t *testing.T) {
	console, path := setup(t, "info", config.FormatSimple)

	Log(LevelDebug, nil, nil, "debug detail")
	Log(LevelInfo, map[string]string{"division": "Dhaka"}, nil, "listing districts")
	Log(LevelWarn, nil, nil, "no CORS origins")
	Log(LevelError, nil, errors.New("connection refused"), "database ping failed")

	out := console.String()
	if strings.Contains(out, "debug detail") {
		t.Errorf("debug message reached the info console:\n%s", out)
	}
	for _, want := range []string{"INFO", "listing districts", "division=Dhaka", "no CORS origins", "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}

	file := readFile(t, path)
	if strings.Contains(file, "listing districts") {
		t.Errorf("info message reached the warning file:\n%s", file)
	}
	for _, want := range []string{"WARN", "no CORS origins", "ERROR", "database ping failed"} {
		if !strings.Contains(file, want) {
			t.Errorf("log file missing %q:\n%s", want, file)
		}
	}
}

func TestLog_DebugLevel(t *testing.T) {
	console, _ := setup(t, "debug", config.FormatVerbose)

	Log(LevelDebug, nil, nil, "debug detail")

	out := console.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "debug detail") {
		t.Errorf("debug console output = %q", out)
	}
	// verbose format names the calling module
	if !strings.Contains(out, "logger_test") {
		t.Errorf("verbose output has no caller: %q", out)
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	err := InitWithOutput(config.LoggingConfig{
		Level:     "loud",
		FileLevel: "warn",
		FilePath:  filepath.Join(t.TempDir(), "server.log"),
	}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("InitWithOutput() should reject unknown levels")
	}
}
