package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every variable Load reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range knownEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func load(t *testing.T) *Settings {
	t.Helper()
	s, err := Load(Options{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s
}

func hasWarning(s *Settings, fragment string) bool {
	for _, w := range s.Warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	s := load(t)

	if s.Debug {
		t.Error("Debug should default to false")
	}
	if len(s.SecretKey) != secretKeyLength {
		t.Errorf("SecretKey length = %d, want %d", len(s.SecretKey), secretKeyLength)
	}
	if !hasWarning(s, "Secret key not set") {
		t.Errorf("missing secret key warning in %v", s.Warnings)
	}
	if len(s.AllowedHosts) != 1 || s.AllowedHosts[0] != "localhost" {
		t.Errorf("AllowedHosts = %v, want [localhost]", s.AllowedHosts)
	}
	if s.Database.Engine != EngineSQLite || s.Database.Name != "db.sqlite3" {
		t.Errorf("Database = %+v, want sqlite db.sqlite3", s.Database)
	}
	if s.Database.ConnMaxAge != DefaultConnMaxAge {
		t.Errorf("ConnMaxAge = %v, want %v", s.Database.ConnMaxAge, DefaultConnMaxAge)
	}
	if !hasWarning(s, "Using SQLite") {
		t.Errorf("missing sqlite warning in %v", s.Warnings)
	}
	if s.CORS.AllowAll || len(s.CORS.AllowedOrigins) != 0 {
		t.Errorf("CORS = %+v, want no origins", s.CORS)
	}
	if !s.CORS.AllowCredentials {
		t.Error("CORS credentials should always be allowed")
	}
	if s.Email.Backend != EmailBackendSMTP {
		t.Errorf("Email.Backend = %q, want smtp", s.Email.Backend)
	}
	if s.Email.Port != DefaultEmailPort || !s.Email.UseTLS {
		t.Errorf("Email = %+v, want port 587 with TLS", s.Email)
	}
	if s.Logging.Level != "info" || s.Logging.ConsoleFormat != FormatSimple {
		t.Errorf("Logging = %+v, want info/simple", s.Logging)
	}
	if s.REST.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", s.REST.PageSize)
	}
	if s.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", s.ListenAddr, DefaultListenAddr)
	}
}

func TestLoad_CreatesLogFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	s, err := Load(Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := filepath.Join(dir, "logs", "server.log")
	if s.Logging.FilePath != want {
		t.Errorf("FilePath = %q, want %q", s.Logging.FilePath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestLoad_DebugSwitchesBackendAndLevel(t *testing.T) {
	tests := []struct {
		value   string
		debug   bool
		backend string
		level   string
		format  string
	}{
		{"True", true, EmailBackendConsole, "debug", FormatVerbose},
		{"False", false, EmailBackendSMTP, "info", FormatSimple},
		{"true", false, EmailBackendSMTP, "info", FormatSimple},
		{"1", false, EmailBackendSMTP, "info", FormatSimple},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEBUG", tt.value)
			s := load(t)

			if s.Debug != tt.debug {
				t.Errorf("Debug = %v, want %v", s.Debug, tt.debug)
			}
			if s.Email.Backend != tt.backend {
				t.Errorf("Email.Backend = %q, want %q", s.Email.Backend, tt.backend)
			}
			if s.Logging.Level != tt.level {
				t.Errorf("Logging.Level = %q, want %q", s.Logging.Level, tt.level)
			}
			if s.Logging.ConsoleFormat != tt.format {
				t.Errorf("Logging.ConsoleFormat = %q, want %q", s.Logging.ConsoleFormat, tt.format)
			}
			if s.Logging.FileLevel != "warn" {
				t.Errorf("Logging.FileLevel = %q, want warn", s.Logging.FileLevel)
			}
		})
	}
}

func TestLoad_CORS(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		allowAll bool
		origins  []string
		warning  string
	}{
		{"empty", "", false, nil, "No CORS origins"},
		{"only separators", " , ,", false, nil, "No CORS origins"},
		{"wildcard", "*", true, nil, "All CORS origins"},
		{"list", " https://a.example.com, http://localhost:3000/ ,", false, []string{"https://a.example.com", "http://localhost:3000"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.raw)
			s := load(t)

			if s.CORS.AllowAll != tt.allowAll {
				t.Errorf("AllowAll = %v, want %v", s.CORS.AllowAll, tt.allowAll)
			}
			if len(s.CORS.AllowedOrigins) != len(tt.origins) {
				t.Fatalf("AllowedOrigins = %v, want %v", s.CORS.AllowedOrigins, tt.origins)
			}
			for i := range tt.origins {
				if s.CORS.AllowedOrigins[i] != tt.origins[i] {
					t.Errorf("AllowedOrigins[%d] = %q, want %q", i, s.CORS.AllowedOrigins[i], tt.origins[i])
				}
			}
			if tt.warning != "" && !hasWarning(s, tt.warning) {
				t.Errorf("missing warning %q in %v", tt.warning, s.Warnings)
			}
		})
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_HOSTS", "api.example.com, .example.org,")
	s := load(t)

	want := []string{"api.example.com", ".example.org"}
	if strings.Join(s.AllowedHosts, "|") != strings.Join(want, "|") {
		t.Errorf("AllowedHosts = %v, want %v", s.AllowedHosts, want)
	}
}

func TestLoad_EmptyAllowedHostsInDebug(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_HOSTS", "")
	t.Setenv("DEBUG", "True")
	s := load(t)

	if strings.Join(s.AllowedHosts, "|") != strings.Join(debugHosts, "|") {
		t.Errorf("AllowedHosts = %v, want %v", s.AllowedHosts, debugHosts)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://geo:pw@db.internal:5433/locations?sslmode=disable")
	t.Setenv("DEFAULT_FROM_EMAIL", "noreply@example.com")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_PORT", "2525")
	t.Setenv("EMAIL_USE_TLS", "False")
	t.Setenv("EMAIL_HOST_USER", "mailer")
	t.Setenv("EMAIL_HOST_PASSWORD", "hunter2")
	s := load(t)

	if s.SecretKey != "s3cret" {
		t.Errorf("SecretKey = %q, want s3cret", s.SecretKey)
	}
	if hasWarning(s, "Secret key") || hasWarning(s, "SQLite") {
		t.Errorf("unexpected warnings %v", s.Warnings)
	}
	if s.Database.Engine != EnginePostgres || s.Database.Host != "db.internal" || s.Database.Port != 5433 {
		t.Errorf("Database = %+v", s.Database)
	}
	if s.Email.Host != "smtp.example.com" || s.Email.Port != 2525 || s.Email.UseTLS {
		t.Errorf("Email = %+v", s.Email)
	}
	if s.Email.User != "mailer" || s.Email.Password != "hunter2" || s.Email.From != "noreply@example.com" {
		t.Errorf("Email credentials = %+v", s.Email)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_PORT", "smtp")
	t.Setenv("DATABASE_URL", "mongodb://localhost/geo")

	_, err := Load(Options{BaseDir: t.TempDir()})
	if err == nil {
		t.Fatal("Load() should fail on malformed values")
	}
	for _, fragment := range []string{"EMAIL_PORT", "DATABASE_URL"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %s", err, fragment)
		}
	}
}

func TestLoad_PortOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_PORT", "70000")

	_, err := Load(Options{BaseDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "Port") {
		t.Fatalf("Load() error = %v, want port validation failure", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "CORS_ALLOWED_ORIGINS=https://maps.example.com\nSECRET_KEY=from-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// The real environment wins over the file.
	t.Setenv("SECRET_KEY", "from-env")

	s, err := Load(Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.SecretKey != "from-env" {
		t.Errorf("SecretKey = %q, want from-env", s.SecretKey)
	}
	if !s.CORS.Allows("https://maps.example.com") {
		t.Errorf("CORS = %+v, want origin from .env", s.CORS)
	}
}

func TestLoad_ListenAddrFlag(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.String("addr", DefaultListenAddr, "")
	if err := fs.Parse([]string{"--addr", "127.0.0.1:9000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	s, err := Load(Options{BaseDir: t.TempDir(), Flags: fs})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:9000", s.ListenAddr)
	}
}

func TestCORSConfig_Allows(t *testing.T) {
	policy := ParseCORS("https://a.example.com")
	if !policy.Allows("https://a.example.com") {
		t.Error("listed origin should be allowed")
	}
	if policy.Allows("https://b.example.com") {
		t.Error("unlisted origin should be rejected")
	}
	if !ParseCORS("*").Allows("https://anything.example") {
		t.Error("wildcard should allow every origin")
	}
	if ParseCORS("").Allows("https://a.example.com") {
		t.Error("empty policy should reject every origin")
	}
}

func TestRandomSecretKey(t *testing.T) {
	a, err := RandomSecretKey()
	if err != nil {
		t.Fatalf("RandomSecretKey() error: %v", err)
	}
	b, _ := RandomSecretKey()
	if a == b {
		t.Error("two generated keys should differ")
	}
	for _, r := range a {
		if !strings.ContainsRune(secretKeyChars, r) {
			t.Errorf("unexpected character %q in key", r)
		}
	}
}
