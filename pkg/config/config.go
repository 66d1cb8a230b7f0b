package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/basicflag"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	// DefaultListenAddr is the address the API server binds to.
	DefaultListenAddr = ":8000"

	// DefaultPageSize is the number of results per page in list endpoints.
	DefaultPageSize = 20

	defaultAllowedHosts = "localhost"
	envFileName         = ".env"
	boolTrue            = "True"
)

// Environment variables read by Load.
var knownEnv = []string{
	"SECRET_KEY",
	"DEBUG",
	"ALLOWED_HOSTS",
	"DATABASE_URL",
	"CORS_ALLOWED_ORIGINS",
	"DEFAULT_FROM_EMAIL",
	"EMAIL_HOST",
	"EMAIL_PORT",
	"EMAIL_USE_TLS",
	"EMAIL_HOST_USER",
	"EMAIL_HOST_PASSWORD",
}

// debugHosts are accepted when DEBUG is on and ALLOWED_HOSTS is empty.
var debugHosts = []string{"localhost", "127.0.0.1", "[::1]"}

var validate = validator.New()

// RESTConfig holds list endpoint behaviour.
type RESTConfig struct {
	PageSize int `json:"pageSize" validate:"min=1"`
}

// OpenAPIConfig describes the published API schema and its docs page.
type OpenAPIConfig struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Version     string          `json:"version" validate:"required"`
	SwaggerUI   map[string]bool `json:"swaggerUI"`
}

// Settings is the process-wide configuration. It is built once by Load
// and must not be modified afterwards.
type Settings struct {
	BaseDir      string   `json:"baseDir"`
	SecretKey    string   `json:"-" validate:"required"`
	Debug        bool     `json:"debug"`
	AllowedHosts []string `json:"allowedHosts"`
	ListenAddr   string   `json:"listenAddr" validate:"required"`

	Database DatabaseConfig `json:"database"`
	CORS     CORSConfig     `json:"cors"`
	Logging  LoggingConfig  `json:"logging"`
	Email    EmailConfig    `json:"email"`
	REST     RESTConfig     `json:"rest"`
	OpenAPI  OpenAPIConfig  `json:"openapi"`

	// Warnings lists every setting that fell back to an insecure or
	// permissive default. They are logged once logging is set up.
	Warnings []string `json:"-"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// BaseDir is the root for the .env file and the logs directory.
	BaseDir string
	// Flags, when set, is merged after the environment.
	Flags *flag.FlagSet
}

// Load reads the .env file, the environment and the command line flags
// and derives the settings from them.
func Load(opts Options) (*Settings, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving base directory")
	}

	// Values already in the environment win over the .env file
	envFile := filepath.Join(baseDir, envFileName)
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "loading %s", envFile)
		}
	}

	k := koanf.New(".")
	if opts.Flags != nil {
		if err := k.Load(basicflag.Provider(opts.Flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, "loading flags")
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}

	s := &Settings{
		BaseDir:    baseDir,
		ListenAddr: DefaultListenAddr,
		REST:       RESTConfig{PageSize: DefaultPageSize},
		OpenAPI: OpenAPIConfig{
			Title:       "Bangladesh Location API",
			Description: "API for locations in Bangladesh",
			Version:     "1.0.0",
			SwaggerUI: map[string]bool{
				"deepLinking":          true,
				"persistAuthorization": true,
				"displayOperationId":   true,
			},
		},
	}
	if addr := k.String("addr"); addr != "" {
		s.ListenAddr = addr
	}

	var loadErr *multierror.Error

	// Secret key
	s.SecretKey = k.String("secret_key")
	if s.SecretKey == "" {
		key, err := RandomSecretKey()
		if err != nil {
			return nil, err
		}
		s.SecretKey = key
		s.warn("Secret key not set. Using a random secret key.")
	}

	// Debug
	s.Debug = k.String("debug") == boolTrue
	if s.Debug {
		s.warn("Debug mode is enabled.")
	}

	// Allowed hosts
	hosts := defaultAllowedHosts
	if k.Exists("allowed_hosts") {
		hosts = k.String("allowed_hosts")
	}
	s.AllowedHosts = splitList(hosts)
	if len(s.AllowedHosts) == 0 && s.Debug {
		s.AllowedHosts = append(s.AllowedHosts, debugHosts...)
	}

	// Database
	dbURL := k.String("database_url")
	if dbURL == "" {
		s.warn("No database URL found in the environment. Using SQLite.")
		dbURL = DefaultDatabaseURL
	}
	db, err := ParseDatabaseURL(dbURL, DefaultConnMaxAge)
	if err != nil {
		loadErr = multierror.Append(loadErr, errors.Wrap(err, "DATABASE_URL"))
	}
	s.Database = db

	// CORS
	s.CORS = ParseCORS(k.String("cors_allowed_origins"))
	if s.CORS.AllowAll {
		s.warn("All CORS origins are allowed.")
	} else if len(s.CORS.AllowedOrigins) == 0 {
		s.warn("No CORS origins are allowed.")
	}

	// Logging
	s.Logging = newLoggingConfig(baseDir, s.Debug)
	if err := s.Logging.EnsureFile(); err != nil {
		loadErr = multierror.Append(loadErr, err)
	}

	// Email
	s.Email = EmailConfig{
		Backend:  EmailBackendSMTP,
		From:     k.String("default_from_email"),
		Host:     k.String("email_host"),
		Port:     DefaultEmailPort,
		UseTLS:   true,
		User:     k.String("email_host_user"),
		Password: k.String("email_host_password"),
	}
	if s.Debug {
		s.Email.Backend = EmailBackendConsole
	}
	if k.Exists("email_port") {
		port, err := strconv.Atoi(strings.TrimSpace(k.String("email_port")))
		if err != nil {
			loadErr = multierror.Append(loadErr, errors.Wrapf(err, "EMAIL_PORT %q", k.String("email_port")))
		} else {
			s.Email.Port = port
		}
	}
	if k.Exists("email_use_tls") {
		s.Email.UseTLS = k.String("email_use_tls") == boolTrue
	}

	if err := loadErr.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every setting has the shape its consumer expects.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}

func (s *Settings) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// envKey maps a known environment variable to its koanf key and drops
// everything else.
func envKey(name string) string {
	for _, known := range knownEnv {
		if name == known {
			return strings.ToLower(name)
		}
	}
	return ""
}

func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
