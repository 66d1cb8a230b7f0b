package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// EnginePostgres selects the PostgreSQL driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the embedded SQLite driver.
	EngineSQLite = "sqlite"

	// DefaultDatabaseURL is used when DATABASE_URL is not set.
	DefaultDatabaseURL = "sqlite:///db.sqlite3"

	// DefaultConnMaxAge is how long a pooled connection may be reused.
	DefaultConnMaxAge = 600 * time.Second

	memoryDatabase = ":memory:"
)

var schemeEngines = map[string]string{
	"postgres":   EnginePostgres,
	"postgresql": EnginePostgres,
	"pgsql":      EnginePostgres,
	"postgis":    EnginePostgres,
	"sqlite":     EngineSQLite,
}

// DatabaseConfig is the connection description parsed from DATABASE_URL.
type DatabaseConfig struct {
	Engine     string            `json:"engine" validate:"oneof=postgres sqlite"`
	Name       string            `json:"name" validate:"required"`
	User       string            `json:"user,omitempty"`
	Password   string            `json:"-"`
	Host       string            `json:"host,omitempty"`
	Port       int               `json:"port,omitempty" validate:"min=0,max=65535"`
	Options    map[string]string `json:"options,omitempty"`
	ConnMaxAge time.Duration     `json:"connMaxAge"`

	// URL is the normalized connection string handed to the driver.
	URL string `json:"-"`
}

// IsMemory reports whether the database lives only for the process lifetime.
func (d DatabaseConfig) IsMemory() bool {
	return d.Engine == EngineSQLite && d.Name == memoryDatabase
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Engine == EngineSQLite {
		if len(d.Options) == 0 {
			return d.Name
		}
		values := url.Values{}
		for k, v := range d.Options {
			values.Set(k, v)
		}
		return d.Name + "?" + values.Encode()
	}
	return d.URL
}

// Redacted returns the connection URL with the password masked.
func (d DatabaseConfig) Redacted() string {
	if d.Engine == EngineSQLite {
		return d.URL
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return d.Engine + "://"
	}
	return u.Redacted()
}

// ParseDatabaseURL turns a database URL into a DatabaseConfig.
func ParseDatabaseURL(raw string, connMaxAge time.Duration) (DatabaseConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DatabaseConfig{}, errors.New("empty database URL")
	}

	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		return DatabaseConfig{}, errors.Errorf("database URL %q has no scheme", raw)
	}
	engine, ok := schemeEngines[strings.ToLower(scheme)]
	if !ok {
		return DatabaseConfig{}, errors.Errorf("unsupported database scheme %q", scheme)
	}

	if engine == EngineSQLite {
		return parseSQLiteURL(raw, connMaxAge)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return DatabaseConfig{}, errors.Wrap(err, "parsing database URL")
	}

	cfg := DatabaseConfig{
		Engine:     engine,
		Name:       strings.TrimPrefix(u.Path, "/"),
		Host:       u.Hostname(),
		ConnMaxAge: connMaxAge,
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DatabaseConfig{}, errors.Wrapf(err, "invalid database port %q", p)
		}
		cfg.Port = port
	}
	if q := u.Query(); len(q) > 0 {
		cfg.Options = make(map[string]string, len(q))
		for k := range q {
			cfg.Options[k] = q.Get(k)
		}
	}

	// pgx only understands the postgres/postgresql schemes
	u.Scheme = "postgres"
	cfg.URL = u.String()
	return cfg, nil
}

// parseSQLiteURL handles sqlite URLs by hand; the path part is not a
// regular URL path (sqlite:///rel.db is relative, sqlite:////abs.db is not).
func parseSQLiteURL(raw string, connMaxAge time.Duration) (DatabaseConfig, error) {
	_, rest, _ := strings.Cut(raw, "://")
	rest, query, _ := strings.Cut(rest, "?")

	var name string
	switch {
	case rest == "" || rest == memoryDatabase || rest == "/"+memoryDatabase:
		name = memoryDatabase
	case strings.HasPrefix(rest, "/"):
		name = rest[1:]
	default:
		return DatabaseConfig{}, errors.Errorf("sqlite URL %q must not name a host", raw)
	}
	if name == "" {
		name = memoryDatabase
	}

	cfg := DatabaseConfig{
		Engine:     EngineSQLite,
		Name:       name,
		ConnMaxAge: connMaxAge,
		URL:        raw,
	}
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return DatabaseConfig{}, errors.Wrap(err, "parsing sqlite options")
		}
		cfg.Options = make(map[string]string, len(values))
		for k := range values {
			cfg.Options[k] = values.Get(k)
		}
	}
	if cfg.IsMemory() {
		cfg.ConnMaxAge = 0
	}
	return cfg, nil
}
