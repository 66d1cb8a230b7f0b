package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// pure Go SQLite driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB wraps gorm.DB for repositories and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
	cfg  config.DatabaseConfig
}

func (d *DB) Close() error   { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", cfg.Engine)
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	// ConnMaxAge of zero keeps connections forever
	sdb.SetConnMaxLifetime(cfg.ConnMaxAge)
	if cfg.Engine == config.EngineSQLite {
		// SQLite allows a single writer; an in-memory database would
		// also be lost with its connection.
		sdb.SetMaxOpenConns(1)
		sdb.SetMaxIdleConns(1)
	} else {
		sdb.SetMaxOpenConns(10)
		sdb.SetMaxIdleConns(5)
	}

	if err := sdb.PingContext(ctx); err != nil {
		sdb.Close()
		return nil, errors.Wrapf(err, "connecting to %s", cfg.Redacted())
	}
	return &DB{gorm: gdb, sql: sdb, cfg: cfg}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Engine {
	case config.EnginePostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.EngineSQLite:
		return sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(cfg),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database engine %q", cfg.Engine)
	}
}

// sqliteDSN appends the connection pragmas to any options from the URL.
func sqliteDSN(cfg config.DatabaseConfig) string {
	dsn := cfg.DSN()
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// gormWriter sends gorm's slow query and error reports to the app logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.Log(logger.LevelWarn, map[string]string{"component": "gorm"}, nil, fmt.Sprintf(format, args...))
}
