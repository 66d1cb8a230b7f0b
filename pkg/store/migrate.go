package store

import (
	"context"
	"embed"
	errs "errors"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrNoChange = errs.New("no change")

// Migrator handles DB schema migrations using golang-migrate.
type Migrator struct {
	cfg    config.DatabaseConfig
	shared *DB
}

// NewMigrator returns a migrator that opens its own connection per run.
func NewMigrator(cfg config.DatabaseConfig) (*Migrator, error) {
	if cfg.Engine == "" {
		return nil, errors.New("missing database configuration")
	}
	return &Migrator{cfg: cfg}, nil
}

// NewMigratorForDB migrates through an already open connection and
// leaves it open. In-memory SQLite databases need this since every new
// connection sees an empty database.
func NewMigratorForDB(db *DB) *Migrator {
	return &Migrator{cfg: db.cfg, shared: db}
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	mig, closer, err := m.migrateInstance(ctx)
	if err != nil {
		return err
	}
	defer closer()
	if err := mig.Up(); err != nil {
		if errs.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	mig, closer, err := m.migrateInstance(ctx)
	if err != nil {
		return err
	}
	defer closer()
	if _, _, err := mig.Version(); errs.Is(err, migrate.ErrNilVersion) {
		return ErrNoChange
	}
	if err := mig.Steps(-1); err != nil {
		if errs.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return errors.Wrap(err, "rolling back migration")
	}
	return nil
}

// Version reports the current schema version. A database without any
// applied migration reports version 0.
func (m *Migrator) Version(ctx context.Context) (uint, bool, error) {
	mig, closer, err := m.migrateInstance(ctx)
	if err != nil {
		return 0, false, err
	}
	defer closer()
	version, dirty, err := mig.Version()
	if errs.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) migrateInstance(ctx context.Context) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, func() {}, errors.Wrap(err, "reading embedded migrations")
	}

	db := m.shared
	if db == nil {
		db, err = Open(ctx, m.cfg)
		if err != nil {
			src.Close()
			return nil, func() {}, err
		}
	}

	var driver database.Driver
	switch m.cfg.Engine {
	case config.EnginePostgres:
		driver, err = migratepg.WithInstance(db.sql, &migratepg.Config{})
	case config.EngineSQLite:
		driver, err = migratesqlite.WithInstance(db.sql, &migratesqlite.Config{})
	default:
		err = errors.Errorf("unsupported database engine %q", m.cfg.Engine)
	}
	if err != nil {
		src.Close()
		if m.shared == nil {
			db.Close()
		}
		return nil, func() {}, errors.Wrap(err, "preparing migration driver")
	}

	mig, err := migrate.NewWithInstance("iofs", src, m.cfg.Engine, driver)
	if err != nil {
		src.Close()
		if m.shared == nil {
			db.Close()
		}
		return nil, func() {}, errors.Wrap(err, "creating migrator")
	}

	if m.shared != nil {
		// closing the driver would close the shared connection
		return mig, func() { src.Close() }, nil
	}
	return mig, func() { mig.Close() }, nil
}
